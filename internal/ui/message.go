package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cineflix/internal/events"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgBusEvent MsgKind = iota
	MsgBusClosed
)

// busEventMsg is the constructor for [MsgBusEvent]
func busEventMsg(e events.Event) Msg {
	return Msg{kind: MsgBusEvent, data: e}
}

// busClosedMsg is the constructor for [MsgBusClosed]
func busClosedMsg() Msg {
	return Msg{kind: MsgBusClosed}
}

// Event returns the bus event carried by a [MsgBusEvent].
func (m Msg) Event() (events.Event, bool) {
	e, ok := m.data.(events.Event)
	return e, ok
}
