package ui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/session"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/watching"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FavoritesView ViewState = iota
	WatchingView
	ConfirmView
)

const eventBuffer = 16

// Model represents the TUI application state.
type Model struct {
	view      ViewState
	prev      ViewState
	favorites *favorites.Manager
	watching  *watching.Manager
	session   *session.Manager
	mu        sync.Mutex
	updates   chan events.Event
	closed    bool
	stop      func()
	width     int
	height    int
	favList   list.Model
	cwList    list.Model
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a TUI model over the library managers and subscribes it to bus.
//
// Call [Model.Close] once the program exits to drop the subscriptions.
func NewModel(bus *events.Bus, sess *session.Manager, favs *favorites.Manager, cw *watching.Manager) *Model {
	m := &Model{
		view:      FavoritesView,
		favorites: favs,
		watching:  cw,
		session:   sess,
		updates:   make(chan events.Event, eventBuffer),
		help:      help.New(),
		keys:      newKeyMap(),
	}

	m.favList = list.New(favoriteItems(favs.Favorites()), list.NewDefaultDelegate(), 0, 0)
	m.favList.Title = "Favorites"
	m.cwList = list.New(watchingItems(cw.Entries()), list.NewDefaultDelegate(), 0, 0)
	m.cwList.Title = "Continue Watching"

	m.stop = bus.SubscribeAll(m.forward,
		events.FavoritesUpdated,
		events.ContinueWatchingUpdated,
		events.AuthChanged,
		events.StorageChanged,
	)
	return m
}

// forward runs on the publisher's goroutine. Dropped events are harmless since every reload
// reads the full current state.
func (m *Model) forward(e events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.updates <- e:
	default:
	}
}

// Close unsubscribes from the bus and ends the event loop.
func (m *Model) Close() {
	m.stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.updates)
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init starts listening for bus notifications.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.favList.SetSize(msg.Width-4, msg.Height-8)
		m.cwList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FavoritesView, WatchingView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgBusEvent:
			e, _ := msg.Event()
			return m, tea.Batch(m.apply(e), m.waitForEvent())
		case MsgBusClosed:
			return m, nil
		}
	}

	return m.updateLists(msg)
}

// apply reloads whatever e says has changed.
func (m *Model) apply(e events.Event) tea.Cmd {
	switch e.Name {
	case events.FavoritesUpdated:
		return m.reloadFavorites()
	case events.ContinueWatchingUpdated:
		return m.reloadWatching()
	case events.AuthChanged:
		return m.checkSession()
	default:
		if cmd := m.checkSession(); cmd != nil {
			return cmd
		}
		return tea.Batch(m.reloadFavorites(), m.reloadWatching())
	}
}

// checkSession quits once the viewer is signed out, including by expiry or another process.
func (m *Model) checkSession() tea.Cmd {
	if m.session.IsAuthenticated() {
		return nil
	}
	m.err = shared.ErrNotAuthenticated
	return tea.Quit
}

func (m *Model) reloadFavorites() tea.Cmd {
	return m.favList.SetItems(favoriteItems(m.favorites.Favorites()))
}

func (m *Model) reloadWatching() tea.Cmd {
	return m.cwList.SetItems(watchingItems(m.watching.Entries()))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FavoritesView:
		return m.renderList(m.favList.View())
	case WatchingView:
		return m.renderList(m.cwList.View())
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.current()
	if current.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		if m.view == FavoritesView {
			m.view = WatchingView
		} else {
			m.view = FavoritesView
		}
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.removeSelected()
		return m, nil
	case key.Matches(msg, m.keys.clear):
		if len(current.Items()) == 0 {
			return m, nil
		}
		m.prev = m.view
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, tea.Batch(m.reloadFavorites(), m.reloadWatching())
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = m.prev
		if m.prev == FavoritesView {
			m.favorites.ClearAll()
			m.status = "Cleared favorites"
		} else {
			m.watching.ClearAll()
			m.status = "Cleared continue watching"
		}
		return m, nil
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = m.prev
		return m, nil
	}
	return m, nil
}

// removeSelected deletes the highlighted item. The list itself is refreshed by the resulting
// bus notification.
func (m *Model) removeSelected() {
	switch item := m.current().SelectedItem().(type) {
	case favoriteItem:
		m.favorites.Remove(item.favorite.ID)
		m.status = fmt.Sprintf("Removed %q from favorites", item.favorite.Title)
	case watchingItem:
		m.watching.Remove(item.entry.ID)
		m.status = fmt.Sprintf("Removed %q from continue watching", item.entry.Title)
	}
}

func (m *Model) current() *list.Model {
	if m.view == WatchingView || (m.view == ConfirmView && m.prev == WatchingView) {
		return &m.cwList
	}
	return &m.favList
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	case WatchingView:
		m.cwList, cmd = m.cwList.Update(msg)
	}
	return m, cmd
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.updates
		if !ok {
			return busClosedMsg()
		}
		return busEventMsg(e)
	}
}

func (m *Model) renderTabs() string {
	favTab := fmt.Sprintf("Favorites (%d)", len(m.favList.Items()))
	cwTab := fmt.Sprintf("Continue Watching (%d)", len(m.cwList.Items()))
	if m.view == WatchingView || (m.view == ConfirmView && m.prev == WatchingView) {
		return styles.tab.Render(favTab) + styles.activeTab.Render(cwTab)
	}
	return styles.activeTab.Render(favTab) + styles.tab.Render(cwTab)
}

func (m *Model) renderList(body string) string {
	header := m.renderTabs()
	if user, ok := m.session.GetUser(); ok {
		header = fmt.Sprintf("%s\n%s", header, styles.help.Render("Signed in as "+user.Email))
	}

	status := ""
	if m.status != "" {
		status = "\n" + styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.tab, m.keys.remove, m.keys.clear, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s%s\n\n%s", header, body, status, helpView)
}

func (m *Model) renderConfirm() string {
	name := "favorites"
	count := len(m.favList.Items())
	if m.prev == WatchingView {
		name = "continue watching"
		count = len(m.cwList.Items())
	}

	title := styles.title.Render(fmt.Sprintf("Clear all %s?", name))
	info := styles.warn.Render(fmt.Sprintf("%d items will be removed.", count))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
