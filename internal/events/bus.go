// Package events implements the in-process change notification bus.
//
// Publishing is synchronous: every handler subscribed to the event name runs on the
// publisher's goroutine before [Bus.Publish] returns. Handlers are invoked after the
// registry lock is released, so a handler may subscribe, unsubscribe or publish again.
// Ordering between handlers, and between different event names, is unspecified.
package events

import "sync"

// Event names published by the state managers.
const (
	AuthChanged             = "authChanged"
	FavoritesUpdated        = "favoritesUpdated"
	ContinueWatchingUpdated = "continueWatchingUpdated"
	// StorageChanged is the low-level signal for a key written by another process.
	StorageChanged = "storage"
)

// Event is a change notification. Count and Key are optional hints.
type Event struct {
	Name  string
	Count int
	Key   string
}

// Handler receives published events.
type Handler func(Event)

// Publisher is the publish side of a [Bus].
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	handler Handler
}

// Bus is an observer registry mapping event names to handlers.
//
// The zero value is ready to use.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

// NewBus returns an empty [Bus].
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// Subscribe registers handler for name and returns a function that removes it.
//
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(name string, handler Handler) (unsubscribe func()) {
	s := &subscription{handler: handler}

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[string][]*subscription)
	}
	b.subs[name] = append(b.subs[name], s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, s) })
	}
}

// SubscribeAll registers handler for each of names.
func (b *Bus) SubscribeAll(handler Handler, names ...string) (unsubscribe func()) {
	cancels := make([]func(), 0, len(names))
	for _, name := range names {
		cancels = append(cancels, b.Subscribe(name, handler))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (b *Bus) remove(name string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.subs[name]
	for i, s := range current {
		if s == target {
			next := make([]*subscription, 0, len(current)-1)
			next = append(next, current[:i]...)
			next = append(next, current[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, name)
			} else {
				b.subs[name] = next
			}
			return
		}
	}
}

// Publish delivers e to every handler subscribed to e.Name at the time of the call.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.subs[e.Name]
	b.mu.RUnlock()

	for _, s := range handlers {
		s.handler(e)
	}
}

// Subscribers returns the number of handlers registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Discard is a [Publisher] that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
