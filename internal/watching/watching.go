// Package watching manages the continue-watching list: the movies a viewer has started,
// most recently played first, capped at [MaxEntries].
//
// Recency is positional. Upserting an entry moves it to the front without sorting on its
// timestamp, and the oldest entries fall off the tail once the cap is exceeded.
package watching

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/storage"
)

const (
	// Key is the profile key owned by the continue-watching manager.
	Key = "cineflix_continue_watching"
	// MaxEntries bounds the list length.
	MaxEntries = 20
)

// Entry is an in-progress movie with playback position.
//
// The movie is kept whole. Its display Duration is shadowed by the playback duration in
// seconds, which owns the "duration" JSON key.
type Entry struct {
	models.Movie
	Progress    float64 `json:"progress"`
	Duration    float64 `json:"duration"`
	LastWatched string  `json:"lastWatched"`
	Timestamp   int64   `json:"timestamp"`
}

// Percent returns the watched fraction as a percentage in [0, 100].
func (e Entry) Percent() float64 {
	if e.Duration <= 0 {
		return 0
	}
	p := e.Progress / e.Duration * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Manager owns the continue-watching key.
type Manager struct {
	mu     sync.Mutex
	kv     *storage.Adapter
	bus    events.Publisher
	now    func() time.Time
	logger *log.Logger
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock overrides the time source used for lastWatched/timestamp stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a continue-watching [Manager]. A nil bus drops notifications.
func NewManager(kv *storage.Adapter, bus events.Publisher, opts ...Option) *Manager {
	if bus == nil {
		bus = events.Discard
	}
	m := &Manager{kv: kv, bus: bus, now: time.Now, logger: shared.NopLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Entries returns the list, most recently played first. It never returns nil.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

// Add records playback of movie, moving it to the front of the list.
//
// An existing entry for the same id is replaced rather than duplicated.
func (m *Manager) Add(movie models.Movie, progress, duration float64) {
	now := m.now()
	movie.Image = movie.ResolvedImage()
	movie.Year = movie.ReleaseYear()
	entry := Entry{
		Movie:       movie,
		Progress:    progress,
		Duration:    duration,
		LastWatched: models.Timestamp(now),
		Timestamp:   now.UnixMilli(),
	}
	m.mu.Lock()
	entries := m.read()
	next := make([]Entry, 0, len(entries)+1)
	next = append(next, entry)
	for _, e := range entries {
		if e.ID != entry.ID {
			next = append(next, e)
		}
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	count := len(next)
	if !m.kv.Save(Key, next) {
		count = len(entries)
	}
	m.mu.Unlock()

	m.logger.Debug("playback recorded", "id", movie.ID, "progress", progress, "duration", duration)
	m.publish(count)
}

// Remove drops the entry with the given id. Missing ids are ignored.
func (m *Manager) Remove(id int) {
	m.mu.Lock()
	entries := m.read()
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	count := len(kept)
	if !m.kv.Save(Key, kept) {
		count = len(entries)
	}
	m.mu.Unlock()

	m.publish(count)
}

// Progress returns the recorded position for id, or 0 when it isn't in the list.
func (m *Manager) Progress(id int) float64 {
	e, ok := m.Get(id)
	if !ok {
		return 0
	}
	return e.Progress
}

// Count returns the number of entries.
func (m *Manager) Count() int {
	return len(m.Entries())
}

// Get returns the entry for id.
func (m *Manager) Get(id int) (Entry, bool) {
	for _, e := range m.Entries() {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ClearAll empties the list.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.kv.Remove(Key)
	m.mu.Unlock()

	m.publish(0)
}

func (m *Manager) read() []Entry {
	var entries []Entry
	if !m.kv.Load(Key, &entries) || entries == nil {
		return []Entry{}
	}
	return entries
}

func (m *Manager) publish(count int) {
	m.bus.Publish(events.Event{Name: events.ContinueWatchingUpdated, Count: count})
}
