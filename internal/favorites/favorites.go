// Package favorites manages the viewer's saved movies.
//
// The set lives under a single profile key as a JSON array in insertion order and is re-read
// on every call, so managers in separate processes stay consistent with each other up to the
// last completed write. Each mutation is a read-modify-write performed under the manager's
// mutex and followed by an [events.FavoritesUpdated] notification carrying the new count.
// Two processes toggling the same id concurrently can still both act on a stale read; the
// later write wins.
package favorites

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/storage"
)

// Key is the profile key owned by the favorites manager.
const Key = "cineflix_favorites"

// Favorite is a normalized saved movie.
type Favorite struct {
	models.Movie
	AddedAt string `json:"addedAt"`
}

// Manager owns the favorites key.
type Manager struct {
	mu     sync.Mutex
	kv     *storage.Adapter
	bus    events.Publisher
	now    func() time.Time
	logger *log.Logger
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock overrides the time source used for addedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a favorites [Manager]. A nil bus drops notifications.
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

// Favorites returns the saved movies in insertion order. It never returns nil.
func (m *Manager) Favorites() []Favorite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

// Add saves movie unless a favorite with the same id already exists.
func (m *Manager) Add(movie models.Movie) {
	m.mu.Lock()
	count, changed := m.add(movie)
	m.mu.Unlock()

	if changed {
		m.logger.Debug("favorite added", "id", movie.ID, "title", movie.Title)
	}
	m.publish(count)
}

// Remove drops the favorite with the given id. Missing ids are ignored.
func (m *Manager) Remove(id int) {
	m.mu.Lock()
	count := m.remove(id)
	m.mu.Unlock()

	m.publish(count)
}

// IsFavorite reports whether id is saved.
func (m *Manager) IsFavorite(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return indexOf(m.read(), id) >= 0
}

// Toggle adds movie if absent and removes it otherwise, returning the new membership.
func (m *Manager) Toggle(movie models.Movie) bool {
	m.mu.Lock()
	var (
		count int
		saved bool
	)
	if indexOf(m.read(), movie.ID) >= 0 {
		count = m.remove(movie.ID)
	} else {
		count, saved = m.add(movie)
	}
	m.mu.Unlock()

	m.publish(count)
	return saved
}

// ClearAll removes every favorite.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.kv.Remove(Key)
	m.mu.Unlock()

	m.publish(0)
}

// Count returns the number of saved movies.
func (m *Manager) Count() int {
	return len(m.Favorites())
}

func (m *Manager) read() []Favorite {
	var favorites []Favorite
	if !m.kv.Load(Key, &favorites) || favorites == nil {
		return []Favorite{}
	}
	return favorites
}

func (m *Manager) add(movie models.Movie) (int, bool) {
	favorites := m.read()
	if indexOf(favorites, movie.ID) >= 0 {
		return len(favorites), false
	}

	favorites = append(favorites, Favorite{
		Movie:   movie.Normalized(),
		AddedAt: models.Timestamp(m.now()),
	})
	if !m.kv.Save(Key, favorites) {
		return len(favorites) - 1, false
	}
	return len(favorites), true
}

func (m *Manager) remove(id int) int {
	favorites := m.read()
	kept := make([]Favorite, 0, len(favorites))
	for _, f := range favorites {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if !m.kv.Save(Key, kept) {
		return len(favorites)
	}
	return len(kept)
}

func (m *Manager) publish(count int) {
	m.bus.Publish(events.Event{Name: events.FavoritesUpdated, Count: count})
}

func indexOf(favorites []Favorite, id int) int {
	for i, f := range favorites {
		if f.ID == id {
			return i
		}
	}
	return -1
}
