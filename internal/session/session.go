// Package session owns the authenticated viewer's record and its validity window.
//
// A session spans three profile keys: the user JSON, an authentication flag and the epoch-millis
// time the session was started or last refreshed. It is valid only while the flag is set, the
// user decodes, and the stamp is no older than the configured timeout. Expiry is detected lazily
// on read; nothing fires a teardown on a timer.
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/storage"
)

// Profile keys owned by the session manager.
const (
	UserKey      = "cineflix_user"
	AuthKey      = "cineflix_isAuthenticated"
	TimestampKey = "cineflix_session_timestamp"
)

const authenticated = "true"

const (
	DefaultTimeout         = 24 * time.Hour
	DefaultRefreshInterval = 5 * time.Minute
)

// Dependent is a per-viewer store that is emptied when the session ends.
type Dependent interface {
	ClearAll()
}

// Manager reads and writes the session keys.
type Manager struct {
	mu         sync.Mutex
	kv         *storage.Adapter
	bus        events.Publisher
	now        func() time.Time
	timeout    time.Duration
	logger     *log.Logger
	dependents []Dependent
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTimeout sets the session lifetime. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDependents registers stores to clear on logout or expiry.
func WithDependents(deps ...Dependent) Option {
	return func(m *Manager) { m.dependents = append(m.dependents, deps...) }
}

// NewManager creates a session [Manager]. A nil bus drops notifications.
func NewManager(kv *storage.Adapter, bus events.Publisher, opts ...Option) *Manager {
	if bus == nil {
		bus = events.Discard
	}
	m := &Manager{
		kv:      kv,
		bus:     bus,
		now:     time.Now,
		timeout: DefaultTimeout,
		logger:  shared.NopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SaveSession stores user, marks the profile authenticated and stamps the session start.
func (m *Manager) SaveSession(user *models.User) {
	if user == nil {
		return
	}

	m.mu.Lock()
	ok := m.kv.Save(UserKey, user) && m.stamp()
	m.mu.Unlock()

	if ok {
		m.logger.Info("session saved", "email", user.Email)
	}
	m.publish()
}

// GetUser returns the current viewer.
//
// An expired session is torn down by this call. A missing, unreadable or malformed stamp counts
// as expired.
func (m *Manager) GetUser() (*models.User, bool) {
	m.mu.Lock()
	user, expired := m.current()
	m.mu.Unlock()

	if expired {
		m.logger.Info("session expired")
		m.ClearSession()
		return nil, false
	}
	return user, user != nil
}

// IsAuthenticated reports whether the flag is set and [Manager.GetUser] finds a live session.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	flag, _ := m.kv.Raw(AuthKey)
	m.mu.Unlock()

	_, ok := m.GetUser()
	return flag == authenticated && ok
}

// ClearSession removes the session keys and empties every dependent store.
func (m *Manager) ClearSession() {
	m.mu.Lock()
	for _, key := range []string{UserKey, AuthKey, TimestampKey} {
		m.kv.Remove(key)
	}
	deps := append([]Dependent(nil), m.dependents...)
	m.mu.Unlock()

	for _, d := range deps {
		d.ClearAll()
	}
	m.logger.Info("session cleared")
	m.publish()
}

// UpdateUser shallow-merges patch over the stored user JSON and saves the result with a fresh
// stamp. Fields absent from patch keep their stored values, including ones [models.User] does
// not know about. It returns false when there is no live session.
func (m *Manager) UpdateUser(patch map[string]any) (*models.User, bool) {
	if _, ok := m.GetUser(); !ok {
		return nil, false
	}

	m.mu.Lock()
	var merged map[string]any
	if !m.kv.Load(UserKey, &merged) || merged == nil {
		m.mu.Unlock()
		return nil, false
	}
	for k, v := range patch {
		merged[k] = v
	}

	user, err := decodeUser(merged)
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("rejected user update", "error", err)
		return nil, false
	}
	ok := m.kv.Save(UserKey, merged) && m.kv.SetRaw(AuthKey, authenticated) && m.stamp()
	m.mu.Unlock()

	if ok {
		m.logger.Info("user updated", "email", user.Email)
	}
	m.publish()
	return user, true
}

// HasSubscription reports whether the current viewer has an active subscription.
func (m *Manager) HasSubscription() bool {
	return m.GetSubscription().Active()
}

// GetSubscription returns the current viewer's subscription, or nil.
func (m *Manager) GetSubscription() *models.Subscription {
	user, ok := m.GetUser()
	if !ok {
		return nil
	}
	return user.Subscription
}

// RefreshSession re-stamps a live session, extending its deadline. It reports whether a
// session was refreshed.
func (m *Manager) RefreshSession() bool {
	if !m.IsAuthenticated() {
		return false
	}

	m.mu.Lock()
	ok := m.stamp()
	m.mu.Unlock()

	if ok {
		m.publish()
	}
	return ok
}

// KeepAlive refreshes the session every interval until ctx is done.
func (m *Manager) KeepAlive(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.RefreshSession() {
				m.logger.Debug("session refreshed")
			}
		}
	}
}

// Deadline returns when the current session expires.
func (m *Manager) Deadline() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	started, ok := m.startedAt()
	if !ok {
		return time.Time{}, false
	}
	return started.Add(m.timeout), true
}

// current returns the stored user and whether the session has expired. A stored null reads
// as no user. Callers hold m.mu.
func (m *Manager) current() (*models.User, bool) {
	var user *models.User
	if !m.kv.Load(UserKey, &user) || user == nil {
		return nil, false
	}

	started, ok := m.startedAt()
	if !ok || m.now().Sub(started) > m.timeout {
		return nil, true
	}
	return user, false
}

func (m *Manager) startedAt() (time.Time, bool) {
	raw, ok := m.kv.Raw(TimestampKey)
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.logger.Warn("discarding malformed session timestamp", "value", raw)
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (m *Manager) stamp() bool {
	return m.kv.SetRaw(AuthKey, authenticated) &&
		m.kv.SetRaw(TimestampKey, strconv.FormatInt(m.now().UnixMilli(), 10))
}

func (m *Manager) publish() {
	m.bus.Publish(events.Event{Name: events.AuthChanged})
}

func decodeUser(fields map[string]any) (*models.User, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
