package storage

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/shared"
)

// Adapter wraps a [Store] with JSON encode/decode and absorbs its failures.
//
// No method returns an error: a failed write leaves the previous value in place and a failed
// or undecodable read behaves as if the key were absent.
type Adapter struct {
	store  Store
	logger *log.Logger
}

// NewAdapter creates an [Adapter] over store. A nil logger discards output.
func NewAdapter(store Store, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &Adapter{store: store, logger: logger}
}

// Store returns the underlying [Store].
func (a *Adapter) Store() Store {
	return a.store
}

// Raw returns the stored string for key.
func (a *Adapter) Raw(key string) (string, bool) {
	v, ok, err := a.store.Get(key)
	if err != nil {
		a.logger.Error("failed to read key", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// SetRaw stores value under key. It reports whether the write succeeded.
func (a *Adapter) SetRaw(key, value string) bool {
	if err := a.store.Set(key, value); err != nil {
		a.logger.Error("failed to write key", "key", key, "error", err)
		return false
	}
	return true
}

// Has reports whether key is present.
func (a *Adapter) Has(key string) bool {
	_, ok := a.Raw(key)
	return ok
}

// Load decodes the JSON stored under key into v and reports whether it succeeded.
func (a *Adapter) Load(key string, v any) bool {
	raw, ok := a.Raw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		a.logger.Warn("discarding malformed value", "key", key, "error", err)
		return false
	}
	return true
}

// Save encodes v as JSON under key. It reports whether the write succeeded.
func (a *Adapter) Save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("failed to encode value", "key", key, "error", err)
		return false
	}
	return a.SetRaw(key, string(data))
}

// Remove deletes key. It reports whether the delete succeeded.
func (a *Adapter) Remove(key string) bool {
	if err := a.store.Remove(key); err != nil {
		a.logger.Error("failed to remove key", "key", key, "error", err)
		return false
	}
	return true
}
