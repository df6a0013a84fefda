package storage

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/shared"
)

// Watcher polls a [SQLiteStore] and publishes [events.StorageChanged] for every key last
// written by a different origin. Writes made through the watched store itself are skipped;
// in-process changes are already announced by the managers.
type Watcher struct {
	store    *SQLiteStore
	bus      events.Publisher
	interval time.Duration
	logger   *log.Logger
	last     int64
}

// NewWatcher creates a [Watcher] that starts from the store's current revision.
func NewWatcher(ctx context.Context, store *SQLiteStore, bus events.Publisher, interval time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = shared.NopLogger()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	last, err := store.LatestRevision(ctx)
	if err != nil {
		return nil, err
	}

	return &Watcher{store: store, bus: bus, interval: interval, logger: logger, last: last}, nil
}

// Poll publishes pending foreign changes and returns how many were published.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	changes, err := w.store.ChangesSince(ctx, w.last)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, c := range changes {
		w.last = c.Revision
		if c.Origin == w.store.Origin() {
			continue
		}
		w.logger.Debug("storage changed", "key", c.Key, "revision", c.Revision, "deleted", c.Deleted)
		w.bus.Publish(events.Event{Name: events.StorageChanged, Key: c.Key})
		published++
	}
	return published, nil
}

// Run polls on every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn("failed to poll storage changes", "error", err)
			}
		}
	}
}
