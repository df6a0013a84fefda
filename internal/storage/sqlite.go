package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cineflix/internal/shared"
)

// Change describes one write recorded in the kv_entries table.
type Change struct {
	Key      string
	Revision int64
	Origin   string
	Deleted  bool
}

// SQLiteStore implements [Store] on the kv_entries table.
//
// Every write takes the next revision from kv_entries_sequence and is stamped with the store's
// origin, letting a [Watcher] tell writes made by other processes apart from its own.
// Removes are soft deletes.
type SQLiteStore struct {
	db     *sql.DB
	origin string
}

// NewSQLiteStore creates a [SQLiteStore] with a freshly generated origin.
//
// The database must have migrations applied.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, origin: shared.GenerateID()}
}

// Origin returns the identifier stamped on this store's writes.
func (s *SQLiteStore) Origin() string {
	return s.origin
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow(
		"SELECT value FROM kv_entries WHERE key = ? AND deleted_at IS NULL", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value.String, value.Valid, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, revision, origin, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, NULL)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			origin = excluded.origin,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`
	return s.write(key, func(ctx context.Context, tx *sql.Tx, revision int64, now time.Time) error {
		_, err := tx.ExecContext(ctx, query, key, value, revision, s.origin, now)
		return err
	})
}

func (s *SQLiteStore) Remove(key string) error {
	query := `
		UPDATE kv_entries
		SET value = NULL, revision = ?, origin = ?, updated_at = ?, deleted_at = ?
		WHERE key = ? AND deleted_at IS NULL
	`
	return s.write(key, func(ctx context.Context, tx *sql.Tx, revision int64, now time.Time) error {
		_, err := tx.ExecContext(ctx, query, revision, s.origin, now, now, key)
		return err
	})
}

func (s *SQLiteStore) write(key string, fn func(context.Context, *sql.Tx, int64, time.Time) error) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	revision, err := shared.NextSequenceTx(ctx, tx, "kv_entries")
	if err != nil {
		return err
	}

	if err := fn(ctx, tx, revision, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit key %s: %w", key, err)
	}
	return nil
}

// LatestRevision returns the highest revision written so far.
func (s *SQLiteStore) LatestRevision(ctx context.Context) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries_sequence WHERE id = 1").Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return revision, nil
}

// ChangesSince lists entries whose latest write has a revision greater than after, oldest first.
//
// Only the most recent write of each key is visible.
func (s *SQLiteStore) ChangesSince(ctx context.Context, after int64) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, revision, origin, deleted_at IS NOT NULL
		FROM kv_entries
		WHERE revision > ?
		ORDER BY revision ASC
	`, after)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.Key, &c.Revision, &c.Origin, &c.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return changes, nil
}
