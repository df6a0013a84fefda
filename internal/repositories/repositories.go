package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/cineflix/internal/models"
)

// scanner is the shared shape of [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func encodeSubscription(s *models.Subscription) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode subscription: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeSubscription(raw sql.NullString) (*models.Subscription, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var s models.Subscription
	if err := json.Unmarshal([]byte(raw.String), &s); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	return &s, nil
}
