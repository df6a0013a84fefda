// Package repositories implements SQLite persistence for cineflix entities.
//
// Repositories implement [models.Repository] and exclude soft-deleted rows (deleted_at set) from
// every query.
//
// Key Implementations:
//   - [AccountRepository] : locally registered viewer accounts with case-insensitive email lookups
//
// New rows take their ID from a per-table sequence (see [shared.NextSequence]) unless the caller
// assigns one, which is how the seeded demo accounts keep their fixed IDs below the local range.
package repositories
