package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/mattn/go-sqlite3"
)

const accountColumns = `id, email, name, password_hash, subscription, is_local, created_at, updated_at, deleted_at`

// AccountRepository implements [models.Repository] for [models.Account] persistence.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. Accounts without an ID take the next value of the accounts
// sequence. A duplicate email returns [shared.ErrUserExists].
func (r *AccountRepository) Create(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if account.ID() == 0 {
		id, err := shared.NextSequence(context.Background(), r.db, "accounts")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		account.SetID(int(id))
	}

	sub, err := encodeSubscription(account.Subscription())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, email, name, password_hash, subscription, is_local, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, account.ID(), account.Email(), account.Name(), account.PasswordHash(),
		sub, account.IsLocal(), account.CreatedAt(), account.UpdatedAt())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", shared.ErrUserExists, account.Email())
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(id int) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ? AND deleted_at IS NULL`

	account, err := scanAccount(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", shared.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email, ignoring case.
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ? AND deleted_at IS NULL`

	account, err := scanAccount(r.db.QueryRow(query, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// Update modifies an existing account in the database
func (r *AccountRepository) Update(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sub, err := encodeSubscription(account.Subscription())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	account.SetUpdatedAt(now)

	query := `
		UPDATE accounts
		SET email = ?, name = ?, password_hash = ?, subscription = ?, is_local = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, account.Email(), account.Name(), account.PasswordHash(), sub,
		account.IsLocal(), now, account.ID())
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return expectRow(result, account.ID())
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(id int) error {
	query := `
		UPDATE accounts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves all accounts matching the given criteria, excluding soft-deleted accounts.
//
// Supported criteria: "email" (string) and "subscribed" (bool, matches an active subscription).
func (r *AccountRepository) List(criteria map[string]any) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE deleted_at IS NULL`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	subscribed, filter := criteria["subscribed"].(bool)

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if filter && account.Subscription().Active() != subscribed {
			continue
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		id           int
		email        string
		name         string
		passwordHash string
		subscription sql.NullString
		isLocal      bool
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	if err := row.Scan(&id, &email, &name, &passwordHash, &subscription, &isLocal, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	sub, err := decodeSubscription(subscription)
	if err != nil {
		return nil, err
	}

	account := models.NewAccount(email, name, passwordHash)
	account.SetID(id)
	account.SetSubscription(sub)
	account.SetLocal(isLocal)
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}

	return account, nil
}

func expectRow(result sql.Result, id int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", shared.ErrUserNotFound, id)
	}
	return nil
}

var _ models.Repository[*models.Account] = (*AccountRepository)(nil)
