package models

import (
	"fmt"
	"net/mail"
	"time"
)

// Account is a locally registered viewer, persisted with a password hash.
type Account struct {
	id           int
	email        string
	name         string
	passwordHash string
	subscription *Subscription
	isLocal      bool
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewAccount creates an [Account] with creation timestamps set to now.
//
// The ID is assigned by the repository unless set with [Account.SetID] beforehand.
func NewAccount(email, name, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		isLocal:      true,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (a *Account) ID() int                     { return a.id }
func (a *Account) Email() string               { return a.email }
func (a *Account) Name() string                { return a.name }
func (a *Account) PasswordHash() string        { return a.passwordHash }
func (a *Account) Subscription() *Subscription { return a.subscription }
func (a *Account) IsLocal() bool               { return a.isLocal }
func (a *Account) CreatedAt() time.Time        { return a.createdAt }
func (a *Account) UpdatedAt() time.Time        { return a.updatedAt }
func (a *Account) DeletedAt() *time.Time       { return a.deletedAt }

func (a *Account) SetID(id int)                    { a.id = id }
func (a *Account) SetName(name string)             { a.name = name }
func (a *Account) SetPasswordHash(hash string)     { a.passwordHash = hash }
func (a *Account) SetSubscription(s *Subscription) { a.subscription = s }
func (a *Account) SetLocal(local bool)             { a.isLocal = local }
func (a *Account) SetCreatedAt(t time.Time)        { a.createdAt = t }
func (a *Account) SetUpdatedAt(t time.Time)        { a.updatedAt = t }
func (a *Account) SetDeletedAt(t *time.Time)       { a.deletedAt = t }

// Validate checks the email address and password hash.
func (a *Account) Validate() error {
	if a.email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(a.email); err != nil {
		return fmt.Errorf("invalid email %q: %w", a.email, err)
	}
	if a.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

// User returns the password-free view of the account.
func (a *Account) User() *User {
	return &User{
		ID:           a.id,
		Email:        a.email,
		Name:         a.name,
		CreatedAt:    Timestamp(a.createdAt),
		IsLocalUser:  a.isLocal,
		Subscription: a.subscription,
	}
}
