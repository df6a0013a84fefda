// Package accounts implements viewer signup, login and plan subscription on top of the
// account repository.
//
// Passwords are stored as argon2id PHC strings. Requests are checked with struct tags before
// they reach the database, and every failure maps onto a sentinel from the shared package so
// callers can pick a status with errors.Is.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/repositories"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/go-playground/validator/v10"
)

// Payment methods accepted by [Service.Subscribe].
const (
	PaymentCard   = "credit-card"
	PaymentPayPal = "paypal"
	PaymentUPI    = "upi"
)

// SignupRequest registers a local account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Name     string `json:"name"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SubscribeRequest puts an account on a plan.
type SubscribeRequest struct {
	UserID        int    `json:"userId" validate:"required,gt=0"`
	PlanID        int    `json:"planId" validate:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=credit-card paypal upi"`
}

// SubscribeResult is the updated viewer and their new subscription.
type SubscribeResult struct {
	User         *models.User         `json:"user"`
	Subscription *models.Subscription `json:"subscription"`
}

// Service coordinates account persistence, password hashing and payments.
type Service struct {
	repo     *repositories.AccountRepository
	payments PaymentProcessor
	validate *validator.Validate
	params   *argon2id.Params
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithHashParams overrides the argon2id parameters used for new password hashes.
func WithHashParams(p *argon2id.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithClock overrides the time source for subscription start dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates an account [Service]. A nil processor approves payments immediately.
func NewService(repo *repositories.AccountRepository, payments PaymentProcessor, opts ...Option) *Service {
	if payments == nil {
		payments = NewMockPayments(0)
	}
	s := &Service{
		repo:     repo,
		payments: payments,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		params:   argon2id.DefaultParams,
		now:      time.Now,
		logger:   shared.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a local account and returns its password-free view.
//
// The name defaults to the part of the email before the "@".
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Email = shared.NormalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}

	hash, err := argon2id.CreateHash(req.Password, s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.NewAccount(req.Email, name, hash)
	if err := s.repo.Create(account); err != nil {
		return nil, err
	}

	s.logger.Info("account created", "id", account.ID(), "email", account.Email())
	return account.User(), nil
}

// Login verifies credentials. Unknown emails and wrong passwords both return
// [shared.ErrInvalidLogin].
func (s *Service) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	req.Email = shared.NormalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByEmail(req.Email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, account.PasswordHash())
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.logger.Warn("login rejected", "email", req.Email)
		return nil, shared.ErrInvalidLogin
	}

	s.logger.Info("login succeeded", "id", account.ID())
	return account.User(), nil
}

// Subscribe charges the account for the plan and stores the active subscription.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	account, err := s.repo.Get(req.UserID)
	if err != nil {
		return nil, err
	}

	plan, err := PlanByID(req.PlanID)
	if err != nil {
		return nil, err
	}

	txn, err := s.payments.Charge(ctx, req.PaymentMethod, plan.Price)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Status:        models.SubscriptionActive,
		StartDate:     models.Timestamp(s.now()),
		PaymentMethod: req.PaymentMethod,
		TransactionID: txn,
	}
	account.SetSubscription(sub)
	if err := s.repo.Update(account); err != nil {
		return nil, err
	}

	s.logger.Info("subscription activated", "id", account.ID(), "plan", plan.Slug, "transaction", txn)
	return &SubscribeResult{User: account.User(), Subscription: sub}, nil
}

// User returns the password-free view of an account.
func (s *Service) User(ctx context.Context, id int) (*models.User, error) {
	account, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return account.User(), nil
}

// check runs struct-tag validation and folds failures into [shared.ErrInvalidInput].
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, describe(e))
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(messages, "; "))
}

func describe(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
