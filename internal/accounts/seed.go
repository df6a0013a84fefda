package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
)

// DemoAccount is a built-in login shipped with every database.
type DemoAccount struct {
	ID       int
	Email    string
	Password string
	Name     string
	PlanID   int
}

// DemoAccounts are created by [Service.Seed]. IDs sit below the local signup range.
var DemoAccounts = []DemoAccount{
	{ID: 1, Email: "demo@cineflix.com", Password: "Demo@2024!Secure", Name: "Demo User", PlanID: 3},
	{ID: 2, Email: "test@test.com", Password: "Test@2024!Pass", Name: "Test User"},
}

// Seed creates any missing demo accounts and reports how many were added.
func (s *Service) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, demo := range DemoAccounts {
		if _, err := s.repo.Get(demo.ID); err == nil {
			continue
		} else if !errors.Is(err, shared.ErrUserNotFound) {
			return created, err
		}

		hash, err := argon2id.CreateHash(demo.Password, s.params)
		if err != nil {
			return created, fmt.Errorf("failed to hash password: %w", err)
		}

		account := models.NewAccount(demo.Email, demo.Name, hash)
		account.SetID(demo.ID)
		account.SetLocal(false)

		if demo.PlanID != 0 {
			plan, err := PlanByID(demo.PlanID)
			if err != nil {
				return created, err
			}
			account.SetSubscription(&models.Subscription{
				PlanID:        plan.ID,
				PlanName:      plan.Name,
				Status:        models.SubscriptionActive,
				StartDate:     models.Timestamp(s.now()),
				PaymentMethod: PaymentCard,
			})
		}

		if err := s.repo.Create(account); err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", demo.Email, err)
		}
		created++
		s.logger.Debug("seeded demo account", "email", demo.Email)
	}
	return created, nil
}
