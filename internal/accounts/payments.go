package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/cineflix/internal/shared"
)

// PaymentProcessor charges a viewer for a plan and returns a transaction id.
type PaymentProcessor interface {
	Charge(ctx context.Context, method string, amount float64) (string, error)
}

// MockPayments approves every charge after a fixed delay.
type MockPayments struct {
	Delay time.Duration
	now   func() time.Time
}

// NewMockPayments creates a [MockPayments] that waits delay before approving.
func NewMockPayments(delay time.Duration) *MockPayments {
	return &MockPayments{Delay: delay, now: time.Now}
}

// Charge waits for the configured delay and returns a TXN-<millis>-<suffix> id.
// It fails only if ctx ends first.
func (p *MockPayments) Charge(ctx context.Context, method string, amount float64) (string, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", shared.ErrPaymentFailed, ctx.Err())
		case <-timer.C:
		}
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	suffix := strings.ReplaceAll(shared.GenerateID(), "-", "")[:9]
	return fmt.Sprintf("TXN-%d-%s", now().UnixMilli(), suffix), nil
}
