package models

import "time"

// SubscriptionActive is the [Subscription] status of a paying viewer.
const SubscriptionActive = "active"

// User is the authenticated viewer. It never carries a password.
type User struct {
	ID           int           `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	IsLocalUser  bool          `json:"isLocalUser,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Subscription records a viewer's plan membership.
type Subscription struct {
	PlanID        int    `json:"planId"`
	PlanName      string `json:"planName"`
	Status        string `json:"status"`
	StartDate     string `json:"startDate"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId,omitempty"`
}

// Active reports whether the subscription is in good standing.
func (s *Subscription) Active() bool {
	return s != nil && s.Status == SubscriptionActive
}

// Plan is a purchasable subscription tier.
type Plan struct {
	ID       int      `json:"id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Quality  string   `json:"quality"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular,omitempty"`
}

// Timestamp formats t the way stored records expect (RFC 3339, UTC, millisecond precision).
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
