package model

import "time"

// SubscriptionStatusActive marks a subscription row that is currently in
// force. Only the commerce webhook creates or extends these rows.
const SubscriptionStatusActive = "active"

// Subscription mirrors the `subscriptions` table.
type Subscription struct {
	ID        uint64    // subscriptions.subscription_id
	UserID    string    // subscriptions.user_id
	PlanID    uint64    // subscriptions.plan_id
	StartDate time.Time // subscriptions.start_date
	EndDate   time.Time // subscriptions.end_date
	Status    string    // subscriptions.status
}

// Plan mirrors the `plan` table. StripePriceID links a plan to the
// Stripe price passed through checkout-session metadata.
type Plan struct {
	ID            uint64 // plan.plan_id
	Name          string // plan.name
	StripePriceID string // plan.stripe_price_id
	DurationDays  int    // plan.duration_days
}
