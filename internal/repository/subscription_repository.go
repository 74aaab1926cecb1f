package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/maxwang36/merisols-backend/internal/model"
)

// SubscriptionRepo manages the `subscriptions` ledger and the `plan`
// catalogue it references.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// PlanByPriceID resolves the plan matching a Stripe price identifier
// carried in checkout metadata.
func (r *SubscriptionRepo) PlanByPriceID(ctx context.Context, priceID string) (model.Plan, error) {
	var p model.Plan
	err := r.DB.QueryRowContext(ctx,
		"SELECT plan_id, name, stripe_price_id, duration_days FROM plan WHERE stripe_price_id=? LIMIT 1",
		priceID).Scan(&p.ID, &p.Name, &p.StripePriceID, &p.DurationDays)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, ErrNotFound
	}
	return p, err
}

// ActiveEndDate returns the latest end date among the user's active
// subscriptions, or nil when there is none.
func (r *SubscriptionRepo) ActiveEndDate(ctx context.Context, userID string) (*time.Time, error) {
	var end time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT end_date FROM subscriptions WHERE user_id=? AND status=? ORDER BY end_date DESC LIMIT 1",
		userID, model.SubscriptionStatusActive).Scan(&end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &end, nil
}

// ExtendActive pushes the end date of the user's active subscription
// forward. Used when a payment stacks onto a subscription that has not
// yet lapsed.
func (r *SubscriptionRepo) ExtendActive(ctx context.Context, userID string, end time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET end_date=?, updated_at=NOW() WHERE user_id=? AND status=?",
		end, userID, model.SubscriptionStatusActive)
	return err
}

// Insert records a fresh subscription window.
func (r *SubscriptionRepo) Insert(ctx context.Context, s model.Subscription) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, status) VALUES (?,?,?,?,?)",
		s.UserID, s.PlanID, s.StartDate, s.EndDate, s.Status)
	return err
}

// SubscriptionWindow computes the start and end of a newly purchased
// subscription window. When the caller already holds an active
// subscription ending in the future, the new duration stacks onto that
// end date; otherwise it runs from now.
func SubscriptionWindow(now time.Time, existingEnd *time.Time, durationDays int) (start, end time.Time) {
	base := now
	if existingEnd != nil && existingEnd.After(now) {
		base = *existingEnd
	}
	return now, base.AddDate(0, 0, durationDays)
}
