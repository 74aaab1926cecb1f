package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/maxwang36/merisols-backend/internal/config"
	"github.com/maxwang36/merisols-backend/internal/model"
	"github.com/maxwang36/merisols-backend/internal/repository"
)

// eventDedupTTL bounds how long processed webhook event ids are
// remembered. Stripe retries deliveries for up to three days; keep the
// guard a little longer.
const eventDedupTTL = 96 * time.Hour

// SubscriptionLedger is the slice of subscription persistence the
// webhook needs. Implemented by repository.SubscriptionRepo.
type SubscriptionLedger interface {
	PlanByPriceID(ctx context.Context, priceID string) (model.Plan, error)
	ActiveEndDate(ctx context.Context, userID string) (*time.Time, error)
	ExtendActive(ctx context.Context, userID string, end time.Time) error
	Insert(ctx context.Context, s model.Subscription) error
}

// eventGuard remembers which webhook event ids have been handled.
// MarkProcessed claims an id and reports whether this delivery is the
// first; Forget releases a claim so Stripe's retry of a failed delivery
// is processed instead of swallowed.
type eventGuard interface {
	MarkProcessed(ctx context.Context, eventID string) (first bool, err error)
	Forget(ctx context.Context, eventID string) error
}

type redisEventGuard struct{ rdb *redis.Client }

func (g redisEventGuard) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return g.rdb.SetNX(ctx, "stripe:event:"+eventID, 1, eventDedupTTL).Result()
}

func (g redisEventGuard) Forget(ctx context.Context, eventID string) error {
	return g.rdb.Del(ctx, "stripe:event:"+eventID).Err()
}

// StripeWebhookHandler applies confirmed payments to the subscription
// ledger. Signature verification comes first, then an event-id
// idempotency check so a redelivered webhook cannot double-extend a
// subscription.
type StripeWebhookHandler struct {
	cfg   config.Config
	Subs  SubscriptionLedger
	guard eventGuard
}

func NewStripeWebhookHandler(cfg config.Config, subs *repository.SubscriptionRepo, rdb *redis.Client) *StripeWebhookHandler {
	h := &StripeWebhookHandler{cfg: cfg, Subs: subs}
	if rdb != nil {
		h.guard = redisEventGuard{rdb: rdb}
	}
	return h
}

// Handle handles POST /api/stripe/webhook. The raw body is required
// for signature verification, so nothing upstream may bind it first.
func (h *StripeWebhookHandler) Handle(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "could not read body"})
	}
	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.cfg.StripeWebhookSecret)
	if err != nil {
		c.Logger().Warnf("stripe webhook: signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Webhook signature verification failed"})
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed event payload"})
	}
	userID := cs.Metadata["user_id"]
	planPriceID := cs.Metadata["plan_price_id"]
	if userID == "" || planPriceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing user_id or plan_price_id in metadata."})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	claimed := false
	if h.guard != nil {
		first, err := h.guard.MarkProcessed(ctx, event.ID)
		if err != nil {
			// Redis being down should not lose a payment; process anyway and
			// accept the (pre-existing) duplicate risk.
			c.Logger().Warnf("stripe webhook: idempotency check failed: %v", err)
		} else if !first {
			return c.JSON(http.StatusOK, echo.Map{"received": true, "duplicate": true})
		} else {
			claimed = true
		}
	}

	if err := h.applyPayment(ctx, userID, planPriceID); err != nil {
		// Release the claim so Stripe's retry of this event is processed
		// rather than answered as a duplicate.
		if claimed {
			if ferr := h.guard.Forget(ctx, event.ID); ferr != nil {
				c.Logger().Errorf("stripe webhook: release event %s: %v", event.ID, ferr)
			}
		}
		c.Logger().Errorf("stripe webhook: apply payment for user %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to process payment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// applyPayment resolves the plan and stacks or opens a subscription
// window for the paying user.
func (h *StripeWebhookHandler) applyPayment(ctx context.Context, userID, planPriceID string) error {
	plan, err := h.Subs.PlanByPriceID(ctx, planPriceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errors.New("no plan matches price " + planPriceID)
		}
		return err
	}

	now := time.Now().UTC()
	existingEnd, err := h.Subs.ActiveEndDate(ctx, userID)
	if err != nil {
		return err
	}
	start, end := repository.SubscriptionWindow(now, existingEnd, plan.DurationDays)

	if existingEnd != nil && existingEnd.After(now) {
		return h.Subs.ExtendActive(ctx, userID, end)
	}
	return h.Subs.Insert(ctx, model.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   end,
		Status:    model.SubscriptionStatusActive,
	})
}
