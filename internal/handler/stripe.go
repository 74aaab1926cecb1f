package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/maxwang36/merisols-backend/internal/config"
	"github.com/maxwang36/merisols-backend/internal/middleware"
)

// StripeHandler creates checkout sessions. The session carries our
// user id and the plan's price id in metadata; the webhook reads both
// back when the payment completes.
type StripeHandler struct {
	cfg config.Config
}

func NewStripeHandler(cfg config.Config) *StripeHandler {
	stripe.Key = cfg.StripeSecretKey
	return &StripeHandler{cfg: cfg}
}

type checkoutReq struct {
	Plan   string `json:"plan"`
	UserID string `json:"userId"`
}

// CreateCheckoutSession handles POST /api/stripe/create-checkout-session.
func (h *StripeHandler) CreateCheckoutSession(c echo.Context) error {
	if h.cfg.StripeSecretKey == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Stripe is not configured on the backend."})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	// Prefer the resolved identity over whatever the body claims.
	if uid := middleware.CurrentUserID(c); uid != "" {
		req.UserID = uid
	}

	var priceID string
	switch strings.ToLower(strings.TrimSpace(req.Plan)) {
	case "monthly":
		priceID = h.cfg.StripePriceMonthly
	case "yearly":
		priceID = h.cfg.StripePriceYearly
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid subscription plan selected."})
	}
	if !strings.HasPrefix(priceID, "price_") {
		c.Logger().Errorf("stripe: missing or invalid price id for plan %q", req.Plan)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Configuration error: Stripe price id is not set correctly on the backend."})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(h.cfg.FrontendURL + "/subscription-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(h.cfg.FrontendURL + "/subscribe"),
	}
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("plan_price_id", priceID)

	s, err := session.New(params)
	if err != nil {
		c.Logger().Errorf("stripe: create checkout session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create checkout session."})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": s.URL, "sessionId": s.ID})
}
