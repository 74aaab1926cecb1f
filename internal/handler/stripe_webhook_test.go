package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/maxwang36/merisols-backend/internal/config"
	"github.com/maxwang36/merisols-backend/internal/model"
)

const webhookTestSecret = "whsec_test"

type mockSubscriptionLedger struct{ mock.Mock }

func (m *mockSubscriptionLedger) PlanByPriceID(ctx context.Context, priceID string) (model.Plan, error) {
	args := m.Called(ctx, priceID)
	return args.Get(0).(model.Plan), args.Error(1)
}

func (m *mockSubscriptionLedger) ActiveEndDate(ctx context.Context, userID string) (*time.Time, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *mockSubscriptionLedger) ExtendActive(ctx context.Context, userID string, end time.Time) error {
	return m.Called(ctx, userID, end).Error(0)
}

func (m *mockSubscriptionLedger) Insert(ctx context.Context, s model.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

// fakeEventGuard mirrors the SETNX/DEL semantics in memory.
type fakeEventGuard struct {
	seen   map[string]bool
	forgot int
}

func newFakeEventGuard() *fakeEventGuard {
	return &fakeEventGuard{seen: map[string]bool{}}
}

func (g *fakeEventGuard) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if g.seen[eventID] {
		return false, nil
	}
	g.seen[eventID] = true
	return true, nil
}

func (g *fakeEventGuard) Forget(ctx context.Context, eventID string) error {
	delete(g.seen, eventID)
	g.forgot++
	return nil
}

func checkoutEventBody(eventID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":"checkout.session.completed","data":{"object":{"metadata":{"user_id":"u1","plan_price_id":"price_m"}}}}`,
		eventID, stripe.APIVersion))
}

// deliverWebhook posts body with a freshly computed Stripe-Signature
// header, the way Stripe signs each (re)delivery.
func deliverWebhook(t *testing.T, h *StripeWebhookHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, body)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	rec := httptest.NewRecorder()
	require.NoError(t, h.Handle(e.NewContext(req, rec)))
	return rec
}

func newWebhookHandler(ledger SubscriptionLedger, guard eventGuard) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		cfg:   config.Config{StripeWebhookSecret: webhookTestSecret},
		Subs:  ledger,
		guard: guard,
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newWebhookHandler(new(mockSubscriptionLedger), newFakeEventGuard())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(checkoutEventBody("evt_1")))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()

	require.NoError(t, h.Handle(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAppliesPayment(t *testing.T) {
	ledger := new(mockSubscriptionLedger)
	ledger.On("PlanByPriceID", mock.Anything, "price_m").Return(model.Plan{ID: 1, DurationDays: 30}, nil)
	ledger.On("ActiveEndDate", mock.Anything, "u1").Return((*time.Time)(nil), nil)
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("model.Subscription")).Return(nil)
	h := newWebhookHandler(ledger, newFakeEventGuard())

	rec := deliverWebhook(t, h, checkoutEventBody("evt_1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	ledger.AssertExpectations(t)
}

func TestWebhookDuplicateDeliverySkipsLedger(t *testing.T) {
	ledger := new(mockSubscriptionLedger)
	ledger.On("PlanByPriceID", mock.Anything, "price_m").Return(model.Plan{ID: 1, DurationDays: 30}, nil).Once()
	ledger.On("ActiveEndDate", mock.Anything, "u1").Return((*time.Time)(nil), nil).Once()
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("model.Subscription")).Return(nil).Once()
	h := newWebhookHandler(ledger, newFakeEventGuard())

	body := checkoutEventBody("evt_1")
	first := deliverWebhook(t, h, body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := deliverWebhook(t, h, body)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"duplicate":true`)
	ledger.AssertExpectations(t)
}

func TestWebhookFailureThenRetryStillAppliesPayment(t *testing.T) {
	ledger := new(mockSubscriptionLedger)
	// First delivery hits a transient store failure; the retry succeeds.
	ledger.On("PlanByPriceID", mock.Anything, "price_m").Return(model.Plan{}, errors.New("connection reset")).Once()
	ledger.On("PlanByPriceID", mock.Anything, "price_m").Return(model.Plan{ID: 1, DurationDays: 30}, nil).Once()
	ledger.On("ActiveEndDate", mock.Anything, "u1").Return((*time.Time)(nil), nil).Once()
	ledger.On("Insert", mock.Anything, mock.AnythingOfType("model.Subscription")).Return(nil).Once()

	guard := newFakeEventGuard()
	h := newWebhookHandler(ledger, guard)
	body := checkoutEventBody("evt_1")

	first := deliverWebhook(t, h, body)
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	// The failed delivery must release its idempotency claim.
	assert.Equal(t, 1, guard.forgot)
	assert.Empty(t, guard.seen)

	retry := deliverWebhook(t, h, body)
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.NotContains(t, retry.Body.String(), "duplicate")
	ledger.AssertExpectations(t)
}

func TestWebhookStacksOntoActiveSubscription(t *testing.T) {
	ledger := new(mockSubscriptionLedger)
	future := time.Now().UTC().AddDate(0, 0, 10)
	ledger.On("PlanByPriceID", mock.Anything, "price_m").Return(model.Plan{ID: 1, DurationDays: 30}, nil)
	ledger.On("ActiveEndDate", mock.Anything, "u1").Return(&future, nil)
	ledger.On("ExtendActive", mock.Anything, "u1", future.AddDate(0, 0, 30)).Return(nil)
	h := newWebhookHandler(ledger, newFakeEventGuard())

	rec := deliverWebhook(t, h, checkoutEventBody("evt_1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	ledger.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	ledger.AssertExpectations(t)
}
