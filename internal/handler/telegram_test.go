package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwang36/merisols-backend/internal/notifier"
)

func TestHighPriorityAlertMissingFields(t *testing.T) {
	h := NewTelegramHandler(notifier.NewTelegramClient("", ""))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": "x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HighPriorityAlert(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields")
}

func TestHighPriorityAlertLowPrioritySkipped(t *testing.T) {
	h := NewTelegramHandler(notifier.NewTelegramClient("", ""))
	e := echo.New()
	body := `{"userId":"u1","username":"alice","title":"t","category":"World","priority":2,"timeSent":"2026-03-01T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	// No alert goes out, so an unconfigured client must not be an error.
	require.NoError(t, h.HighPriorityAlert(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no alert sent")
}

func TestPriorityIsHigh(t *testing.T) {
	for raw, want := range map[string]bool{
		`1`:     true,
		`"1"`:   true,
		`2`:     false,
		`"low"`: false,
		`null`:  false,
		``:      false,
	} {
		assert.Equal(t, want, priorityIsHigh(json.RawMessage(raw)), "raw=%s", raw)
	}
}

func TestPreviewWords(t *testing.T) {
	assert.Equal(t, "a b c", previewWords("a b c", 5))
	assert.Equal(t, "a b", previewWords("a   b", 5))
	assert.Equal(t, "a b...", previewWords("a b c d", 2))
	assert.Equal(t, "", previewWords("", 5))
}
