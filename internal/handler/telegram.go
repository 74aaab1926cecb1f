package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maxwang36/merisols-backend/internal/notifier"
)

// contentPreviewWords caps how much article body is quoted in a chat
// alert. Telegram messages have a 4096-character ceiling.
const contentPreviewWords = 100

// TelegramHandler forwards priority-1 article submissions to the
// editors' Telegram group.
type TelegramHandler struct {
	Telegram *notifier.TelegramClient
}

func NewTelegramHandler(tg *notifier.TelegramClient) *TelegramHandler {
	return &TelegramHandler{Telegram: tg}
}

type highPriorityAlertReq struct {
	UserID     string          `json:"userId"`
	Username   string          `json:"username"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Priority   json.RawMessage `json:"priority"`
	TimeSent   string          `json:"timeSent"`
	Attachment string          `json:"attachment"`
	Content    string          `json:"content"`
}

// priorityIsHigh accepts both numeric and string encodings of the
// priority field. Clients have sent both.
func priorityIsHigh(raw json.RawMessage) bool {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return s == "1"
}

// HighPriorityAlert handles POST /api/telegram/high-priority-alert.
// Non-urgent submissions are acknowledged without contacting Telegram.
func (h *TelegramHandler) HighPriorityAlert(c echo.Context) error {
	var req highPriorityAlertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body"})
	}
	if req.UserID == "" || req.Title == "" || req.Category == "" || req.TimeSent == "" || req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
	}
	if !priorityIsHigh(req.Priority) {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "Priority is not high — no alert sent."})
	}
	if !h.Telegram.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "message": "Telegram service not configured"})
	}

	ctx := c.Request().Context()
	if err := h.Telegram.SendMessage(ctx, alertMessage(req)); err != nil {
		c.Logger().Errorf("telegram alert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Telegram alert failed"})
	}
	if req.Attachment != "" {
		if err := h.Telegram.SendPhoto(ctx, req.Attachment); err != nil {
			c.Logger().Errorf("telegram alert photo: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Telegram alert failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Telegram alert sent successfully"})
}

func alertMessage(req highPriorityAlertReq) string {
	timeSent := req.TimeSent
	if t, err := time.Parse(time.RFC3339, req.TimeSent); err == nil {
		timeSent = t.Local().Format("1/2/2006, 3:04:05 PM")
	}
	return fmt.Sprintf(`---- User Article Submission ----

User ID: %s
Username: %s
Time Sent: %s
Priority: High
Category: %s
Title: %s

Content:
%s`, req.UserID, req.Username, timeSent, req.Category, req.Title, previewWords(req.Content, contentPreviewWords))
}

// previewWords keeps the first n whitespace-separated words, appending
// an ellipsis when the text was cut.
func previewWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
