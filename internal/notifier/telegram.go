package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramClient posts alerts to a group chat via the Telegram bot API.
type TelegramClient struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramClient registers bot token and chat identifier.
func NewTelegramClient(botToken, chatID string) *TelegramClient {
	return &TelegramClient{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether both the bot token and chat id are set.
func (t *TelegramClient) Configured() bool {
	return t != nil && t.botToken != "" && t.chatID != ""
}

// SendMessage posts a plain-text message to the configured chat.
// Markdown is deliberately not requested: article titles routinely
// contain characters that break Telegram's Markdown parser.
func (t *TelegramClient) SendMessage(ctx context.Context, text string) error {
	return t.call(ctx, "sendMessage", map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	})
}

// SendPhoto posts a photo by URL to the configured chat.
func (t *TelegramClient) SendPhoto(ctx context.Context, photoURL string) error {
	return t.call(ctx, "sendPhoto", map[string]any{
		"chat_id": t.chatID,
		"photo":   photoURL,
	})
}

func (t *TelegramClient) call(ctx context.Context, method string, payload map[string]any) error {
	if !t.Configured() {
		return fmt.Errorf("telegram client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/%s", t.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("telegram %s: response is not valid JSON: %w", method, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram %s failed: %s", method, result.Description)
	}
	return nil
}
