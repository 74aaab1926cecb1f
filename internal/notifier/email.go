// Package notifier holds the outbound collaborator clients: Resend for
// email, Telegram for chat alerts, and the fire-and-forget dispatcher
// the moderation engine notifies through.
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

const resendEndpoint = "https://api.resend.com/emails"

// EmailClient sends transactional mail through the Resend API.
type EmailClient struct {
	apiKey string
	from   string
	client *http.Client
}

// NewEmailClient registers the API key and From header. An empty key
// leaves the client constructible but Send will report it as
// unconfigured.
func NewEmailClient(apiKey, from string) *EmailClient {
	return &EmailClient{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (e *EmailClient) Configured() bool { return e != nil && e.apiKey != "" }

// Send posts one HTML email. The response body is drained so the
// connection can be reused.
func (e *EmailClient) Send(ctx context.Context, to, subject, html string) error {
	if !e.Configured() {
		return fmt.Errorf("email client not configured")
	}
	payload := map[string]any{
		"from":    e.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend error: %s: %s", resp.Status, msg)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
