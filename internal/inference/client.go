// Package inference talks to the hosted ML collaborators: the Hugging
// Face inference API for article summaries and the CLIP check space for
// text/image moderation. Both are plain forwarders; the service stores
// none of their output.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const summarizeEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// Client is a reusable HTTP client for the inference services.
type Client struct {
	hfAPIKey     string
	clipCheckURL string
	client       *http.Client
}

func NewClient(hfAPIKey, clipCheckURL string) *Client {
	return &Client{
		hfAPIKey:     hfAPIKey,
		clipCheckURL: clipCheckURL,
		// Model cold starts on the free inference tier are slow.
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Summarize requests an abstractive summary of the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.hfAPIKey == "" {
		return "", fmt.Errorf("summarizer not configured")
	}
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, summarizeEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.hfAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// The API returns either an error object or an array of summaries.
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		return "", fmt.Errorf("inference error: %s", apiErr.Error)
	}
	var summaries []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(raw, &summaries); err != nil || len(summaries) == 0 {
		return "", fmt.Errorf("no summary returned")
	}
	return summaries[0].SummaryText, nil
}

// ModerationResult is the CLIP check verdict on a text/image pair.
type ModerationResult struct {
	SimilarityScore float64 `json:"similarity_score"`
	Verdict         string  `json:"verdict"`
}

// ModerateArticle scores how well an article's image matches its text.
func (c *Client) ModerateArticle(ctx context.Context, text, imageURL string) (ModerationResult, error) {
	body, err := json.Marshal(map[string]string{"text": text, "image_url": imageURL})
	if err != nil {
		return ModerationResult{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.clipCheckURL, bytes.NewReader(body))
	if err != nil {
		return ModerationResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ModerationResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ModerationResult{}, fmt.Errorf("moderation service error: %s", resp.Status)
	}
	var result ModerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ModerationResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
