package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

const (
	webhookTimeout = 15 * time.Second

	// MaxWebhookContent is Discord's limit for the content field
	MaxWebhookContent = 2000
)

// webhookPayload is the JSON body accepted by chat webhooks
type webhookPayload struct {
	Content string `json:"content"`
}

// WebhookNotifier posts updates to a chat webhook
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(url string) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}

	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: webhookTimeout,
		},
	}, nil
}

// Notify posts {"content": "**date**\n..."} to the webhook
func (n *WebhookNotifier) Notify(ctx context.Context, u *changelog.Update) error {
	payload := webhookPayload{Content: truncateRunes(changelog.FormatMessage(u), MaxWebhookContent)}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return n.postError(u, fmt.Errorf("marshaling payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return n.postError(u, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.postError(u, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return n.postError(u, fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(body)))
	}

	return nil
}

func (n *WebhookNotifier) postError(u *changelog.Update, err error) error {
	return &PostError{Destination: "webhook", Date: u.Date, Err: err}
}

// truncateRunes cuts s to at most max runes, ending with "..." when cut
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
