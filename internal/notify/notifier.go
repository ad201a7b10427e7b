// Package notify delivers best-effort, fire-and-forget text notifications.
// Delivery failures are for the caller to log; they never fail a workflow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notifier sends a plain text message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Webhook posts messages as {"text": ...} JSON to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhook(url string, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (w *Webhook) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Nop discards all notifications. Used when no webhook is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
