package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPCaller invokes the execution collaborator over HTTP. Every operation
// is a POST of {"operation": ..., "args": {...}}; the response body is an
// Envelope.
type HTTPCaller struct {
	url    string
	client *http.Client
}

func NewHTTPCaller(url string) *HTTPCaller {
	return &HTTPCaller{
		url:    url,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *HTTPCaller) Call(ctx context.Context, operation string, args map[string]any) (Envelope, error) {
	body, err := json.Marshal(map[string]any{
		"operation": operation,
		"args":      args,
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Envelope{}, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("call %s: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Envelope{}, fmt.Errorf("read %s response: %w", operation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Envelope{}, fmt.Errorf("%s returned status %d", operation, resp.StatusCode)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return env, nil
}
