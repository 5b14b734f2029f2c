package splox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"splox-go/internal/domain"
	"splox-go/internal/transport"
)

const (
	webhookSecretHeader = "X-Webhook-Secret"
	notifyTimeout       = 10 * time.Second
)

// EventsService delivers events to workflow webhooks.
type EventsService struct {
	c *Client
}

// Send posts payload to the webhook trigger webhookID. A nil payload is
// sent as an empty object; a non-empty secret is passed as X-Webhook-Secret.
func (s *EventsService) Send(ctx context.Context, webhookID string, payload any, secret string) (*EventResponse, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	var extra http.Header
	if secret != "" {
		extra = http.Header{webhookSecretHeader: {secret}}
	}
	var out EventResponse
	if err := s.c.t.DoJSON(ctx, http.MethodPost, pathf("/events/%s", webhookID), nil, payload, &out, extra); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notify posts data to an arbitrary webhook URL. See the package-level Notify.
func (s *EventsService) Notify(ctx context.Context, webhookURL string, data any) error {
	err := Notify(ctx, webhookURL, data)
	if err != nil {
		s.c.logger.Warn("webhook notify failed", "url", webhookURL, "error", err)
	}
	return err
}

var notifyClient = &http.Client{Timeout: notifyTimeout}

// Notify posts data as JSON to webhookURL without API credentials. The
// request is bounded by a 10 second timeout; non-2xx responses map to the
// usual API errors.
func Notify(ctx context.Context, webhookURL string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notify payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return domain.NewDomainError("Notify", domain.ErrInvalidInput, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := notifyClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ConnectionError{Op: "notify", URL: webhookURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ConnectionError{Op: "read notify", URL: webhookURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transport.MapHTTPError(resp, respBody)
	}
	return nil
}
