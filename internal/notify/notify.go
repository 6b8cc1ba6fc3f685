// Package notify posts alert notifications to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/provider/resilience"
	"github.com/rs/zerolog"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SenderConfig holds configuration for the webhook sender.
type SenderConfig struct {
	// WebhookURL receives alert notifications. Empty disables sending.
	WebhookURL string

	// HTTPClient overrides the HTTP client. Defaults to a resilient
	// client with circuit breaker and retry.
	HTTPClient HTTPDoer

	// Timeout for requests through the default client (default: 10s).
	Timeout time.Duration

	Logger zerolog.Logger
}

// Sender delivers alert notifications. Deliveries go through the
// resilient client so a slow webhook endpoint degrades to a tripped
// breaker instead of piling up retries.
type Sender struct {
	webhookURL string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewSender creates a webhook sender.
func NewSender(cfg SenderConfig) *Sender {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rcfg := resilience.DefaultClientConfig("notify-webhook")
		if cfg.Timeout > 0 {
			rcfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(rcfg)
	}
	return &Sender{
		webhookURL: cfg.WebhookURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// SendAlert posts one alert to the webhook. A sender without a webhook
// URL is a no-op.
func (s *Sender) SendAlert(ctx context.Context, alert bin.Alert) error {
	if s.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post alert notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug().
		Str("device_id", alert.DeviceID).
		Str("type", alert.Type).
		Msg("alert notification delivered")
	return nil
}
