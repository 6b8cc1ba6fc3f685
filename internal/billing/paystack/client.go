// Package paystack verifies transactions against the Paystack API.
package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greenbops/greenbops/internal/provider/resilience"
)

const defaultBaseURL = "https://api.paystack.co"

// ErrTransactionNotSuccessful means the reference exists but the
// transaction did not complete.
var ErrTransactionNotSuccessful = errors.New("transaction not successful")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Paystack client.
type ClientConfig struct {
	// BaseURL of the Paystack API (default: https://api.paystack.co).
	BaseURL string

	// SecretKey authenticates requests.
	SecretKey string

	// HTTPClient overrides the HTTP client. Defaults to a resilient
	// client with circuit breaker and retry.
	HTTPClient HTTPDoer

	// Timeout for requests through the default client (default: 10s).
	Timeout time.Duration
}

// Client verifies transactions. Unlike the realtime-database gateway,
// calls to the payment processor go through the resilient client: a
// flaky verify endpoint must not fail an otherwise valid activation on
// the first hiccup.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient HTTPDoer
}

// NewClient creates a Paystack client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rcfg := resilience.DefaultClientConfig("paystack")
		if cfg.Timeout > 0 {
			rcfg.Timeout = cfg.Timeout
		}
		httpClient = resilience.NewClient(rcfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: httpClient,
	}
}

// VerifyTransaction checks a payment reference. Only a transaction whose
// status is "success" verifies.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) error {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	var body struct {
		Status bool `json:"status"`
		Data   struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}

	if !body.Status || body.Data.Status != "success" {
		return ErrTransactionNotSuccessful
	}
	return nil
}
