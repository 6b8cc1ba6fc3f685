package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultProviderBaseURL = "https://identitytoolkit.googleapis.com/v1"

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProviderConfig holds configuration for the identity provider client.
type ProviderConfig struct {
	// BaseURL of the provider REST API (default: the hosted endpoint).
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// HTTPClient overrides the HTTP client (default: 10s timeout).
	HTTPClient HTTPDoer
}

// Provider talks to the hosted identity provider's REST API. Account
// storage, password hashing, and email uniqueness all live there; this
// client only relays credentials and maps provider error codes to domain
// errors.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// Account is the provider's record of an authenticated user.
type Account struct {
	UID   string
	Email string
}

// NewProvider creates an identity provider client.
func NewProvider(cfg ProviderConfig) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultProviderBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// SignUp registers a new account.
func (p *Provider) SignUp(ctx context.Context, email, password string) (Account, error) {
	return p.credentialCall(ctx, "accounts:signUp", email, password)
}

// SignIn authenticates an existing account.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Account, error) {
	return p.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

func (p *Provider) credentialCall(ctx context.Context, endpoint, email, password string) (Account, error) {
	payload, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return Account{}, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Account{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Account{}, providerError(resp)
	}

	var result struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Account{}, fmt.Errorf("decode provider response: %w", err)
	}
	return Account{UID: result.LocalID, Email: result.Email}, nil
}

// providerError maps the provider's error codes onto domain errors.
func providerError(resp *http.Response) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	code := body.Error.Message
	switch {
	case code == "EMAIL_EXISTS":
		return ErrEmailTaken
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD",
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidLogin
	default:
		return fmt.Errorf("identity provider error: %s", code)
	}
}
