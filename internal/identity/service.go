package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/rs/zerolog"
)

// Accounts is the credential surface of the identity provider.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
}

// ServiceConfig holds the dependencies for the identity service.
type ServiceConfig struct {
	Accounts Accounts
	Tokens   *TokenService
	Store    rtdb.Store
	Logger   zerolog.Logger
}

// Service orchestrates sign-up and sign-in: local validation, the
// provider call, the profile write, and session token issuance.
type Service struct {
	accounts Accounts
	tokens   *TokenService
	store    rtdb.Store
	logger   zerolog.Logger
}

// AuthResult is a successful authentication.
type AuthResult struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewService creates the identity service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		accounts: cfg.Accounts,
		tokens:   cfg.Tokens,
		store:    cfg.Store,
		logger:   cfg.Logger,
	}
}

// SignUp registers a new account and writes its initial profile. New
// accounts always start with the user role; admin is only ever granted by
// editing the profile record directly.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (AuthResult, error) {
	if err := input.Validate(); err != nil {
		return AuthResult{}, err
	}

	account, err := s.accounts.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	profile := map[string]string{"email": account.Email, "role": RoleUser}
	if err := s.store.Set(ctx, "users/"+account.UID, profile); err != nil {
		return AuthResult{}, fmt.Errorf("write profile for %s: %w", account.UID, err)
	}

	s.logger.Info().Str("uid", account.UID).Msg("account created")
	return s.issue(account)
}

// SignIn authenticates an existing account.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (AuthResult, error) {
	if err := input.Validate(); err != nil {
		return AuthResult{}, err
	}

	account, err := s.accounts.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	return s.issue(account)
}

func (s *Service) issue(account Account) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(account.UID, account.Email)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		UID:       account.UID,
		Email:     account.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
