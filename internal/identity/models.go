// Package identity handles authentication against the hosted identity
// provider and continuous resolution of each session's role and plan from
// the realtime database.
package identity

import (
	"errors"
	"strings"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Plans.
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

const minPasswordLength = 6

// Validation errors surfaced before any provider call.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrEmailTaken       = errors.New("email already in use")
)

// Session is the resolved identity of an authenticated user: who they
// are plus the live role and plan read from the realtime database.
type Session struct {
	UID    string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	Status string `json:"subscriptionStatus,omitempty"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SignUpInput carries registration credentials.
type SignUpInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the registration form rules.
func (in SignUpInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return ErrEmailRequired
	}
	if in.Password == "" {
		return ErrPasswordRequired
	}
	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// SignInInput carries login credentials.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login form rules.
func (in SignInInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return ErrEmailRequired
	}
	if in.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}
