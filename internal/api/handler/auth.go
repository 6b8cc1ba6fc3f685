package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/identity"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	identityService *identity.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identityService *identity.Service) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
	}
}

// SignUp handles POST /v1/auth/signup - register a new account.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input identity.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.identityService.SignUp(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			response.Conflict(w, r, "email already in use")
		case isValidationError(err):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "registration failed")
		}
		return
	}

	response.JSON(w, r, http.StatusCreated, result)
}

// SignIn handles POST /v1/auth/signin - authenticate with credentials.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input identity.SignInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.identityService.SignIn(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidLogin):
			response.Unauthorized(w, r, "invalid email or password")
		case isValidationError(err):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			response.InternalError(w, r, "sign-in failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// Session handles GET /v1/auth/session - return the resolved session for
// the bearer token, including the live role and plan.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}
	response.JSON(w, r, http.StatusOK, session)
}

// isValidationError reports whether err is a credential-form rule the
// caller can fix.
func isValidationError(err error) bool {
	return errors.Is(err, identity.ErrEmailRequired) ||
		errors.Is(err, identity.ErrPasswordRequired) ||
		errors.Is(err, identity.ErrPasswordTooShort) ||
		errors.Is(err, identity.ErrPasswordMismatch)
}
