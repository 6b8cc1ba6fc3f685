package handler

import (
	"net/http"
	"strings"

	"github.com/greenbops/greenbops/internal/access"
	"github.com/greenbops/greenbops/internal/api/middleware"
	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/identity"
)

// RouteHandler answers route guard queries for the dashboard shell. The
// endpoint is public: a missing or invalid bearer token simply means a
// guest session.
type RouteHandler struct {
	tokens   *identity.TokenService
	resolver middleware.SessionResolver
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(tokens *identity.TokenService, resolver middleware.SessionResolver) *RouteHandler {
	return &RouteHandler{
		tokens:   tokens,
		resolver: resolver,
	}
}

// Decide handles GET /v1/route?path=/dashboard - the navigation state
// machine over the caller's session state.
func (h *RouteHandler) Decide(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" || !strings.HasPrefix(path, "/") {
		response.BadRequest(w, r, "path query parameter is required and must be absolute", nil)
		return
	}

	decision := access.DecideRoute(h.sessionState(r), path)
	response.JSON(w, r, http.StatusOK, decision)
}

// sessionState classifies the caller. Token validation failures fall
// back to guest rather than erroring; the guard then redirects to the
// auth page where a fresh session can be established.
func (h *RouteHandler) sessionState(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return access.StateGuest
	}

	claims, err := h.tokens.Validate(authHeader[len(bearerPrefix):])
	if err != nil {
		return access.StateGuest
	}

	session, err := h.resolver.Resolve(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		// The token is good but role and plan are not known yet.
		return access.StateResolving
	}

	if session.IsAdmin() {
		return access.StateAdmin
	}
	return access.StateUser
}
