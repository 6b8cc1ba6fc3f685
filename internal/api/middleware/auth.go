package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/greenbops/greenbops/internal/api/models"
	"github.com/greenbops/greenbops/internal/identity"
)

// sessionKey is the context key for the resolved session.
type sessionKey struct{}

// SessionResolver turns a validated token subject into a live session
// carrying the current role and plan.
type SessionResolver interface {
	Resolve(ctx context.Context, uid, email string) (identity.Session, error)
}

// Auth creates authentication middleware that validates JWT bearer tokens
// and resolves the live session for the token's subject.
func Auth(tokens *identity.TokenService, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract bearer token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			// Validate the token
			claims, err := tokens.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, identity.ErrTokenExpired):
					writeUnauthorized(w, r, "session token has expired")
				case errors.Is(err, identity.ErrInvalidToken):
					writeUnauthorized(w, r, "invalid session token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			// Resolve the live role and plan for the subject
			session, err := resolver.Resolve(r.Context(), claims.UserID, claims.Email)
			if err != nil {
				writeUnauthorized(w, r, "session could not be resolved")
				return
			}

			// Add session to context
			ctx := context.WithValue(r.Context(), sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session does not carry the admin
// role. It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSession(r.Context())
		if !ok {
			writeUnauthorized(w, r, "authentication required")
			return
		}
		if !session.IsAdmin() {
			traceID := GetRequestID(r.Context())
			problem := models.NewForbidden(traceID, "admin role required")
			problem.Instance = r.URL.Path
			problem.Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetSession retrieves the resolved session from the context.
func GetSession(ctx context.Context) (identity.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(identity.Session)
	return session, ok
}

// GetUserID retrieves the authenticated user ID from the context.
// Returns an empty string if not authenticated.
func GetUserID(ctx context.Context) string {
	if session, ok := GetSession(ctx); ok {
		return session.UID
	}
	return ""
}
