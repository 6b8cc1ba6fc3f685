package handler

import (
	"context"

	"github.com/greenbops/greenbops/internal/api/middleware"
	"github.com/greenbops/greenbops/internal/identity"
)

// GetSession retrieves the resolved session from the request context.
func GetSession(ctx context.Context) (identity.Session, bool) {
	return middleware.GetSession(ctx)
}

// GetUserID retrieves the authenticated user ID from the request context.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}
