package identity

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbops/greenbops/internal/rtdb"
)

func testResolver() (*Resolver, *rtdb.MemoryStore) {
	store := rtdb.NewMemoryStore()
	return NewResolver(ResolverConfig{Store: store, Logger: zerolog.Nop()}), store
}

func TestResolveDefaults(t *testing.T) {
	r, _ := testResolver()
	defer r.Close()

	session, err := r.Resolve(context.Background(), "uid-1", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, session.Role)
	assert.Equal(t, PlanStarter, session.Plan)
	assert.Equal(t, "ops@example.com", session.Email)
	assert.False(t, session.IsAdmin())
}

func TestResolveReadsProfileAndSubscription(t *testing.T) {
	r, store := testResolver()
	defer r.Close()
	ctx := context.Background()

	store.Set(ctx, "users/uid-1", map[string]string{"email": "admin@example.com", "role": "admin"})
	store.Set(ctx, "subscriptions/uid-1", map[string]string{"plan": "professional", "status": "active"})

	session, err := r.Resolve(ctx, "uid-1", "")
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())
	assert.Equal(t, PlanProfessional, session.Plan)
	assert.Equal(t, "active", session.Status)
	assert.Equal(t, "admin@example.com", session.Email)
}

func TestResolveTracksLiveChanges(t *testing.T) {
	r, store := testResolver()
	defer r.Close()
	ctx := context.Background()

	first, err := r.Resolve(ctx, "uid-1", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, first.Role)

	// Role granted after the session was established.
	store.Set(ctx, "users/uid-1", map[string]string{"role": "admin"})
	store.Set(ctx, "subscriptions/uid-1", map[string]string{"plan": "enterprise", "status": "active"})

	second, err := r.Resolve(ctx, "uid-1", "ops@example.com")
	require.NoError(t, err)
	assert.True(t, second.IsAdmin())
	assert.Equal(t, PlanEnterprise, second.Plan)
}

func TestResolveSubscriptionRemovalFallsBack(t *testing.T) {
	r, store := testResolver()
	defer r.Close()
	ctx := context.Background()

	store.Set(ctx, "subscriptions/uid-1", map[string]string{"plan": "professional", "status": "active"})

	first, err := r.Resolve(ctx, "uid-1", "")
	require.NoError(t, err)
	assert.Equal(t, PlanProfessional, first.Plan)

	store.Delete(ctx, "subscriptions/uid-1")

	second, err := r.Resolve(ctx, "uid-1", "")
	require.NoError(t, err)
	assert.Equal(t, PlanStarter, second.Plan)
	assert.Empty(t, second.Status)
}

func TestEvictStopsWatches(t *testing.T) {
	r, store := testResolver()
	defer r.Close()
	ctx := context.Background()

	_, err := r.Resolve(ctx, "uid-1", "")
	require.NoError(t, err)

	r.Evict("uid-1")

	// Changes after eviction only show up through a fresh resolution.
	store.Set(ctx, "users/uid-1", map[string]string{"role": "admin"})

	session, err := r.Resolve(ctx, "uid-1", "")
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())
}
