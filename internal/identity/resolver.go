package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/rs/zerolog"
)

// Resolver keeps a live view of each session's role and plan. The first
// resolution of a uid reads the profile and subscription records and
// opens watches on both; later resolutions return the cached session,
// which the watches keep current. A role or plan change therefore takes
// effect on the next request, with no one-shot reads anywhere.
type Resolver struct {
	store  rtdb.Store
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*resolverEntry
}

type resolverEntry struct {
	mu      sync.RWMutex
	session Session
	stops   []rtdb.StopFunc
}

// ResolverConfig holds the dependencies for a Resolver.
type ResolverConfig struct {
	Store  rtdb.Store
	Logger zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		store:   cfg.Store,
		logger:  cfg.Logger,
		entries: make(map[string]*resolverEntry),
	}
}

// Resolve returns the current session for a uid, establishing the live
// watches on first use. Absent profile records default to the user role;
// absent subscriptions default to the starter plan.
func (r *Resolver) Resolve(ctx context.Context, uid, email string) (Session, error) {
	r.mu.RLock()
	entry, ok := r.entries[uid]
	r.mu.RUnlock()
	if ok {
		entry.mu.RLock()
		defer entry.mu.RUnlock()
		return entry.session, nil
	}

	return r.establish(ctx, uid, email)
}

func (r *Resolver) establish(ctx context.Context, uid, email string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[uid]; ok {
		entry.mu.RLock()
		defer entry.mu.RUnlock()
		return entry.session, nil
	}

	session := Session{UID: uid, Email: email, Role: RoleUser, Plan: PlanStarter}

	var profile struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	err := r.store.Get(ctx, "users/"+uid, &profile)
	switch {
	case err == nil:
		applyProfile(&session, profile.Email, profile.Role)
	case errors.Is(err, rtdb.ErrNotFound):
	default:
		return Session{}, fmt.Errorf("resolve profile for %s: %w", uid, err)
	}

	var sub struct {
		Plan   string `json:"plan"`
		Status string `json:"status"`
	}
	err = r.store.Get(ctx, "subscriptions/"+uid, &sub)
	switch {
	case err == nil:
		applySubscription(&session, sub.Plan, sub.Status)
	case errors.Is(err, rtdb.ErrNotFound):
	default:
		return Session{}, fmt.Errorf("resolve subscription for %s: %w", uid, err)
	}

	entry := &resolverEntry{session: session}

	// Watches are detached from the request context; they live until the
	// resolver is closed or the uid is evicted.
	stopProfile, err := r.store.Watch(context.Background(), "users/"+uid, func(value json.RawMessage) {
		var p struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		entry.mu.Lock()
		defer entry.mu.Unlock()
		if json.Unmarshal(value, &p) != nil || string(value) == "null" {
			entry.session.Role = RoleUser
			return
		}
		applyProfile(&entry.session, p.Email, p.Role)
	})
	if err != nil {
		return Session{}, fmt.Errorf("watch profile for %s: %w", uid, err)
	}

	stopSub, err := r.store.Watch(context.Background(), "subscriptions/"+uid, func(value json.RawMessage) {
		var s struct {
			Plan   string `json:"plan"`
			Status string `json:"status"`
		}
		entry.mu.Lock()
		defer entry.mu.Unlock()
		if json.Unmarshal(value, &s) != nil || string(value) == "null" {
			entry.session.Plan = PlanStarter
			entry.session.Status = ""
			return
		}
		applySubscription(&entry.session, s.Plan, s.Status)
	})
	if err != nil {
		stopProfile()
		return Session{}, fmt.Errorf("watch subscription for %s: %w", uid, err)
	}

	entry.stops = []rtdb.StopFunc{stopProfile, stopSub}
	r.entries[uid] = entry
	r.logger.Debug().Str("uid", uid).Msg("session watches established")

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.session, nil
}

// Evict tears down the watches for a uid, e.g. on logout.
func (r *Resolver) Evict(uid string) {
	r.mu.Lock()
	entry, ok := r.entries[uid]
	delete(r.entries, uid)
	r.mu.Unlock()
	if !ok {
		return
	}
	for _, stop := range entry.stops {
		stop()
	}
}

// Close tears down all watches.
func (r *Resolver) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*resolverEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		for _, stop := range entry.stops {
			stop()
		}
	}
}

func applyProfile(s *Session, email, role string) {
	if email != "" {
		s.Email = email
	}
	if role == "" {
		s.Role = RoleUser
	} else {
		s.Role = role
	}
}

func applySubscription(s *Session, plan, status string) {
	if plan == "" {
		s.Plan = PlanStarter
	} else {
		s.Plan = plan
	}
	s.Status = status
}
