// Package pickup manages emergency pickup requests: users raise them,
// admins work the queue and resolve them.
package pickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/rs/zerolog"
)

const requestsPath = "requests"

// Request statuses.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

var ErrRequestNotFound = errors.New("pickup request not found")

// Request is one emergency pickup request. Timestamp is unix seconds.
type Request struct {
	ID        string `json:"id"`
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// ServiceConfig holds the dependencies for the pickup service.
type ServiceConfig struct {
	Store  rtdb.Store
	Logger zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service reads and writes the requests log.
type Service struct {
	store  rtdb.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates the pickup service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, logger: cfg.Logger, now: now}
}

// Create raises a pending emergency pickup request for a user.
func (s *Service) Create(ctx context.Context, uid, email string) (Request, error) {
	r := Request{
		UID:       uid,
		Email:     email,
		Type:      "emergency_pickup",
		Status:    StatusPending,
		Timestamp: s.now().Unix(),
	}

	record := map[string]any{
		"uid":       r.UID,
		"email":     r.Email,
		"type":      r.Type,
		"status":    r.Status,
		"timestamp": r.Timestamp,
	}
	id, err := s.store.Push(ctx, requestsPath, record)
	if err != nil {
		return Request{}, fmt.Errorf("create pickup request: %w", err)
	}
	r.ID = id

	s.logger.Info().Str("uid", uid).Str("request_id", id).Msg("pickup requested")
	return r, nil
}

// List returns all requests, newest first.
func (s *Service) List(ctx context.Context) ([]Request, error) {
	var raw map[string]json.RawMessage
	if err := s.store.Get(ctx, requestsPath, &raw); err != nil {
		if errors.Is(err, rtdb.ErrNotFound) {
			return []Request{}, nil
		}
		return nil, fmt.Errorf("list pickup requests: %w", err)
	}

	requests := make([]Request, 0, len(raw))
	for id, value := range raw {
		var r Request
		if err := json.Unmarshal(value, &r); err != nil {
			continue
		}
		r.ID = id
		requests = append(requests, r)
	}
	sortNewestFirst(requests)
	return requests, nil
}

// Resolve marks a request as handled.
func (s *Service) Resolve(ctx context.Context, id string) error {
	var existing map[string]any
	if err := s.store.Get(ctx, requestsPath+"/"+id, &existing); err != nil {
		if errors.Is(err, rtdb.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load pickup request %s: %w", id, err)
	}

	if err := s.store.Set(ctx, requestsPath+"/"+id+"/status", StatusResolved); err != nil {
		return fmt.Errorf("resolve pickup request %s: %w", id, err)
	}
	return nil
}

func sortNewestFirst(requests []Request) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].Timestamp > requests[j].Timestamp
	})
}
