package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/rs/zerolog"
)

// ErrVerificationFailed means the payment reference did not verify as a
// successful transaction.
var ErrVerificationFailed = errors.New("payment verification failed")

// Verifier checks a payment reference with the payment processor.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) error
}

// ServiceConfig holds the dependencies for the billing service.
type ServiceConfig struct {
	Store    rtdb.Store
	Verifier Verifier
	Logger   zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service activates subscriptions after a verified payment. Activation
// writes the subscription record and appends a payment receipt; a
// failure in either surfaces to the caller with no retry, matching the
// gateway's pass-through failure semantics.
type Service struct {
	store    rtdb.Store
	verifier Verifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates the billing service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		verifier: cfg.Verifier,
		logger:   cfg.Logger,
		now:      now,
	}
}

// ActivateInput describes a completed checkout.
type ActivateInput struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	PlanID    string `json:"planId"`
	Cycle     string `json:"billingCycle"`
	Reference string `json:"reference"`
}

// Subscription is the record written to subscriptions/{uid}. All times
// are unix seconds.
type Subscription struct {
	Plan               string `json:"plan"`
	Status             string `json:"status"`
	BillingCycle       string `json:"billingCycle"`
	BinLimit           int    `json:"binLimit"`
	CurrentPeriodStart int64  `json:"currentPeriodStart"`
	CurrentPeriodEnd   int64  `json:"currentPeriodEnd"`
	UpdatedAt          int64  `json:"updatedAt"`
}

// Payment is one receipt appended to the payments log. Amount is in
// minor units.
type Payment struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Amount       int64  `json:"amount"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	PlanID       string `json:"planId"`
	BillingCycle string `json:"billingCycle"`
	Timestamp    int64  `json:"timestamp"`
}

// Activate verifies the payment reference and grants the subscription.
func (s *Service) Activate(ctx context.Context, input ActivateInput) (Subscription, error) {
	plan, err := PlanByID(input.PlanID)
	if err != nil {
		return Subscription{}, err
	}
	amount, err := plan.Price(input.Cycle)
	if err != nil {
		return Subscription{}, err
	}
	period, err := periodSeconds(input.Cycle)
	if err != nil {
		return Subscription{}, err
	}

	if err := s.verifier.VerifyTransaction(ctx, input.Reference); err != nil {
		return Subscription{}, err
	}

	now := s.now().Unix()
	sub := Subscription{
		Plan:               plan.ID,
		Status:             "active",
		BillingCycle:       input.Cycle,
		BinLimit:           plan.BinLimit,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now + period,
		UpdatedAt:          now,
	}

	if err := s.store.Set(ctx, "subscriptions/"+input.UID, sub); err != nil {
		return Subscription{}, fmt.Errorf("grant subscription for %s: %w", input.UID, err)
	}

	receipt := Payment{
		UID:          input.UID,
		Email:        input.Email,
		Amount:       amount,
		Reference:    input.Reference,
		Status:       "success",
		PlanID:       plan.ID,
		BillingCycle: input.Cycle,
		Timestamp:    now,
	}
	if _, err := s.store.Push(ctx, "payments", receipt); err != nil {
		return Subscription{}, fmt.Errorf("log payment for %s: %w", input.UID, err)
	}

	s.logger.Info().
		Str("uid", input.UID).
		Str("plan", plan.ID).
		Str("cycle", input.Cycle).
		Msg("subscription activated")
	return sub, nil
}
