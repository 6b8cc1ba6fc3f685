package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/billing"
)

// BillingHandler handles subscription plan endpoints.
type BillingHandler struct {
	billingService *billing.Service
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *billing.Service) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// ListPlans handles GET /v1/billing/plans - the plan catalog.
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, billing.Catalog)
}

// ActivateRequest is the body for POST /v1/billing/activate.
type ActivateRequest struct {
	PlanID    string `json:"planId"`
	Cycle     string `json:"cycle"`
	Reference string `json:"reference"`
}

// Activate handles POST /v1/billing/activate - verify a payment
// reference and grant the subscription to the calling session.
func (h *BillingHandler) Activate(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Reference == "" {
		response.BadRequest(w, r, "reference is required", nil)
		return
	}

	subscription, err := h.billingService.Activate(r.Context(), billing.ActivateInput{
		UID:       session.UID,
		Email:     session.Email,
		PlanID:    req.PlanID,
		Cycle:     req.Cycle,
		Reference: req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrUnknownPlan), errors.Is(err, billing.ErrUnknownCycle):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, billing.ErrVerificationFailed):
			response.PaymentRequired(w, r, "payment reference did not verify")
		default:
			response.InternalError(w, r, "subscription activation failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, subscription)
}
