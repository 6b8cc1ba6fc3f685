package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/pickup"
	"github.com/greenbops/greenbops/internal/rtdb"
	"github.com/greenbops/greenbops/internal/view"
)

// AdminHandler handles the admin console aggregates. All routes are
// behind the admin role.
type AdminHandler struct {
	store         rtdb.Store
	gateway       *bin.Gateway
	pickupService *pickup.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store rtdb.Store, gateway *bin.Gateway, pickupService *pickup.Service) *AdminHandler {
	return &AdminHandler{
		store:         store,
		gateway:       gateway,
		pickupService: pickupService,
	}
}

// AdminOverview is the admin console response.
type AdminOverview struct {
	Revenue       view.RevenueSummary     `json:"revenue"`
	Subscriptions view.SubscriptionCounts `json:"subscriptions"`
	Users         int                     `json:"users"`
	Fleet         view.FleetStats         `json:"fleet"`
	Requests      []pickup.Request        `json:"requests"`
}

// Overview handles GET /v1/admin/overview - revenue, subscription and
// fleet aggregates plus the pickup queue.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payments, err := h.loadPayments(ctx)
	if err != nil {
		response.InternalError(w, r, "failed to load payments")
		return
	}

	subscriptions, err := h.loadSubscriptions(ctx)
	if err != nil {
		response.InternalError(w, r, "failed to load subscriptions")
		return
	}

	users, err := h.countUsers(ctx)
	if err != nil {
		response.InternalError(w, r, "failed to load users")
		return
	}

	devices, err := h.gateway.FetchDevices(ctx, "")
	if err != nil {
		response.InternalError(w, r, "failed to load devices")
		return
	}

	requests, err := h.pickupService.List(ctx)
	if err != nil {
		response.InternalError(w, r, "failed to load pickup requests")
		return
	}

	overview := AdminOverview{
		Revenue:       view.DeriveRevenue(payments),
		Subscriptions: view.DeriveSubscriptionCounts(subscriptions),
		Users:         users,
		Fleet:         view.DeriveFleetStats(devices),
		Requests:      requests,
	}
	response.JSON(w, r, http.StatusOK, overview)
}

func (h *AdminHandler) loadPayments(ctx context.Context) ([]view.PaymentRecord, error) {
	raw, err := h.fetchMap(ctx, "payments")
	if err != nil {
		return nil, err
	}

	payments := make([]view.PaymentRecord, 0, len(raw))
	for _, entry := range raw {
		var p view.PaymentRecord
		if err := json.Unmarshal(entry, &p); err != nil {
			continue
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (h *AdminHandler) loadSubscriptions(ctx context.Context) ([]view.SubscriptionRecord, error) {
	raw, err := h.fetchMap(ctx, "subscriptions")
	if err != nil {
		return nil, err
	}

	subs := make([]view.SubscriptionRecord, 0, len(raw))
	for _, entry := range raw {
		var s view.SubscriptionRecord
		if err := json.Unmarshal(entry, &s); err != nil {
			continue
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func (h *AdminHandler) countUsers(ctx context.Context) (int, error) {
	raw, err := h.fetchMap(ctx, "users")
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// fetchMap reads a keyed collection; an absent node is an empty one.
func (h *AdminHandler) fetchMap(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	var entries map[string]json.RawMessage
	err := h.store.Get(ctx, path, &entries)
	if errors.Is(err, rtdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}
