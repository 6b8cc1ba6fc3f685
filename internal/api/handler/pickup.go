package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/pickup"
)

// PickupHandler handles emergency pickup request endpoints.
type PickupHandler struct {
	pickupService *pickup.Service
}

// NewPickupHandler creates a new PickupHandler.
func NewPickupHandler(pickupService *pickup.Service) *PickupHandler {
	return &PickupHandler{
		pickupService: pickupService,
	}
}

// PickupList is the pickup request listing response.
type PickupList struct {
	Items []pickup.Request `json:"items"`
	Total int              `json:"total"`
}

// CreateRequest handles POST /v1/pickups - file an emergency pickup for
// the calling session.
func (h *PickupHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	request, err := h.pickupService.Create(r.Context(), session.UID, session.Email)
	if err != nil {
		response.InternalError(w, r, "failed to file pickup request")
		return
	}

	location := fmt.Sprintf("/v1/pickups/%s", request.ID)
	response.Created(w, r, location, request)
}

// ListRequests handles GET /v1/pickups - all requests, newest first.
// Admin only.
func (h *PickupHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.pickupService.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load pickup requests")
		return
	}

	response.JSON(w, r, http.StatusOK, PickupList{Items: requests, Total: len(requests)})
}

// ResolveRequest handles POST /v1/pickups/{requestId}/resolve - mark a
// request handled. Admin only.
func (h *PickupHandler) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		response.BadRequest(w, r, "requestId is required", nil)
		return
	}

	if err := h.pickupService.Resolve(r.Context(), requestID); err != nil {
		if errors.Is(err, pickup.ErrRequestNotFound) {
			response.NotFound(w, r, "pickup request not found")
			return
		}
		response.InternalError(w, r, "failed to resolve pickup request")
		return
	}

	response.NoContent(w, r)
}
