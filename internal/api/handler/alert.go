package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/view"
)

// AlertHandler handles alert feed endpoints.
type AlertHandler struct {
	gateway *bin.Gateway
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(gateway *bin.Gateway) *AlertHandler {
	return &AlertHandler{
		gateway: gateway,
	}
}

// AlertList is the alert listing response.
type AlertList struct {
	Items []bin.Alert `json:"items"`
	Total int         `json:"total"`
}

// ListAlerts handles GET /v1/alerts - list alerts newest first.
// Supports q, type and ack query parameters.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.gateway.FetchAlerts(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load alerts")
		return
	}

	q := r.URL.Query()
	query := view.AlertQuery{
		Search:       q.Get("q"),
		Type:         q.Get("type"),
		Acknowledged: q.Get("ack"),
	}

	items := query.Apply(alerts)
	response.JSON(w, r, http.StatusOK, AlertList{Items: items, Total: len(items)})
}

// AlertStats handles GET /v1/alerts/stats - alert feed summary.
func (h *AlertHandler) AlertStats(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.gateway.FetchAlerts(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to load alerts")
		return
	}

	response.JSON(w, r, http.StatusOK, view.DeriveAlertStats(alerts))
}

// AcknowledgeAlert handles POST /v1/alerts/{alertId}/ack - mark an alert
// as handled.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertId")
	if alertID == "" {
		response.BadRequest(w, r, "alertId is required", nil)
		return
	}

	if err := h.gateway.AcknowledgeAlert(r.Context(), alertID); err != nil {
		response.InternalError(w, r, "failed to acknowledge alert")
		return
	}

	response.NoContent(w, r)
}

// StreamAlerts handles GET /v1/alerts/stream - server-sent events
// carrying the full alert feed on every change.
func (h *AlertHandler) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	streamSnapshots(w, r, func(send func(any)) (func(), error) {
		return h.gateway.SubscribeAlerts(r.Context(), func(alerts []bin.Alert) {
			send(alerts)
		})
	})
}
