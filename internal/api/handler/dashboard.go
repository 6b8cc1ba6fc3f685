package handler

import (
	"net/http"
	"time"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/history"
	"github.com/greenbops/greenbops/internal/view"
)

// trendWindow bounds how far back the fill trend looks.
const trendWindow = 24 * time.Hour

// DashboardHandler handles dashboard aggregate endpoints.
type DashboardHandler struct {
	gateway *bin.Gateway
	history history.Repository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(gateway *bin.Gateway, repo history.Repository) *DashboardHandler {
	return &DashboardHandler{
		gateway: gateway,
		history: repo,
	}
}

// DashboardOverview is the dashboard response: summary cards plus the
// fill trend chart series.
type DashboardOverview struct {
	Stats view.FleetStats   `json:"stats"`
	Trend []view.TrendPoint `json:"trend"`
}

// Overview handles GET /v1/dashboard - fleet summary and trend.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	devices, err := h.gateway.FetchDevices(r.Context(), ownerScope(session))
	if err != nil {
		response.InternalError(w, r, "failed to load devices")
		return
	}

	now := time.Now()
	recorded, err := h.history.ListSince(r.Context(), now.Add(-trendWindow))
	if err != nil {
		response.InternalError(w, r, "failed to load fill history")
		return
	}

	readings := make([]view.Reading, len(recorded))
	for i, rec := range recorded {
		readings[i] = view.Reading{
			DeviceID:   rec.DeviceID,
			Percent:    rec.Percent,
			RecordedAt: rec.RecordedAt,
		}
	}

	overview := DashboardOverview{
		Stats: view.DeriveFleetStats(devices),
		Trend: view.TrendSeries(readings, devices, now),
	}
	response.JSON(w, r, http.StatusOK, overview)
}
