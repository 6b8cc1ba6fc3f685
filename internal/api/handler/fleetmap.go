package handler

import (
	"net/http"

	"github.com/greenbops/greenbops/internal/access"
	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/identity"
	"github.com/greenbops/greenbops/pkg/geo"
)

// MapHandler handles the fleet map endpoint. The live map is gated on
// the professional plan; lesser plans get a teaser naming the upgrade.
type MapHandler struct {
	gateway *bin.Gateway
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(gateway *bin.Gateway) *MapHandler {
	return &MapHandler{
		gateway: gateway,
	}
}

// MapMarker is one bin on the fleet map.
type MapMarker struct {
	DeviceID       string  `json:"deviceId"`
	Name           string  `json:"name,omitempty"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	BinPercentage  float64 `json:"binPercentage"`
	Severity       string  `json:"severity"`
	TamperDetected bool    `json:"tamperDetected"`
}

// MapView is the fleet map response. When access is teased the markers
// and bounds are withheld.
type MapView struct {
	Access  access.FeatureDecision `json:"access"`
	Markers []MapMarker            `json:"markers,omitempty"`
	Bounds  *geo.Bounds            `json:"bounds,omitempty"`
	Center  *geo.Point             `json:"center,omitempty"`
}

// FleetMap handles GET /v1/map - plan-gated live map data.
func (h *MapHandler) FleetMap(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	decision := access.CheckFeature(session.Plan, identity.PlanProfessional, session.IsAdmin(), true)
	if decision.Outcome != access.FeatureAllowed {
		response.JSON(w, r, http.StatusOK, MapView{Access: decision})
		return
	}

	devices, err := h.gateway.FetchDevices(r.Context(), ownerScope(session))
	if err != nil {
		response.InternalError(w, r, "failed to load devices")
		return
	}

	mapView := MapView{Access: decision}
	points := make([]geo.Point, 0, len(devices))
	for _, d := range devices {
		if d.Latitude == 0 && d.Longitude == 0 {
			continue
		}
		mapView.Markers = append(mapView.Markers, MapMarker{
			DeviceID:       d.ID,
			Name:           d.Name,
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			BinPercentage:  d.BinPercentage,
			Severity:       geo.MarkerSeverity(d.BinPercentage, d.IsFull),
			TamperDetected: d.TamperDetected,
		})
		points = append(points, geo.Point{Latitude: d.Latitude, Longitude: d.Longitude})
	}

	if bounds, ok := geo.BoundingBox(points); ok {
		center := bounds.Center()
		mapView.Bounds = &bounds
		mapView.Center = &center
	}

	response.JSON(w, r, http.StatusOK, mapView)
}
