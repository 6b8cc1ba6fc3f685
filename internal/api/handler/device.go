package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/bin"
	"github.com/greenbops/greenbops/internal/identity"
	"github.com/greenbops/greenbops/internal/view"
)

// DeviceHandler handles device fleet endpoints.
type DeviceHandler struct {
	gateway *bin.Gateway
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(gateway *bin.Gateway) *DeviceHandler {
	return &DeviceHandler{
		gateway: gateway,
	}
}

// DeviceList is the device listing response.
type DeviceList struct {
	Items []bin.Device `json:"items"`
	Total int          `json:"total"`
}

// ListDevices handles GET /v1/devices - list the visible fleet.
// Supports q, fill, tamper, sort and order query parameters. Admins see
// the whole fleet; everyone else sees only their own bins.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
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

	items := deviceQueryFromRequest(r).Apply(devices)
	response.JSON(w, r, http.StatusOK, DeviceList{Items: items, Total: len(items)})
}

// GetDevice handles GET /v1/devices/{deviceId} - fetch one device.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	deviceID := chi.URLParam(r, "deviceId")
	if deviceID == "" {
		response.BadRequest(w, r, "deviceId is required", nil)
		return
	}

	device, err := h.gateway.FetchDevice(r.Context(), deviceID)
	if err != nil {
		response.InternalError(w, r, "failed to load device")
		return
	}
	if device == nil || !visibleTo(session, *device) {
		response.NotFound(w, r, "device not found")
		return
	}

	response.JSON(w, r, http.StatusOK, device)
}

// CreateDevice handles POST /v1/devices - register a new bin. The device
// is owned by the creating session.
func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var input bin.CreateDeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	input.OwnerID = session.UID
	input.OwnerEmail = session.Email

	device, err := h.gateway.CreateDevice(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, bin.ErrDeviceIDRequired), errors.Is(err, bin.ErrInvalidCoordinates):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, bin.ErrDeviceExists):
			response.Conflict(w, r, "device already registered")
		default:
			response.InternalError(w, r, "failed to create device")
		}
		return
	}

	location := fmt.Sprintf("/v1/devices/%s", device.ID)
	response.Created(w, r, location, device)
}

// DeleteDevice handles DELETE /v1/devices/{deviceId} - remove a bin.
// Owners may delete their own devices; admins may delete any.
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	deviceID := chi.URLParam(r, "deviceId")
	if deviceID == "" {
		response.BadRequest(w, r, "deviceId is required", nil)
		return
	}

	device, err := h.gateway.FetchDevice(r.Context(), deviceID)
	if err != nil {
		response.InternalError(w, r, "failed to load device")
		return
	}
	if device == nil || !visibleTo(session, *device) {
		response.NotFound(w, r, "device not found")
		return
	}

	if err := h.gateway.DeleteDevice(r.Context(), deviceID); err != nil {
		response.InternalError(w, r, "failed to delete device")
		return
	}

	response.NoContent(w, r)
}

// StreamDevices handles GET /v1/devices/stream - server-sent events
// carrying a full fleet snapshot on every change.
func (h *DeviceHandler) StreamDevices(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	streamSnapshots(w, r, func(send func(any)) (func(), error) {
		return h.gateway.SubscribeDevices(r.Context(), ownerScope(session), func(devices []bin.Device) {
			send(devices)
		})
	})
}

// ownerScope returns the owner filter for a session: empty (no filter)
// for admins, the session uid for everyone else. Devices record their
// owner by uid, so the filter has to match on uid too.
func ownerScope(session identity.Session) string {
	if session.IsAdmin() {
		return ""
	}
	return session.UID
}

// visibleTo reports whether a session may see a device. Unowned devices
// are visible to everyone signed in.
func visibleTo(session identity.Session, d bin.Device) bool {
	return session.IsAdmin() || d.OwnerID == "" || d.OwnerID == session.UID
}

// deviceQueryFromRequest maps list query parameters onto a device view.
func deviceQueryFromRequest(r *http.Request) view.DeviceQuery {
	q := r.URL.Query()
	return view.DeviceQuery{
		Search:  q.Get("q"),
		Fill:    q.Get("fill"),
		Tamper:  q.Get("tamper"),
		SortKey: q.Get("sort"),
		Order:   q.Get("order"),
	}
}
