// Package handler provides HTTP handlers for the GreenB Ops API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/greenbops/greenbops/internal/api/models"
	"github.com/greenbops/greenbops/internal/api/response"
	"github.com/greenbops/greenbops/internal/provider/resilience"
	"github.com/greenbops/greenbops/internal/rtdb"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	store     rtdb.Store
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, store rtdb.Store, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		store:     store,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// realtime database must be reachable before we accept traffic.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if err := h.probeStore(r); err != nil {
		status = models.HealthStatusFail
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	rtdbStatus := models.HealthStatusOK
	if err := h.probeStore(r); err != nil {
		rtdbStatus = models.HealthStatusFail
	}

	status := models.SystemStatus{
		Status: rtdbStatus,
		Time:   now,
		Subsystems: []models.SubsystemStatus{
			{Name: "realtime-db", Status: rtdbStatus},
		},
		Providers: providerStatuses(h.registry),
	}

	for _, p := range status.Providers {
		if p.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusDegraded
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// probeStore reads a well-known path. An absent node still proves the
// database answered, so ErrNotFound counts as healthy.
func (h *OpsHandler) probeStore(r *http.Request) error {
	if h.store == nil {
		return nil
	}
	var probe json.RawMessage
	err := h.store.Get(r.Context(), "health", &probe)
	if errors.Is(err, rtdb.ErrNotFound) {
		return nil
	}
	return err
}

// providerStatuses maps circuit breaker health to the status payload.
func providerStatuses(registry *resilience.Registry) []models.ProviderStatus {
	if registry == nil {
		return nil
	}

	healths := registry.GetAllHealth()
	statuses := make([]models.ProviderStatus, 0, len(healths))
	for _, ph := range healths {
		status := models.HealthStatusOK
		switch {
		case ph.IsUnhealthy():
			status = models.HealthStatusFail
		case ph.IsDegraded():
			status = models.HealthStatusDegraded
		}

		ps := models.ProviderStatus{
			Provider: ph.Name,
			Status:   status,
		}
		if ph.LastSuccessAt != nil {
			ts := models.Timestamp(*ph.LastSuccessAt)
			ps.LastSuccessAt = &ts
		}
		if ph.LastFailureAt != nil {
			ts := models.Timestamp(*ph.LastFailureAt)
			ps.LastFailureAt = &ts
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		statuses = append(statuses, ps)
	}
	return statuses
}
