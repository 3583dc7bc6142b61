// Package handler provides HTTP handlers for the CampusNav API.
package handler

import (
	"net/http"
	"time"

	"github.com/campusnav/campusnav/internal/api/models"
	"github.com/campusnav/campusnav/internal/api/response"
)

// ProviderInfo reports the identity and circuit state of a routing provider.
type ProviderInfo interface {
	Name() string
	CircuitState() string
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	provider  ProviderInfo
}

// NewOpsHandler creates a new OpsHandler. The provider may be nil when the
// service runs without a routing backend.
func NewOpsHandler(version, buildTime string, provider ProviderInfo) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		provider:  provider,
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

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}

	if h.provider != nil {
		ps := models.ProviderStatus{
			Provider:     h.provider.Name(),
			Status:       models.HealthStatusOK,
			CircuitState: h.provider.CircuitState(),
		}
		// An open circuit means route computation is failing.
		if ps.CircuitState == "open" {
			ps.Status = models.HealthStatusDegraded
			status.Status = models.HealthStatusDegraded
		}
		status.Providers = append(status.Providers, ps)
	}

	response.JSON(w, r, http.StatusOK, status)
}
