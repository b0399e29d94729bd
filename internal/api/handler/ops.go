// Package handler provides the HTTP handlers of the eldview API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
)

// readyTimeout bounds the store ping of the readiness check.
const readyTimeout = 2 * time.Second

// OpsConfig holds the dependencies of OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	// Store names the log store backend, e.g. "postgres".
	Store string
	// Pinger checks the log store. Nil means always ready.
	Pinger logbook.Pinger
	// Registry reports upstream circuit breakers. May be nil.
	Registry *resilience.Registry
}

// OpsHandler handles the health and status endpoints.
type OpsHandler struct {
	cfg OpsConfig
	now func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg, now: time.Now}
}

// HealthCheck handles GET /v1/ops/health. It only reports that the process
// is serving.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It fails with 503 while the log
// store cannot be reached.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{Status: models.HealthStatusOK, Time: models.Timestamp(h.now())}

	if err := h.ping(r.Context()); err != nil {
		health.Status = models.HealthStatusFail
		health.Details = map[string]any{"store": h.cfg.Store, "error": err.Error()}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.now()),
		Upstreams: []models.UpstreamStatus{},
	}

	store := models.SubsystemStatus{Name: h.storeName(), Status: models.HealthStatusOK}
	if err := h.ping(r.Context()); err != nil {
		msg := err.Error()
		store.Status, store.Detail = models.HealthStatusFail, &msg
		status.Status = models.HealthStatusFail
	}
	status.Subsystems = []models.SubsystemStatus{store}

	if h.cfg.Registry != nil {
		for _, u := range h.cfg.Registry.All() {
			us := upstreamStatus(u)
			status.Upstreams = append(status.Upstreams, us)
			if us.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) ping(ctx context.Context) error {
	if h.cfg.Pinger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	return h.cfg.Pinger.Ping(ctx)
}

func (h *OpsHandler) storeName() string {
	if h.cfg.Store == "" {
		return "store"
	}
	return h.cfg.Store
}

func upstreamStatus(u *resilience.Health) models.UpstreamStatus {
	us := models.UpstreamStatus{
		Name:         u.Name,
		Status:       models.HealthStatusOK,
		CircuitState: u.State.String(),
	}
	if u.LastSuccessAt != nil {
		us.LastSuccessAt = models.TimestampPtr(*u.LastSuccessAt)
	}
	if u.LastFailureAt != nil {
		us.LastFailureAt = models.TimestampPtr(*u.LastFailureAt)
	}
	if u.LastError != "" {
		msg := u.LastError
		us.Message = &msg
	}

	switch u.State {
	case gobreaker.StateOpen:
		us.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		us.Status = models.HealthStatusDegraded
	}
	return us
}
