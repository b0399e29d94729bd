package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/simulator"
)

// DaySimulator records simulated days. *simulator.Simulator implements it.
type DaySimulator interface {
	SimulateDay(ctx context.Context, driverID int64) (*simulator.Result, error)
}

// SimulationHandler handles simulated days.
type SimulationHandler struct {
	sim    DaySimulator
	logger zerolog.Logger
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(sim DaySimulator, logger zerolog.Logger) *SimulationHandler {
	return &SimulationHandler{sim: sim, logger: logger}
}

// Simulate handles POST /v1/simulations. The simulated day is stored as a
// completed daily log.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if req.DriverID <= 0 {
		response.BadRequest(w, r, "request validation failed", []models.FieldError{
			{Field: "driverId", Message: "must be a positive id", Code: "INVALID_ID"},
		})
		return
	}

	result, err := h.sim.SimulateDay(r.Context(), req.DriverID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := models.Simulation{
		DailyLog:  toDailyLog(result.DailyLog),
		Route:     make([]string, 0, len(result.Route)),
		Start:     models.Timestamp(result.Start),
		End:       models.Timestamp(result.End),
		SpanHours: math.Round(result.Span().Hours()*100) / 100,
		Events:    make([]models.SimulatedEvent, 0, len(result.Events)),
	}
	for _, c := range result.Route {
		out.Route = append(out.Route, c.Name)
	}
	for _, e := range result.Events {
		out.Events = append(out.Events, models.SimulatedEvent{
			Point:      models.Point{Lat: e.Lat, Lon: e.Lon},
			Time:       models.Timestamp(e.Time),
			DutyStatus: e.Status,
			Location:   e.Location,
			Notes:      e.Notes,
		})
	}

	response.Created(w, r, fmt.Sprintf("/v1/daily-logs/%d", result.DailyLog.ID), out)
}
