package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
	"github.com/eldview/eldview/internal/tripapi"
)

// writeError maps a service error onto a problem response. Errors that are
// not the caller's fault are logged.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var verr *logbook.ValidationError
	var serr *tripapi.StatusError

	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, r, "request validation failed", verr.Errors)
	case errors.Is(err, logbook.ErrDailyLogNotFound):
		response.NotFound(w, r, "daily log not found")
	case errors.Is(err, logbook.ErrDutyStatusNotFound):
		response.NotFound(w, r, "duty status not found")
	case errors.Is(err, logbook.ErrSummaryNotFound):
		response.NotFound(w, r, "summary not found")
	case errors.Is(err, logbook.ErrDriverNotFound):
		response.NotFound(w, r, "driver not found")
	case errors.Is(err, logbook.ErrTruckNotFound):
		response.NotFound(w, r, "truck not found")
	case errors.Is(err, logbook.ErrTrailerNotFound):
		response.NotFound(w, r, "trailer not found")
	case errors.Is(err, logbook.ErrDuplicate):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, tripapi.ErrUnavailable),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("log store unavailable")
		response.ServiceUnavailable(w, r, "the log store is temporarily unavailable")
	case errors.As(err, &serr):
		logger.Error().Err(err).Int("upstream_status", serr.StatusCode).Msg("trips backend rejected request")
		response.ServiceUnavailable(w, r, "the log store rejected the request")
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
