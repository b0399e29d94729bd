package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/timeline"
)

// MaxComputeRecords bounds the records of one timeline compute.
const MaxComputeRecords = 500

// TimelineHandler computes timelines from records supplied by the caller,
// without touching the log store.
type TimelineHandler struct {
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
}

// NewTimelineHandler creates a TimelineHandler that falls back to loc when a
// request names no time zone. Nil means UTC.
func NewTimelineHandler(loc *time.Location, logger zerolog.Logger) *TimelineHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TimelineHandler{loc: loc, logger: logger, now: time.Now}
}

// Compute handles POST /v1/timeline:compute.
func (h *TimelineHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req models.TimelineComputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	loc, ferr := location("timezone", req.Timezone, h.loc)
	errs := append(collect(ferr), validateRecords(req.Records)...)
	if len(errs) > 0 {
		response.BadRequest(w, r, "request validation failed", errs)
		return
	}

	entries := make([]timeline.Entry, 0, len(req.Records))
	for _, rec := range req.Records {
		entries = append(entries, timeline.Entry{
			ID:        rec.ID,
			Timestamp: rec.Timestamp.Time(),
			Status:    rec.DutyStatus,
		})
	}

	dayStart := h.dayStart(req.DayStart, entries, loc)
	events := timeline.DotEvents(entries, loc)
	totals := timeline.HourTotals(entries, dayStart, loc)

	h.logger.Debug().
		Int("records", len(entries)).
		Str("timezone", loc.String()).
		Int("dot_events", len(events)).
		Msg("timeline computed")

	response.JSON(w, r, http.StatusOK, models.TimelineComputeResponse{
		Timezone:       loc.String(),
		DayStart:       models.Timestamp(dayStart),
		DotEvents:      events,
		GlobalTimeline: timeline.GlobalTimeline(entries, loc),
		ByStatus:       timeline.GroupByStatus(entries, loc),
		Totals:         totals,
		Grid:           grid(events, totals),
	})
}

// dayStart is midnight of the requested day, of the earliest record, or of
// today, in that order.
func (h *TimelineHandler) dayStart(requested *models.Timestamp, entries []timeline.Entry, loc *time.Location) time.Time {
	ref := h.now()
	switch {
	case requested != nil && !requested.IsZero():
		ref = requested.Time()
	case len(entries) > 0:
		ref = timeline.Sorted(entries)[0].Timestamp
	}
	return timeline.HourBoundary(ref, 0, loc)
}

// validateRecords checks the shape of submitted records. Unknown statuses
// are accepted and count as off duty.
func validateRecords(records []models.TimelineRecord) []models.FieldError {
	if len(records) > MaxComputeRecords {
		return []models.FieldError{{
			Field:   "records",
			Message: fmt.Sprintf("must hold at most %d records", MaxComputeRecords),
			Code:    "TOO_MANY",
		}}
	}

	var errs []models.FieldError
	for i, rec := range records {
		if rec.Timestamp.IsZero() {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("records[%d].timestamp", i),
				Message: "is required",
				Code:    "REQUIRED",
			})
		}
		if rec.DutyStatus == "" {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("records[%d].dutyStatus", i),
				Message: "is required",
				Code:    "REQUIRED",
			})
		}
	}
	return errs
}
