package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/pkg/polyline"
)

// LogbookService is the daily log API the handlers depend on.
// *logbook.Service implements it.
type LogbookService interface {
	ListDailyLogs(ctx context.Context, driverID int64, limit int, cursor int64) (*logbook.ListResult, error)
	GetDailyLog(ctx context.Context, id int64) (*logbook.DailyLog, error)
	CreateDailyLog(ctx context.Context, input logbook.CreateDailyLogInput) (*logbook.DailyLog, error)
	ListDutyStatuses(ctx context.Context, dailyLogID int64) ([]*logbook.DutyStatus, error)
	GetDutyStatus(ctx context.Context, dailyLogID, id int64) (*logbook.DutyStatus, error)
	AddDutyStatus(ctx context.Context, dailyLogID int64, input logbook.DutyStatusInput) (*logbook.DutyStatus, error)
	LogBook(ctx context.Context, dailyLogID int64, loc *time.Location) (*logbook.View, error)
	Summarize(ctx context.Context, dailyLogID int64, loc *time.Location) (*logbook.Summary, error)
	DriverCycle(ctx context.Context, driverID int64) (*logbook.Cycle, error)
}

// DailyLogConfig holds the dependencies of DailyLogHandler.
type DailyLogConfig struct {
	Service LogbookService
	// Summaries serves stored summaries. When nil, or when a log has no
	// stored summary, the summary is computed on request.
	Summaries logbook.SummaryRepository
	// Location is the zone used when a request names none. Nil means UTC.
	Location *time.Location
	Logger   zerolog.Logger
}

// DailyLogHandler handles daily logs, their duty statuses and the views
// derived from them.
type DailyLogHandler struct {
	svc       LogbookService
	summaries logbook.SummaryRepository
	loc       *time.Location
	logger    zerolog.Logger
}

// NewDailyLogHandler creates a new DailyLogHandler.
func NewDailyLogHandler(cfg DailyLogConfig) *DailyLogHandler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DailyLogHandler{
		svc:       cfg.Service,
		summaries: cfg.Summaries,
		loc:       loc,
		logger:    cfg.Logger,
	}
}

// ListDailyLogs handles GET /v1/daily-logs?driverId=&limit=&cursor=.
func (h *DailyLogHandler) ListDailyLogs(w http.ResponseWriter, r *http.Request) {
	driverID, driverErr := queryInt64(r, "driverId")
	cursor, cursorErr := queryInt64(r, "cursor")
	limit, limitErr := pageSize(r)
	if errs := collect(driverErr, cursorErr, limitErr); len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	page, err := h.svc.ListDailyLogs(r.Context(), driverID, limit, cursor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := models.PagedDailyLogs{
		Items: make([]models.DailyLog, 0, len(page.Items)),
		Meta:  models.NewPagedResponseMeta(limit, page.NextCursor),
	}
	for _, l := range page.Items {
		out.Items = append(out.Items, toDailyLog(l))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// CreateDailyLog handles POST /v1/daily-logs.
func (h *DailyLogHandler) CreateDailyLog(w http.ResponseWriter, r *http.Request) {
	var input models.DailyLogCreateRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	l, err := h.svc.CreateDailyLog(r.Context(), logbook.CreateDailyLogInput{
		DriverID:   input.DriverID,
		CoDriverID: input.CoDriverID,
		TruckID:    input.TruckID,
		TrailerID:  input.TrailerID,
		Status:     logbook.LogStatus(input.Status),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, fmt.Sprintf("/v1/daily-logs/%d", l.ID), toDailyLog(l))
}

// GetDailyLog handles GET /v1/daily-logs/{dailyLogId}.
func (h *DailyLogHandler) GetDailyLog(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}

	l, err := h.svc.GetDailyLog(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toDailyLog(l))
}

// ListDutyStatuses handles GET /v1/daily-logs/{dailyLogId}/duty-statuses.
func (h *DailyLogHandler) ListDutyStatuses(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}

	statuses, err := h.svc.ListDutyStatuses(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.DutyStatusList{Items: toDutyStatuses(statuses)})
}

// AddDutyStatus handles POST /v1/daily-logs/{dailyLogId}/duty-statuses.
func (h *DailyLogHandler) AddDutyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}

	var input models.DutyStatusCreateRequest
	if err := decodeJSON(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	ds, err := h.svc.AddDutyStatus(r.Context(), id, logbook.DutyStatusInput{
		Status:          input.DutyStatus,
		LocationAddress: input.LocationAddress,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Timestamp:       input.Timestamp.Time(),
		Notes:           input.Notes,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, fmt.Sprintf("/v1/daily-logs/%d/duty-statuses/%d", id, ds.ID), toDutyStatus(ds))
}

// GetDutyStatus handles GET /v1/daily-logs/{dailyLogId}/duty-statuses/{dutyStatusId}.
func (h *DailyLogHandler) GetDutyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}
	statusID, ferr := pathID(r, "dutyStatusId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid duty status id", []models.FieldError{*ferr})
		return
	}

	ds, err := h.svc.GetDutyStatus(r.Context(), id, statusID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toDutyStatus(ds))
}

// LogBook handles GET /v1/daily-logs/{dailyLogId}/logbook?tz=.
func (h *DailyLogHandler) LogBook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}
	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	view, err := h.svc.LogBook(r.Context(), id, loc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.LogBook{
		DailyLog:       toDailyLog(view.DailyLog),
		Driver:         optional(view.Crew.Driver, toDriver),
		CoDriver:       optional(view.Crew.CoDriver, toDriver),
		Truck:          optional(view.Crew.Truck, toTruck),
		Trailer:        optional(view.Crew.Trailer, toTrailer),
		Timezone:       loc.String(),
		Date:           view.DailyLog.CreatedAt.In(loc).Format(time.DateOnly),
		DutyStatuses:   toDutyStatuses(view.DutyStatuses),
		DotEvents:      view.DotEvents,
		GlobalTimeline: view.GlobalTimeline,
		ByStatus:       view.ByStatus,
		Totals:         view.Totals,
		TotalHours:     view.Totals.Sum(),
		Grid:           grid(view.DotEvents, view.Totals),
	})
}

// Summary handles GET /v1/daily-logs/{dailyLogId}/summary?tz=. A stored
// summary is served while it covers every duty status of the log; otherwise
// one is computed and not stored.
func (h *DailyLogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}
	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	if h.summaries != nil && r.URL.Query().Get("tz") == "" {
		s, err := h.storedSummary(r.Context(), id)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		if s != nil {
			response.JSON(w, r, http.StatusOK, toSummary(s))
			return
		}
	}

	s, err := h.svc.Summarize(r.Context(), id, loc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSummary(s))
}

// Route handles GET /v1/daily-logs/{dailyLogId}/route. Statuses without
// coordinates are left out.
func (h *DailyLogHandler) Route(w http.ResponseWriter, r *http.Request) {
	id, ok := h.dailyLogID(w, r)
	if !ok {
		return
	}

	statuses, err := h.svc.ListDutyStatuses(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	route := models.Route{DailyLogID: id, Points: []models.RoutePoint{}}
	var path []polyline.Coordinate
	for _, s := range statuses {
		if !s.HasLocation() {
			continue
		}
		c := polyline.Coordinate{Lat: *s.Latitude, Lon: *s.Longitude}
		path = append(path, c)
		route.Points = append(route.Points, models.RoutePoint{
			Point:           models.Point{Lat: c.Lat, Lon: c.Lon},
			Timestamp:       models.Timestamp(s.Timestamp),
			DutyStatus:      s.Status,
			LocationAddress: s.LocationAddress,
		})
	}
	route.Polyline = polyline.Encode(path)
	route.DistanceKm = roundKm(polyline.Length(path) / 1000)

	response.JSON(w, r, http.StatusOK, route)
}

// Cycle handles GET /v1/drivers/{driverId}/cycle.
func (h *DailyLogHandler) Cycle(w http.ResponseWriter, r *http.Request) {
	driverID, ferr := pathID(r, "driverId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid driver id", []models.FieldError{*ferr})
		return
	}

	c, err := h.svc.DriverCycle(r.Context(), driverID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.Cycle{
		DriverID:       c.DriverID,
		WindowStart:    models.Timestamp(c.WindowStart),
		WindowEnd:      models.Timestamp(c.WindowEnd),
		LimitHours:     logbook.CycleLimit.Hours(),
		UsedHours:      c.UsedHours,
		RemainingHours: c.RemainingHours,
	})
}

// storedSummary returns the stored summary of a log, or nil when there is
// none or a duty status was recorded after it was computed.
func (h *DailyLogHandler) storedSummary(ctx context.Context, id int64) (*logbook.Summary, error) {
	s, err := h.summaries.GetSummary(ctx, id)
	if errors.Is(err, logbook.ErrSummaryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	statuses, err := h.svc.ListDutyStatuses(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Covers(statuses) {
		h.logger.Debug().Int64("daily_log_id", id).Msg("stored summary is stale")
		return nil, nil
	}
	return s, nil
}

func (h *DailyLogHandler) dailyLogID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ferr := pathID(r, "dailyLogId")
	if ferr != nil {
		response.BadRequest(w, r, "invalid daily log id", []models.FieldError{*ferr})
		return 0, false
	}
	return id, true
}

func (h *DailyLogHandler) requestLocation(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	loc, ferr := location("tz", r.URL.Query().Get("tz"), h.loc)
	if ferr != nil {
		response.BadRequest(w, r, "invalid time zone", []models.FieldError{*ferr})
		return nil, false
	}
	return loc, true
}

func roundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
