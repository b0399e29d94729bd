package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
	"github.com/eldview/eldview/internal/simulator"
	"github.com/eldview/eldview/internal/timeline"
	"github.com/eldview/eldview/internal/tripapi"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		typ      string
		logLevel string
	}{
		{
			name:   "validation",
			err:    &logbook.ValidationError{Errors: []models.FieldError{{Field: "driverId", Message: "must be a positive id"}}},
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
		},
		{
			name:   "daily log not found",
			err:    fmt.Errorf("get: %w", logbook.ErrDailyLogNotFound),
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "summary not found",
			err:    logbook.ErrSummaryNotFound,
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:     "backend unavailable",
			err:      fmt.Errorf("list: %w", tripapi.ErrUnavailable),
			status:   http.StatusServiceUnavailable,
			typ:      models.ProblemTypeUnavailable,
			logLevel: "warn",
		},
		{
			name:     "circuit open",
			err:      resilience.ErrCircuitOpen,
			status:   http.StatusServiceUnavailable,
			typ:      models.ProblemTypeUnavailable,
			logLevel: "warn",
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			status:   http.StatusServiceUnavailable,
			typ:      models.ProblemTypeUnavailable,
			logLevel: "warn",
		},
		{
			name:     "backend rejected",
			err:      &tripapi.StatusError{StatusCode: http.StatusBadRequest, Body: `{"duty_status":["invalid"]}`},
			status:   http.StatusServiceUnavailable,
			typ:      models.ProblemTypeUnavailable,
			logLevel: "error",
		},
		{
			name:     "unexpected",
			err:      errors.New("boom"),
			status:   http.StatusInternalServerError,
			typ:      models.ProblemTypeInternal,
			logLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/daily-logs/1", http.NoBody)

			writeError(rec, req, zerolog.New(&logs), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var p models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, "/v1/daily-logs/1", p.Instance)
			assert.NotContains(t, p.Detail, "boom", "internal errors are not echoed")

			if tt.logLevel == "" {
				assert.Empty(t, logs.String())
			} else {
				assert.Contains(t, logs.String(), `"level":"`+tt.logLevel+`"`)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("dailyLogId", tt.raw)
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		id, ferr := pathID(req, "dailyLogId")
		assert.Equal(t, tt.want, id, tt.raw)
		assert.Equal(t, tt.ok, ferr == nil, tt.raw)
	}
}

func TestLocation(t *testing.T) {
	fallback := time.FixedZone("fallback", 3600)

	loc, ferr := location("tz", "", fallback)
	assert.Nil(t, ferr)
	assert.Same(t, fallback, loc)

	loc, ferr = location("tz", "Europe/Amsterdam", fallback)
	assert.Nil(t, ferr)
	assert.Equal(t, "Europe/Amsterdam", loc.String())

	_, ferr = location("timezone", "Atlantis/Capital", fallback)
	require.NotNil(t, ferr)
	assert.Equal(t, "timezone", ferr.Field)
	assert.Equal(t, "INVALID_TIMEZONE", ferr.Code)
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"driverId": 1, "notes": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var v map[string]any
	err := decodeJSON(rec, req, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON body")
}

func TestGrid(t *testing.T) {
	events := []timeline.DotEvent{
		{Kind: timeline.KindMidnight, Hour: 0, Status: timeline.StatusOffDuty},
		{Kind: timeline.KindRecord, Hour: 6, Percentage: 50, Status: timeline.StatusDriving},
		{Kind: timeline.KindRecord, Hour: 6, Percentage: 75, Status: timeline.StatusDriving},
	}
	totals := timeline.Totals{timeline.StatusOffDuty: 7, timeline.StatusDriving: 17}

	rows := grid(events, totals)

	require.Len(t, rows, len(timeline.Statuses))
	driving := rows[2]
	assert.Equal(t, "DRIVING", driving.Label)
	assert.Equal(t, 17, driving.TotalHours)
	require.NotNil(t, driving.Hours[6].Dot)
	assert.Equal(t, 50, *driving.Hours[6].Dot, "the first dot of the hour wins")
	assert.Nil(t, driving.Hours[5].Dot)
	assert.Equal(t, 0, rows[1].TotalHours)
}

type failingSimulator struct{ err error }

func (f failingSimulator) SimulateDay(context.Context, int64) (*simulator.Result, error) {
	return nil, f.err
}

func TestSimulate_RecorderFailure(t *testing.T) {
	h := NewSimulationHandler(failingSimulator{err: fmt.Errorf("create daily log: %w", tripapi.ErrUnavailable)}, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/simulations", strings.NewReader(`{"driverId": 3}`))
	h.Simulate(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
