package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/timeline"
	"github.com/eldview/eldview/internal/worker"
)

func TestOpsRouter(t *testing.T) {
	ctx := context.Background()
	repo := logbook.NewInMemoryRepository()
	svc := logbook.NewService(repo)

	l, err := svc.CreateDailyLog(ctx, logbook.CreateDailyLogInput{DriverID: 1, TruckID: 1, TrailerID: 1})
	require.NoError(t, err)
	_, err = svc.AddDutyStatus(ctx, l.ID, logbook.DutyStatusInput{
		Status:    timeline.StatusDriving,
		Timestamp: l.CreatedAt.Add(-time.Hour),
	})
	require.NoError(t, err)

	job := worker.NewSummaryJob(worker.SummaryJobConfig{Summarizer: svc, Store: repo, Logger: zerolog.Nop()})
	_, err = job.Summarize(ctx, l.ID)
	require.NoError(t, err)

	router := opsRouter(repo, "memory", job, zerolog.Nop())

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/summary", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.EqualValues(t, 1, snapshot["summarized"])
}

func TestStoreBackend(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "", wantErr: false},
		{value: "postgres", wantErr: false},
		{value: "memory", wantErr: true},
		{value: "remote", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LOGBOOK_BACKEND", tt.value)

			backend, err := storeBackend()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "postgres", backend)
		})
	}
}
