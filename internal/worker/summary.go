// Package worker runs background jobs that keep daily log summaries current.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/logbook"
)

// Summarizer computes the summary of a daily log.
type Summarizer interface {
	Summarize(ctx context.Context, dailyLogID int64, loc *time.Location) (*logbook.Summary, error)
	ListDailyLogs(ctx context.Context, driverID int64, limit int, cursor int64) (*logbook.ListResult, error)
}

// SummaryConfig holds configuration for the summary job.
type SummaryConfig struct {
	// Location is the zone days are cut in. Nil means UTC.
	Location *time.Location

	// Concurrency is the number of logs summarised at once by a backfill.
	// Default: 3
	Concurrency int

	// Timeout bounds the summary of one log.
	// Default: 30 seconds
	Timeout time.Duration

	// PageSize is the number of logs listed per page during a backfill.
	// Default: 100
	PageSize int
}

// DefaultSummaryConfig returns the default summary configuration.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		Location:    time.UTC,
		Concurrency: 3,
		Timeout:     30 * time.Second,
		PageSize:    100,
	}
}

// SummaryJob computes and stores daily log summaries.
type SummaryJob struct {
	config     SummaryConfig
	summarizer Summarizer
	store      logbook.SummaryRepository
	logger     zerolog.Logger

	mu      sync.RWMutex
	metrics SummaryMetrics
}

// SummaryMetrics tracks summary job statistics.
type SummaryMetrics struct {
	Summarized int64
	Failed     int64
	Backfills  int64

	LastSummaryAt       time.Time
	LastBackfillAt      time.Time
	LastBackfillElapsed time.Duration
}

// SummaryJobConfig holds the dependencies of a SummaryJob.
type SummaryJobConfig struct {
	Config     SummaryConfig
	Summarizer Summarizer
	Store      logbook.SummaryRepository
	Logger     zerolog.Logger
}

// NewSummaryJob creates a summary job, filling unset config with defaults.
func NewSummaryJob(cfg SummaryJobConfig) *SummaryJob {
	config := cfg.Config
	defaults := DefaultSummaryConfig()
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}

	return &SummaryJob{
		config:     config,
		summarizer: cfg.Summarizer,
		store:      cfg.Store,
		logger:     cfg.Logger,
	}
}

// Summarize computes and stores the summary of one daily log.
func (j *SummaryJob) Summarize(ctx context.Context, dailyLogID int64) (*logbook.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	summary, err := j.summarizer.Summarize(ctx, dailyLogID, j.config.Location)
	if err == nil {
		err = j.store.SaveSummary(ctx, summary)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.metrics.Failed++
		return nil, fmt.Errorf("summarize daily log %d: %w", dailyLogID, err)
	}
	j.metrics.Summarized++
	j.metrics.LastSummaryAt = summary.ComputedAt
	return summary, nil
}

// BackfillResult contains the result of a backfill.
type BackfillResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Errors     []SummaryError
}

// SummaryError records a log that could not be summarised.
type SummaryError struct {
	DailyLogID int64
	Error      string
}

// Backfill summarises every daily log of a driver, or of all drivers when
// driverID is 0, with Concurrency workers.
func (j *SummaryJob) Backfill(ctx context.Context, driverID int64) (*BackfillResult, error) {
	startTime := time.Now()

	ids, err := j.logIDs(ctx, driverID)
	if err != nil {
		return nil, err
	}
	result := &BackfillResult{StartTime: startTime, Total: len(ids)}

	j.logger.Info().
		Int64("driver_id", driverID).
		Int("total_logs", len(ids)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting summary backfill")

	idsChan := make(chan int64, len(ids))
	errsChan := make(chan SummaryError, len(ids))
	for _, id := range ids {
		idsChan <- id
	}
	close(idsChan)

	var wg sync.WaitGroup
	for range j.config.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idsChan {
				if ctx.Err() != nil {
					errsChan <- SummaryError{DailyLogID: id, Error: ctx.Err().Error()}
					continue
				}
				if _, err := j.Summarize(ctx, id); err != nil {
					errsChan <- SummaryError{DailyLogID: id, Error: err.Error()}
				}
			}
		}()
	}
	wg.Wait()
	close(errsChan)

	for e := range errsChan {
		result.Errors = append(result.Errors, e)
	}
	result.Failed = len(result.Errors)
	result.Successful = result.Total - result.Failed
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.mu.Lock()
	j.metrics.Backfills++
	j.metrics.LastBackfillAt = result.EndTime
	j.metrics.LastBackfillElapsed = result.Duration
	j.mu.Unlock()

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("summary backfill completed")

	return result, nil
}

func (j *SummaryJob) logIDs(ctx context.Context, driverID int64) ([]int64, error) {
	var (
		ids    []int64
		cursor int64
	)
	for {
		page, err := j.summarizer.ListDailyLogs(ctx, driverID, j.config.PageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list daily logs: %w", err)
		}
		for _, l := range page.Items {
			ids = append(ids, l.ID)
		}
		if page.NextCursor == 0 {
			return ids, nil
		}
		cursor = page.NextCursor
	}
}

// GetMetrics returns a copy of the current metrics.
func (j *SummaryJob) GetMetrics() SummaryMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.metrics
}

// MetricsSnapshot returns the current metrics as a map for logging.
func (j *SummaryJob) MetricsSnapshot() map[string]any {
	m := j.GetMetrics()
	return map[string]any{
		"summarized":            m.Summarized,
		"failed":                m.Failed,
		"backfills":             m.Backfills,
		"last_summary_at":       m.LastSummaryAt,
		"last_backfill_at":      m.LastBackfillAt,
		"last_backfill_elapsed": m.LastBackfillElapsed.String(),
	}
}
