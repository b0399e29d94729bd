// Package main provides the eldview worker, which computes daily log
// summaries from jobs received over Pub/Sub.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/handler"
	"github.com/eldview/eldview/internal/api/middleware"
	"github.com/eldview/eldview/internal/api/response"
	"github.com/eldview/eldview/internal/database"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/telemetry"
	"github.com/eldview/eldview/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "eldview-worker"

// summaryStore is a log store the worker can write summaries to.
type summaryStore interface {
	logbook.Repository
	logbook.SummaryRepository
	logbook.Pinger
}

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("worker stopped with error")
	}
}

func run(log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting eldview worker")

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID == "" || subscription == "" {
		return errors.New("PUBSUB_PROJECT_ID and PUBSUB_SUBSCRIPTION are required")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	loc, err := time.LoadLocation(getenv("ELD_TIMEZONE", "UTC"))
	if err != nil {
		return fmt.Errorf("ELD_TIMEZONE: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	backend, err := storeBackend()
	if err != nil {
		return err
	}
	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	var repo summaryStore = logbook.NewPostgresRepository(pool)

	job := worker.NewSummaryJob(worker.SummaryJobConfig{
		Config:     worker.SummaryConfig{Location: loc},
		Summarizer: logbook.NewService(repo),
		Store:      repo,
		Logger:     log.With().Str("job", "summary").Logger(),
	})
	dispatcher := worker.NewDispatcher(job, repo, log)

	handlerPS, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Dispatcher:       dispatcher,
		Logger:           log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := handlerPS.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub client")
		}
	}()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           opsRouter(repo, backend, job, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- handlerPS.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			runErr = fmt.Errorf("pubsub receive: %w", runErr)
		}
	case <-quit:
		log.Info().Msg("shutting down worker")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Interface("summary_metrics", job.MetricsSnapshot()).Msg("worker stopped")
	return runErr
}

// storeBackend checks LOGBOOK_BACKEND. Jobs name logs written by the API, so
// the worker needs the store the API writes to: an in-memory store would
// never hold them and the remote backend cannot keep summaries.
func storeBackend() (string, error) {
	backend := getenv("LOGBOOK_BACKEND", "postgres")
	if backend != "postgres" {
		return "", fmt.Errorf("LOGBOOK_BACKEND: the worker needs the shared postgres store, not %q", backend)
	}
	return backend, nil
}

// opsRouter serves the health endpoints of the worker and its job counters.
func opsRouter(repo logbook.Pinger, backend string, job *worker.SummaryJob, log zerolog.Logger) http.Handler {
	ops := handler.NewOpsHandler(handler.OpsConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Store:     backend,
		Pinger:    repo,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Get("/health", ops.HealthCheck)
	r.Get("/ready", ops.ReadinessCheck)
	r.Get("/jobs/summary", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, job.MetricsSnapshot())
	})
	return r
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
