// Package main provides the entrypoint for the eldview API server.
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

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api"
	"github.com/eldview/eldview/internal/api/handler"
	"github.com/eldview/eldview/internal/api/middleware"
	"github.com/eldview/eldview/internal/database"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
	"github.com/eldview/eldview/internal/simulator"
	"github.com/eldview/eldview/internal/telemetry"
	"github.com/eldview/eldview/internal/tripapi"
	"github.com/eldview/eldview/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "eldview-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
}

func run(log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting eldview API")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
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
	if telemetryCfg.Enabled {
		log.Info().Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	registry := resilience.NewRegistry()

	st, err := openStore(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer st.close()

	svc := logbook.NewService(st.repo)

	simOpts := []simulator.Option{
		simulator.WithLocation(cfg.Location),
		simulator.WithLogger(log.With().Str("component", "simulator").Logger()),
	}
	if cfg.PubSubTopic != "" {
		pub, err := worker.NewPublisher(ctx, cfg.PubSubProject, cfg.PubSubTopic, log)
		if err != nil {
			return fmt.Errorf("create summary publisher: %w", err)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close publisher")
			}
		}()
		simOpts = append(simOpts, simulator.WithPublisher(pub))
		log.Info().Str("topic", cfg.PubSubTopic).Msg("summary jobs will be published")
	}

	// the trips backend owns its own drivers and equipment
	var fleet handler.FleetService
	if svc.HasFleet() {
		fleet = svc
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		ServiceName: serviceName,
		Logger:      log,
		Metrics:     metrics,
		RequireTLS:  cfg.RequireTLS,
		Location:    cfg.Location,
		Logbook:     svc,
		Summaries:   st.summaries,
		Simulator:   simulator.New(svc, simOpts...),
		Fleet:       fleet,
		Store:       cfg.Backend,
		Pinger:      st.pinger,
		Registry:    registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("backend", cfg.Backend).
			Str("timezone", cfg.Location.String()).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// store is the log store selected by LOGBOOK_BACKEND.
type store struct {
	repo      logbook.Repository
	summaries logbook.SummaryRepository // nil for the remote backend
	pinger    logbook.Pinger
	close     func()
}

func openStore(ctx context.Context, cfg config, registry *resilience.Registry, log zerolog.Logger) (*store, error) {
	switch cfg.Backend {
	case backendMemory:
		log.Warn().Msg("using the in-memory log store; data is lost on restart")
		repo := logbook.NewInMemoryRepository()
		return &store{repo: repo, summaries: repo, pinger: repo, close: func() {}}, nil

	case backendRemote:
		client := tripapi.NewClient(tripapi.Config{
			BaseURL:  cfg.TripsURL,
			Session:  cfg.TripsSession,
			Timeout:  cfg.TripsTimeout,
			Registry: registry,
			Logger:   log.With().Str("component", "tripapi").Logger(),
		})
		log.Info().Str("url", cfg.TripsURL).Msg("using the trips backend as log store")
		return &store{repo: client, pinger: client, close: func() {}}, nil

	default:
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		log.Info().Str("database", dbConfig.Redacted()).Msg("database connected")
		repo := logbook.NewPostgresRepository(pool)
		return &store{repo: repo, summaries: repo, pinger: repo, close: pool.Close}, nil
	}
}
