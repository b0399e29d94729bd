// Package api provides the HTTP API of eldview.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/api/handler"
	"github.com/eldview/eldview/internal/api/middleware"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	ServiceName string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics
	RequireTLS  bool

	// Location is the zone log books are drawn in when a request names none.
	Location *time.Location

	Logbook   handler.LogbookService
	Summaries logbook.SummaryRepository
	Simulator handler.DaySimulator
	// Fleet serves drivers and equipment. Its routes are mounted only when
	// set.
	Fleet handler.FleetService

	// Store names the log store backend for the status endpoints and Pinger
	// checks it.
	Store    string
	Pinger   logbook.Pinger
	Registry *resilience.Registry
}

// NewRouter creates a chi router with every API route.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "eldview-api"
	}

	// order matters: the request id must exist before tracing and logging
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Store:     cfg.Store,
		Pinger:    cfg.Pinger,
		Registry:  cfg.Registry,
	})
	metadataHandler := handler.NewMetadataHandler()
	dailyLogHandler := handler.NewDailyLogHandler(handler.DailyLogConfig{
		Service:   cfg.Logbook,
		Summaries: cfg.Summaries,
		Location:  cfg.Location,
		Logger:    cfg.Logger,
	})
	timelineHandler := handler.NewTimelineHandler(cfg.Location, cfg.Logger)
	simulationHandler := handler.NewSimulationHandler(cfg.Simulator, cfg.Logger)
	fleetHandler := handler.NewFleetHandler(cfg.Fleet, cfg.Logger)

	computeRateLimit := middleware.RateLimitByIP(middleware.ComputeRateLimit)
	writeRateLimit := middleware.RateLimitByIP(middleware.WriteRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(standardRateLimit).Get("/metadata/duty-statuses", metadataHandler.ListDutyStatuses)

		r.Route("/daily-logs", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", dailyLogHandler.ListDailyLogs)
			r.With(writeRateLimit).Post("/", dailyLogHandler.CreateDailyLog)

			r.Route("/{dailyLogId}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(standardRateLimit)
					r.Get("/", dailyLogHandler.GetDailyLog)
					r.Get("/duty-statuses", dailyLogHandler.ListDutyStatuses)
					r.Get("/duty-statuses/{dutyStatusId}", dailyLogHandler.GetDutyStatus)
					r.Get("/logbook", dailyLogHandler.LogBook)
					r.Get("/summary", dailyLogHandler.Summary)
					r.Get("/route", dailyLogHandler.Route)
				})
				r.With(writeRateLimit).Post("/duty-statuses", dailyLogHandler.AddDutyStatus)
			})
		})

		r.Route("/drivers", func(r chi.Router) {
			if cfg.Fleet != nil {
				r.With(standardRateLimit).Get("/", fleetHandler.ListDrivers)
				r.With(writeRateLimit).Post("/", fleetHandler.CreateDriver)
				r.With(standardRateLimit).Get("/{driverId}", fleetHandler.GetDriver)
			}
			r.With(standardRateLimit).Get("/{driverId}/cycle", dailyLogHandler.Cycle)
		})

		if cfg.Fleet != nil {
			r.Route("/trucks", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", fleetHandler.ListTrucks)
				r.With(writeRateLimit).Post("/", fleetHandler.CreateTruck)
				r.With(standardRateLimit).Get("/{truckId}", fleetHandler.GetTruck)
			})
			r.Route("/trailers", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", fleetHandler.ListTrailers)
				r.With(writeRateLimit).Post("/", fleetHandler.CreateTrailer)
				r.With(standardRateLimit).Get("/{trailerId}", fleetHandler.GetTrailer)
			})
		}

		r.With(computeRateLimit).Post("/timeline:compute", timelineHandler.Compute)
		if cfg.Simulator != nil {
			r.With(computeRateLimit).Post("/simulations", simulationHandler.Simulate)
		}
	})

	return r
}
