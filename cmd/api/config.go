package main

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Log store backends.
const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendRemote   = "remote"
)

type config struct {
	Port       string
	Backend    string
	Location   *time.Location
	RequireTLS bool

	TripsURL     string
	TripsSession string
	TripsTimeout time.Duration

	PubSubProject string
	PubSubTopic   string
}

func loadConfig() (config, error) {
	cfg := config{
		Port:          getenv("APP_PORT", "8080"),
		Backend:       getenv("LOGBOOK_BACKEND", backendPostgres),
		RequireTLS:    os.Getenv("REQUIRE_TLS") == "true",
		TripsURL:      os.Getenv("TRIPS_API_URL"),
		TripsSession:  os.Getenv("TRIPS_API_SESSION"),
		TripsTimeout:  10 * time.Second,
		PubSubProject: os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:   os.Getenv("PUBSUB_TOPIC"),
	}

	loc, err := time.LoadLocation(getenv("ELD_TIMEZONE", "UTC"))
	if err != nil {
		return cfg, fmt.Errorf("ELD_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if raw := os.Getenv("TRIPS_API_TIMEOUT"); raw != "" {
		if cfg.TripsTimeout, err = time.ParseDuration(raw); err != nil {
			return cfg, fmt.Errorf("TRIPS_API_TIMEOUT: %w", err)
		}
	}

	switch cfg.Backend {
	case backendMemory, backendPostgres:
	case backendRemote:
		if cfg.TripsURL == "" {
			return cfg, errors.New("LOGBOOK_BACKEND=remote requires TRIPS_API_URL")
		}
	default:
		return cfg, fmt.Errorf("LOGBOOK_BACKEND: unknown backend %q", cfg.Backend)
	}

	if cfg.PubSubTopic != "" && cfg.PubSubProject == "" {
		return cfg, errors.New("PUBSUB_TOPIC requires PUBSUB_PROJECT_ID")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
