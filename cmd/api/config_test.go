package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOGBOOK_BACKEND", "ELD_TIMEZONE", "REQUIRE_TLS",
		"TRIPS_API_URL", "TRIPS_API_SESSION", "TRIPS_API_TIMEOUT",
		"PUBSUB_PROJECT_ID", "PUBSUB_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, backendPostgres, cfg.Backend)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.RequireTLS)
	assert.Equal(t, 10*time.Second, cfg.TripsTimeout)
}

func TestLoadConfig_Remote(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOGBOOK_BACKEND", "remote")
	t.Setenv("TRIPS_API_URL", "http://trips:8000")
	t.Setenv("TRIPS_API_TIMEOUT", "3s")
	t.Setenv("ELD_TIMEZONE", "America/Denver")
	t.Setenv("REQUIRE_TLS", "true")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, backendRemote, cfg.Backend)
	assert.Equal(t, 3*time.Second, cfg.TripsTimeout)
	assert.Equal(t, "America/Denver", cfg.Location.String())
	assert.True(t, cfg.RequireTLS)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown backend", map[string]string{"LOGBOOK_BACKEND": "sqlite"}, "unknown backend"},
		{"remote without url", map[string]string{"LOGBOOK_BACKEND": "remote"}, "TRIPS_API_URL"},
		{"bad zone", map[string]string{"ELD_TIMEZONE": "Nowhere/Town"}, "ELD_TIMEZONE"},
		{"bad timeout", map[string]string{"TRIPS_API_TIMEOUT": "soon"}, "TRIPS_API_TIMEOUT"},
		{"topic without project", map[string]string{"PUBSUB_TOPIC": "summaries"}, "PUBSUB_PROJECT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
