// Package resilience wraps outbound HTTP calls to upstream services with a
// circuit breaker, per-request timeouts and retries with exponential backoff.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker of an upstream.
type BreakerConfig struct {
	Name string

	// MaxRequests is the number of trial requests let through while half-open.
	MaxRequests uint32

	// Interval clears the counts while closed. Zero never clears them.
	Interval time.Duration

	// Cooldown is how long the breaker stays open before going half-open.
	Cooldown time.Duration

	// ShouldTrip decides when to open. Nil means ShouldTrip.
	ShouldTrip func(counts gobreaker.Counts) bool

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used for upstreams.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Cooldown:    30 * time.Second,
		ShouldTrip:  ShouldTrip,
	}
}

// ShouldTrip opens the breaker once at least 5 requests were seen and half
// or more of them failed.
func ShouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	trip := cfg.ShouldTrip
	if trip == nil {
		trip = ShouldTrip
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Cooldown,
		ReadyToTrip:   trip,
		OnStateChange: cfg.OnStateChange,
	})
}
