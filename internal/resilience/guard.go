package resilience

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Config holds the configuration of every guard component.
type Config struct {
	Breaker         BreakerConfig
	Health          HealthConfig
	Telemetry       TelemetryConfig
	FailureCooldown time.Duration
	FailureCacheMax int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Breaker: BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureRatio: 0.5,
			MinRequests:  3,
		},
		Health: HealthConfig{
			Window:          2 * time.Minute,
			MinSamples:      5,
			DegradedRatio:   0.3,
			UnhealthyRatio:  0.8,
			MaxObservations: 100,
		},
		Telemetry: TelemetryConfig{
			Capacity:         100,
			Window:           5 * time.Minute,
			MinSamples:       10,
			DisableThreshold: 0.7,
		},
		FailureCooldown: 5 * time.Minute,
		FailureCacheMax: 1000,
	}
}

// Outcome is the result of one external call.
type Outcome struct {
	Err      error
	Duration time.Duration
	Results  int
}

// Snapshot is the observable guard state.
type Snapshot struct {
	Breaker struct {
		State               string `json:"state"`
		Requests            uint32 `json:"requests"`
		TotalFailures       uint32 `json:"total_failures"`
		ConsecutiveFailures uint32 `json:"consecutive_failures"`
	} `json:"breaker"`
	Health struct {
		Status      HealthStatus `json:"status"`
		Samples     int          `json:"samples"`
		FailureRate float64      `json:"failure_rate"`
	} `json:"health"`
	FailureCache struct {
		Entries int `json:"entries"`
	} `json:"failure_cache"`
	Telemetry TelemetrySnapshot `json:"telemetry"`
}

// Guard combines the breaker, health monitor, failure cache and telemetry.
// Every component must permit a call. Each Guard owns its state.
type Guard struct {
	breaker   *Breaker
	health    *HealthMonitor
	failures  *FailureCache
	telemetry *Telemetry
	logger    *zap.Logger
}

// Option configures a Guard.
type Option func(*guardOptions)

type guardOptions struct {
	now func() time.Time
}

// WithClock sets the clock of the time-windowed components.
func WithClock(now func() time.Time) Option {
	return func(o *guardOptions) {
		o.now = now
	}
}

// NewGuard creates a Guard that permits calls.
func NewGuard(cfg Config, logger *zap.Logger, opts ...Option) *Guard {
	o := guardOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Guard{
		breaker:   NewBreaker(cfg.Breaker, logger),
		health:    NewHealthMonitor(cfg.Health, o.now),
		failures:  NewFailureCache(cfg.FailureCooldown, cfg.FailureCacheMax, o.now),
		telemetry: NewTelemetry(cfg.Telemetry, o.now),
		logger:    logger,
	}
}

// Allow checks every component for query. When all permit it returns a callback
// that must be called exactly once with the call's outcome. Otherwise it returns
// a *DenyError naming the refusing component.
func (g *Guard) Allow(query string) (func(Outcome), error) {
	if status, samples, failRate := g.health.Status(); status == HealthUnhealthy {
		return nil, &DenyError{
			Component: ComponentHealth,
			Reason:    fmt.Sprintf("unhealthy: %.0f%% failures over %d calls", failRate*100, samples),
		}
	}

	if remaining, blocked := g.failures.Blocked(query); blocked {
		return nil, &DenyError{
			Component: ComponentFailureCache,
			Reason:    fmt.Sprintf("query failed recently, retry in %s", remaining.Round(time.Second)),
		}
	}

	if disable, failRate := g.telemetry.ShouldDisable(); disable {
		return nil, &DenyError{
			Component: ComponentTelemetry,
			Reason:    fmt.Sprintf("rolling failure rate %.0f%%", failRate*100),
		}
	}

	// The breaker goes last: a half-open probe slot is only consumed when the
	// call will actually be made.
	done, err := g.breaker.Allow()
	if err != nil {
		reason := err.Error()
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "half-open probe in flight"
		}
		return nil, &DenyError{Component: ComponentBreaker, Reason: reason}
	}

	return func(o Outcome) {
		g.record(query, o, done)
	}, nil
}

func (g *Guard) record(query string, o Outcome, done func(error)) {
	done(o.Err)

	success := o.Err == nil
	g.health.Record(success)

	rec := CallRecord{
		Query:    query,
		Success:  success,
		Duration: o.Duration,
		Results:  o.Results,
	}
	if !success {
		rec.Error = o.Err.Error()
		g.failures.Add(query)
	}
	g.telemetry.Record(rec)
}

// Reset closes the breaker and clears health, failure cache and the telemetry
// recommendation window.
func (g *Guard) Reset() {
	g.breaker.Reset()
	g.health.Reset()
	g.failures.Reset()
	g.telemetry.Reset()

	g.logger.Info("resilience guard reset")
}

// Snapshot returns the current state of every component.
func (g *Guard) Snapshot() Snapshot {
	var s Snapshot

	counts := g.breaker.Counts()
	s.Breaker.State = g.breaker.State().String()
	s.Breaker.Requests = counts.Requests
	s.Breaker.TotalFailures = counts.TotalFailures
	s.Breaker.ConsecutiveFailures = counts.ConsecutiveFailures

	s.Health.Status, s.Health.Samples, s.Health.FailureRate = g.health.Status()
	s.FailureCache.Entries = g.failures.Len()
	s.Telemetry = g.telemetry.Snapshot()

	return s
}
