package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counter reset period
	Timeout      time.Duration // open-state duration before half-open
	FailureRatio float64
	MinRequests  uint32
}

// Breaker is a two-step circuit breaker that can be reset manually.
type Breaker struct {
	mu     sync.RWMutex
	cb     *gobreaker.TwoStepCircuitBreaker[struct{}]
	cfg    BreakerConfig
	logger *zap.Logger
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *Breaker {
	b := &Breaker{cfg: cfg, logger: logger}
	b.cb = b.build()
	return b
}

func (b *Breaker) build() *gobreaker.TwoStepCircuitBreaker[struct{}] {
	cfg := b.cfg
	settings := gobreaker.Settings{
		Name:        "igdb",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewTwoStepCircuitBreaker[struct{}](settings)
}

// Allow returns a callback for reporting the call result, or gobreaker's
// ErrOpenState / ErrTooManyRequests when the call is refused.
func (b *Breaker) Allow() (func(error), error) {
	b.mu.RLock()
	cb := b.cb
	b.mu.RUnlock()

	return cb.Allow()
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cb.State()
}

// Counts returns the current generation's counters.
func (b *Breaker) Counts() gobreaker.Counts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cb.Counts()
}

// Reset closes the breaker and clears its counters. Callbacks handed out before
// the reset report into the discarded breaker.
func (b *Breaker) Reset() {
	fresh := b.build()

	b.mu.Lock()
	b.cb = fresh
	b.mu.Unlock()

	b.logger.Info("circuit breaker reset")
}
