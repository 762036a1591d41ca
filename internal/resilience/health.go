package resilience

import (
	"sync"
	"time"
)

// HealthStatus is the coarse health of the external source.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthConfig holds health monitor thresholds.
type HealthConfig struct {
	Window          time.Duration // outcomes older than this are ignored
	MinSamples      int
	DegradedRatio   float64
	UnhealthyRatio  float64
	MaxObservations int
}

type observation struct {
	at      time.Time
	success bool
}

// HealthMonitor tracks rolling call outcomes.
type HealthMonitor struct {
	mu  sync.Mutex
	cfg HealthConfig
	obs []observation
	now func() time.Time
}

// NewHealthMonitor creates a monitor with an empty window.
func NewHealthMonitor(cfg HealthConfig, now func() time.Time) *HealthMonitor {
	if cfg.MaxObservations <= 0 {
		cfg.MaxObservations = 100
	}
	return &HealthMonitor{cfg: cfg, now: now}
}

// Record adds an outcome.
func (h *HealthMonitor) Record(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.obs = append(h.obs, observation{at: h.now(), success: success})
	if over := len(h.obs) - h.cfg.MaxObservations; over > 0 {
		h.obs = append(h.obs[:0], h.obs[over:]...)
	}
}

// Status returns the current health, the number of samples in the window and
// their failure rate.
func (h *HealthMonitor) Status() (HealthStatus, int, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-h.cfg.Window)
	samples, failures := 0, 0
	for _, o := range h.obs {
		if o.at.Before(cutoff) {
			continue
		}
		samples++
		if !o.success {
			failures++
		}
	}

	if samples == 0 || samples < h.cfg.MinSamples {
		return HealthHealthy, samples, rate(failures, samples)
	}

	r := rate(failures, samples)
	switch {
	case r >= h.cfg.UnhealthyRatio:
		return HealthUnhealthy, samples, r
	case r >= h.cfg.DegradedRatio:
		return HealthDegraded, samples, r
	default:
		return HealthHealthy, samples, r
	}
}

// Reset forgets every outcome.
func (h *HealthMonitor) Reset() {
	h.mu.Lock()
	h.obs = nil
	h.mu.Unlock()
}

func rate(failures, samples int) float64 {
	if samples == 0 {
		return 0
	}
	return float64(failures) / float64(samples)
}
