package resilience

import (
	"sync"
	"time"
)

// CallRecord describes one external call attempt.
type CallRecord struct {
	Query    string        `json:"query"`
	At       time.Time     `json:"at"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Results  int           `json:"results"`
	Error    string        `json:"error,omitempty"`
}

// TelemetryConfig holds telemetry thresholds.
type TelemetryConfig struct {
	Capacity         int
	Window           time.Duration
	MinSamples       int
	DisableThreshold float64 // failure rate at which external calls should stop
}

// TelemetrySnapshot summarizes recorded calls.
type TelemetrySnapshot struct {
	TotalCalls     int64         `json:"total_calls"`
	TotalFailures  int64         `json:"total_failures"`
	WindowSamples  int           `json:"window_samples"`
	WindowFailRate float64       `json:"window_failure_rate"`
	AvgDuration    time.Duration `json:"avg_duration"`
	Recommendation string        `json:"recommendation"`
	Recent         []CallRecord  `json:"recent"`
}

// Telemetry keeps a ring of recent external calls.
type Telemetry struct {
	mu            sync.Mutex
	cfg           TelemetryConfig
	ring          []CallRecord
	next          int
	full          bool
	totalCalls    int64
	totalFailures int64
	resetAt       time.Time
	now           func() time.Time
}

// NewTelemetry creates an empty recorder.
func NewTelemetry(cfg TelemetryConfig, now func() time.Time) *Telemetry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100
	}
	return &Telemetry{cfg: cfg, ring: make([]CallRecord, cfg.Capacity), now: now}
}

// Record stores a call attempt.
func (t *Telemetry) Record(rec CallRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.At.IsZero() {
		rec.At = t.now()
	}
	t.ring[t.next] = rec
	t.next = (t.next + 1) % len(t.ring)
	if t.next == 0 {
		t.full = true
	}

	t.totalCalls++
	if !rec.Success {
		t.totalFailures++
	}
}

// ShouldDisable reports whether the rolling failure rate recommends stopping
// external calls.
func (t *Telemetry) ShouldDisable() (bool, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	samples, failRate := t.windowLocked()
	return samples >= t.cfg.MinSamples && samples > 0 && failRate >= t.cfg.DisableThreshold, failRate
}

// Snapshot returns totals and the recent records, newest last.
func (t *Telemetry) Snapshot() TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.recentLocked()
	var total time.Duration
	for _, r := range recent {
		total += r.Duration
	}

	samples, failRate := t.windowLocked()
	snap := TelemetrySnapshot{
		TotalCalls:     t.totalCalls,
		TotalFailures:  t.totalFailures,
		WindowSamples:  samples,
		WindowFailRate: failRate,
		Recommendation: "enabled",
		Recent:         recent,
	}
	if len(recent) > 0 {
		snap.AvgDuration = total / time.Duration(len(recent))
	}
	if samples >= t.cfg.MinSamples && samples > 0 && failRate >= t.cfg.DisableThreshold {
		snap.Recommendation = "disable"
	}
	return snap
}

// Reset excludes calls recorded so far from the disable recommendation. History
// and totals are kept.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	t.resetAt = t.now()
	t.mu.Unlock()
}

func (t *Telemetry) recentLocked() []CallRecord {
	if !t.full {
		out := make([]CallRecord, t.next)
		copy(out, t.ring[:t.next])
		return out
	}
	out := make([]CallRecord, 0, len(t.ring))
	out = append(out, t.ring[t.next:]...)
	out = append(out, t.ring[:t.next]...)
	return out
}

func (t *Telemetry) windowLocked() (int, float64) {
	cutoff := t.now().Add(-t.cfg.Window)
	samples, failures := 0, 0
	for _, r := range t.recentLocked() {
		if r.At.Before(cutoff) || !r.At.After(t.resetAt) {
			continue
		}
		samples++
		if !r.Success {
			failures++
		}
	}
	return samples, rate(failures, samples)
}
