// Package resilience decides whether the external catalog may be called and
// records the outcome of every call.
package resilience

import (
	"errors"
	"fmt"
)

// Guard components, reported in DenyError.Component.
const (
	ComponentBreaker      = "circuit_breaker"
	ComponentHealth       = "health_monitor"
	ComponentFailureCache = "failure_cache"
	ComponentTelemetry    = "telemetry"
)

// DenyError is returned by Guard.Allow when a component refuses the call.
type DenyError struct {
	Component string
	Reason    string
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("external call denied by %s: %s", e.Component, e.Reason)
}

// IsDenied reports whether err is a DenyError and returns it.
func IsDenied(err error) (*DenyError, bool) {
	var de *DenyError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
