// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

const probeTimeout = 2 * time.Second

// Probe checks one dependency; a nil error means ready.
type Probe func(ctx context.Context) error

// NewHealthCheck serves /livez (always up while the process runs) and /readyz
// (every probe passes). Register it before other middleware.
func NewHealthCheck(probes ...Probe) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(*fiber.Ctx) bool {
			return true
		},
		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
			defer cancel()
			for _, probe := range probes {
				if probe(ctx) != nil {
					return false
				}
			}
			return true
		},
	})
}
