package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Check is one dependency verified by the readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	checks []Check
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(checks ...Check) *ProbeHandler {
	return &ProbeHandler{checks: checks}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if every dependency is reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  check.Name + " unavailable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
