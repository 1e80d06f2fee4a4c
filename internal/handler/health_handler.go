package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Prajjwal888/Smart-Check-AI/internal/config"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
)

// HealthResponse is the liveness payload served under /api/v1/health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports the service name and environment so probes can tell
// deployments apart.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
