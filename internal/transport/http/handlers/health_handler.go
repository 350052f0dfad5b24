package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

type HealthHandler struct {
	alerts ports.AlertRepository
	logger *logger.Logger
}

func NewHealthHandler(alerts ports.AlertRepository, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{alerts: alerts, logger: logger}
}

// Check answers 200 with the stored snapshot count, or 503 when the store
// cannot be queried.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	n, err := h.alerts.Count(c.UserContext())
	if err != nil {
		h.logger.Warnw("health_store_unavailable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "degraded"})
	}
	return c.JSON(dto.HealthResponse{Status: "ok", Snapshots: n})
}
