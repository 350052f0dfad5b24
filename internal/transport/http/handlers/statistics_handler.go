package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

type StatisticsHandler struct {
	service ports.StatisticsService
	logger  *logger.Logger
}

func NewStatisticsHandler(service ports.StatisticsService, logger *logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{service: service, logger: logger}
}

func (h *StatisticsHandler) ShowStatistics(c *fiber.Ctx) error {
	stats, err := h.service.Latest(c.UserContext())
	if err != nil {
		h.logger.Errorw("show_statistics_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to load statistics",
		})
	}
	return c.JSON(stats)
}
