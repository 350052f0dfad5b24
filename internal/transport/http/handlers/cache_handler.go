package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

type CacheHandler struct {
	service ports.CacheService
	logger  *logger.Logger
}

func NewCacheHandler(service ports.CacheService, logger *logger.Logger) *CacheHandler {
	return &CacheHandler{service: service, logger: logger}
}

func (h *CacheHandler) RefreshCache(c *fiber.Ctx) error {
	if err := h.service.Refresh(c.UserContext()); err != nil {
		h.logger.Errorw("refresh_cache_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to refresh cache",
		})
	}
	return c.JSON(dto.StatusResponse{Status: "success", Message: "cache cleared"})
}
