package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

const defaultTimelineLimit = 50

type TimelineHandler struct {
	repo ports.TimelineRepository
}

func NewTimelineHandler(repo ports.TimelineRepository) *TimelineHandler {
	return &TimelineHandler{repo: repo}
}

func (h *TimelineHandler) GetEvents(c *fiber.Ctx) error {
	rtype := c.Query("resource_type")
	rid := c.Query("resource_id")
	if rtype != "" && rid != "" {
		events, err := h.repo.GetByResource(c.UserContext(), rtype, rid)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(events)
	}

	limit := c.QueryInt("limit", defaultTimelineLimit)
	if limit <= 0 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid limit"})
	}
	events, err := h.repo.GetAll(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(events)
}
