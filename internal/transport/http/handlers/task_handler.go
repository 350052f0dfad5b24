package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/core/services"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

type TaskHandler struct {
	imports ports.ImportService
	tasks   ports.TaskService
	logger  *logger.Logger
}

func NewTaskHandler(imports ports.ImportService, tasks ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{imports: imports, tasks: tasks, logger: logger}
}

// RunLongTask starts the alert import in the background.
func (h *TaskHandler) RunLongTask(c *fiber.Ctx) error {
	task, err := h.imports.StartImport(c.UserContext())
	if err != nil {
		if errors.Is(err, services.ErrTaskAlreadyRunning) {
			h.logger.Warnw("run_long_task_conflict")
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "a task is already running",
			})
		}
		h.logger.Errorw("run_long_task_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to start task",
		})
	}

	h.logger.Infow("run_long_task_started", "task_id", task.ID)
	return c.Status(fiber.StatusAccepted).JSON(dto.TaskStartResponse{
		TaskID: task.ID,
		Status: string(domain.TaskStatusRunning),
	})
}

// CheckTaskStatus reports on ?task_id=, or on the latest task when the
// parameter is absent.
func (h *TaskHandler) CheckTaskStatus(c *fiber.Ctx) error {
	taskID := c.Query("task_id")

	if taskID == "" {
		task, err := h.tasks.LatestTask()
		if errors.Is(err, services.ErrTaskNotFound) {
			return c.JSON(dto.TaskToStatusResponse(nil))
		}
		if err != nil {
			return err
		}
		return c.JSON(dto.TaskToStatusResponse(task))
	}

	task, err := h.tasks.GetTask(taskID)
	if err != nil {
		h.logger.Warnw("task_status_not_found", "task_id", taskID)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "task not found",
		})
	}
	return c.JSON(dto.TaskToStatusResponse(task))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "task id is required",
		})
	}

	task, err := h.tasks.GetTask(taskID)
	if err != nil {
		h.logger.Warnw("task_get_not_found", "task_id", taskID)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "task not found",
		})
	}
	return c.JSON(dto.TaskToResponse(task))
}
