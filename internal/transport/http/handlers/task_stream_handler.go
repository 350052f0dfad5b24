package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/dto"
)

const defaultStreamInterval = 500 * time.Millisecond

// TaskStreamHandler pushes task snapshots over a websocket until the task
// reaches a terminal state.
type TaskStreamHandler struct {
	tasks    ports.TaskService
	logger   *logger.Logger
	interval time.Duration
}

func NewTaskStreamHandler(tasks ports.TaskService, logger *logger.Logger, interval time.Duration) *TaskStreamHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &TaskStreamHandler{tasks: tasks, logger: logger, interval: interval}
}

func (h *TaskStreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	taskID := c.Params("id")
	h.logger.Infow("task_stream_open", "task_id", taskID)

	// The stream is push-only; reading is how a departed client is noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var last dto.TaskResponse
	sent := false
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		task, err := h.tasks.GetTask(taskID)
		if err != nil {
			h.logger.Warnw("task_stream_not_found", "task_id", taskID)
			_ = c.WriteJSON(dto.ErrorResponse{Error: "task not found"})
			return
		}

		current := dto.TaskToResponse(task)
		if !sent || !current.UpdatedAt.Equal(last.UpdatedAt) || current.Progress != last.Progress || current.Status != last.Status {
			if err := c.WriteJSON(current); err != nil {
				h.logger.Debugw("task_stream_write_failed", "task_id", taskID, "error", err)
				return
			}
			last = current
			sent = true
		}

		if task.Status.IsFinished() {
			h.logger.Infow("task_stream_done", "task_id", taskID, "status", task.Status)
			return
		}

		select {
		case <-gone:
			h.logger.Infow("task_stream_client_gone", "task_id", taskID)
			return
		case <-ticker.C:
		}
	}
}
