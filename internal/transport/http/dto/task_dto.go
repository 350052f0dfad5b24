package dto

import (
	"time"

	"github.com/reportdash/backend/internal/domain"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Snapshots int64  `json:"snapshots"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// TaskStartResponse is returned by POST /run_long_task.
type TaskStartResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse is returned by GET /check_task_status. Only
// task_running is guaranteed; the other fields are empty when no task has
// ever been started.
type TaskStatusResponse struct {
	TaskRunning bool   `json:"task_running"`
	TaskID      string `json:"task_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Progress    int    `json:"progress"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

type TaskResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func TaskToStatusResponse(task *domain.Task) TaskStatusResponse {
	if task == nil {
		return TaskStatusResponse{TaskRunning: false}
	}
	return TaskStatusResponse{
		TaskRunning: task.Status.IsActive(),
		TaskID:      task.ID,
		Status:      string(task.Status),
		Progress:    task.Progress,
		Message:     task.Message,
		Error:       task.Error,
	}
}

func TaskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Type:      task.Type,
		Status:    string(task.Status),
		Progress:  task.Progress,
		Message:   task.Message,
		Error:     task.Error,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
