package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsActive reports whether the task still occupies the runner.
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusPending || s == TaskStatusRunning
}

func (s TaskStatus) IsFinished() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

const (
	TaskTypeAlertImport = "ALERT_IMPORT"
)

type Task struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`     // e.g., "ALERT_IMPORT"
	Status    TaskStatus `json:"status"`   // pending, running, completed, failed
	Progress  int        `json:"progress"` // 0-100
	Message   string     `json:"message"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
