package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
)

// ProgressFunc lets a running task publish its progress (0-100).
type ProgressFunc func(progress int, msg string)

// TaskFunc is the body of a background task.
type TaskFunc func(ctx context.Context, report ProgressFunc) error

// TaskService keeps the registry of background tasks. At most one task is
// active at a time; finished tasks are kept for the retention period so
// clients can still read their final state.
type TaskService struct {
	tasks    map[string]*domain.Task
	done     map[string]chan struct{}
	latestID string
	mu       sync.RWMutex

	timeline  ports.TimelineRepository
	logger    *logger.Logger
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
}

type TaskServiceConfig struct {
	Timeline  ports.TimelineRepository
	Logger    *logger.Logger
	Retention time.Duration
	Timeout   time.Duration
}

func NewTaskService(cfg TaskServiceConfig) *TaskService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &TaskService{
		tasks:     make(map[string]*domain.Task),
		done:      make(map[string]chan struct{}),
		timeline:  cfg.Timeline,
		logger:    log,
		retention: cfg.Retention,
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

// ==================== Task Management ====================

// Start registers a new task and runs fn in the background. It refuses to
// start while another task is still active.
func (s *TaskService) Start(ctx context.Context, taskType string, fn TaskFunc) (*domain.Task, error) {
	s.mu.Lock()
	for _, t := range s.tasks {
		if t.Status.IsActive() {
			s.mu.Unlock()
			s.logger.Warnw("task_start_rejected", "type", taskType, "running_task_id", t.ID)
			return nil, ErrTaskAlreadyRunning
		}
	}
	s.pruneLocked()

	now := s.now()
	task := &domain.Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Status:    domain.TaskStatusPending,
		Progress:  0,
		Message:   "Task initialized",
		CreatedAt: now,
		UpdatedAt: now,
	}
	done := make(chan struct{})
	s.tasks[task.ID] = task
	s.done[task.ID] = done
	s.latestID = task.ID
	taskCopy := *task
	s.mu.Unlock()

	s.logger.Infow("task_start_ok", "task_id", task.ID, "type", taskType)
	s.record(ctx, task.ID, domain.EventTypeTaskStarted, domain.EventStatusPending, "task started", domain.JSONB{"type": taskType})

	bgCtx := context.Background()
	if reqID := domain.RequestIDFrom(ctx); reqID != "" {
		bgCtx = domain.WithRequestID(bgCtx, reqID)
	}
	bgCtx = domain.WithTaskID(bgCtx, task.ID)

	go s.run(bgCtx, task.ID, fn, done)

	return &taskCopy, nil
}

func (s *TaskService) run(ctx context.Context, id string, fn TaskFunc, done chan struct{}) {
	defer close(done)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.execute(ctx, id, fn); err != nil {
		s.logger.Errorw("task_failed", "task_id", id, "error", err)
		s.fail(id, err.Error())
		s.record(ctx, id, domain.EventTypeTaskFailed, domain.EventStatusFailed, err.Error(), nil)
		return
	}

	s.update(id, domain.TaskStatusCompleted, 100, "Task completed")
	s.logger.Infow("task_completed", "task_id", id)
	s.record(ctx, id, domain.EventTypeTaskCompleted, domain.EventStatusSuccess, "task completed", nil)
}

func (s *TaskService) execute(ctx context.Context, id string, fn TaskFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("task_panic", "task_id", id, "panic", r)
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	s.update(id, domain.TaskStatusRunning, 0, "Task running")

	return fn(ctx, func(progress int, msg string) {
		s.update(id, domain.TaskStatusRunning, clampProgress(progress), msg)
	})
}

func (s *TaskService) update(id string, status domain.TaskStatus, progress int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return
	}

	task.Status = status
	task.Progress = progress
	task.Message = msg
	task.UpdatedAt = s.now()
}

func (s *TaskService) fail(id string, errStr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return
	}

	task.Status = domain.TaskStatusFailed
	task.Error = errStr
	task.Message = "Task failed"
	task.UpdatedAt = s.now()
}

func (s *TaskService) GetTask(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}

	taskCopy := *task
	return &taskCopy, nil
}

// LatestTask returns the most recently started task.
func (s *TaskService) LatestTask() (*domain.Task, error) {
	s.mu.RLock()
	id := s.latestID
	s.mu.RUnlock()

	if id == "" {
		return nil, ErrTaskNotFound
	}
	return s.GetTask(id)
}

// IsRunning reports whether the task exists and has not finished yet.
func (s *TaskService) IsRunning(id string) bool {
	task, err := s.GetTask(id)
	if err != nil {
		return false
	}
	return task.Status.IsActive()
}

// Wait blocks until the task finishes or ctx is done.
func (s *TaskService) Wait(ctx context.Context, id string) error {
	s.mu.RLock()
	done, exists := s.done[id]
	s.mu.RUnlock()

	if !exists {
		return ErrTaskNotFound
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Prune drops expired finished tasks and reports how many were removed.
func (s *TaskService) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

// pruneLocked drops finished tasks older than the retention period. The
// latest task is always kept.
func (s *TaskService) pruneLocked() int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)
	n := 0
	for id, t := range s.tasks {
		if id == s.latestID || !t.Status.IsFinished() {
			continue
		}
		if t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			delete(s.done, id)
			n++
		}
	}
	return n
}

func (s *TaskService) record(ctx context.Context, taskID, eventType string, status domain.EventStatus, msg string, meta domain.JSONB) {
	if s.timeline == nil {
		return
	}
	event := &domain.TimelineEvent{
		Type:         eventType,
		Status:       status,
		Message:      msg,
		Meta:         meta,
		ResourceID:   taskID,
		ResourceType: domain.ResourceTypeTask,
	}
	if err := s.timeline.Create(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warnw("task_timeline_record_failed", "task_id", taskID, "type", eventType, "error", err)
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
