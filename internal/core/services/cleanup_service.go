package services

import (
	"context"
	"time"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/logger"
)

// CleanupService periodically trims the timeline and the task registry.
type CleanupService struct {
	timeline  ports.TimelineRepository
	tasks     *TaskService
	logger    *logger.Logger
	interval  time.Duration
	retention time.Duration
}

type CleanupServiceConfig struct {
	Timeline  ports.TimelineRepository
	Tasks     *TaskService
	Logger    *logger.Logger
	Interval  time.Duration
	Retention time.Duration
}

func NewCleanupService(cfg CleanupServiceConfig) *CleanupService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		timeline:  cfg.Timeline,
		tasks:     cfg.Tasks,
		logger:    log,
		interval:  interval,
		retention: cfg.Retention,
	}
}

// RunOnce performs a single cleanup pass.
func (s *CleanupService) RunOnce(ctx context.Context) error {
	if s.tasks != nil {
		if n := s.tasks.Prune(); n > 0 {
			s.logger.Infow("cleanup_tasks_pruned", "count", n)
		}
	}
	if s.timeline == nil || s.retention <= 0 {
		return nil
	}
	if err := s.timeline.CleanupOld(ctx, s.retention); err != nil {
		s.logger.Errorw("cleanup_timeline_failed", "error", err)
		return err
	}
	return nil
}

// Run repeats RunOnce every interval until ctx is cancelled. Failed passes
// are logged and retried on the next tick.
func (s *CleanupService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infow("cleanup_loop_started", "interval", s.interval, "retention", s.retention)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup_loop_stopped")
			return nil
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}
