package services

import (
	"context"
	"fmt"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/infrastructure/source"
)

// ImportService runs the alert import as a background task: fetch the
// export, parse it, replace the stored snapshots and drop cached statistics.
type ImportService struct {
	tasks      *TaskService
	source     ports.AlertSource
	repo       ports.AlertRepository
	statistics *StatisticsService
	logger     *logger.Logger
}

type ImportServiceConfig struct {
	Tasks      *TaskService
	Source     ports.AlertSource
	Repository ports.AlertRepository
	Statistics *StatisticsService
	Logger     *logger.Logger
}

func NewImportService(cfg ImportServiceConfig) *ImportService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &ImportService{
		tasks:      cfg.Tasks,
		source:     cfg.Source,
		repo:       cfg.Repository,
		statistics: cfg.Statistics,
		logger:     log,
	}
}

func (s *ImportService) StartImport(ctx context.Context) (*domain.Task, error) {
	return s.tasks.Start(ctx, domain.TaskTypeAlertImport, s.run)
}

func (s *ImportService) run(ctx context.Context, report ProgressFunc) error {
	taskID := domain.TaskIDFrom(ctx)

	report(10, "Fetching export from "+s.source.Describe())
	s.logger.Infow("import_fetch_start", "task_id", taskID, "source", s.source.Describe())

	rc, err := s.source.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportSourceFailed, err)
	}
	defer rc.Close()

	report(40, "Parsing export")
	rows, err := source.ParseAlertCSV(rc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportParseFailed, err)
	}
	s.logger.Infow("import_parsed", "task_id", taskID, "rows", len(rows))

	if err := ctx.Err(); err != nil {
		return err
	}

	report(70, fmt.Sprintf("Storing %d snapshots", len(rows)))
	if err := s.repo.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("%w: %v", ErrImportStoreFailed, err)
	}

	report(90, "Invalidating cached statistics")
	if s.statistics != nil {
		dropped := s.statistics.Invalidate()
		s.logger.Infow("import_cache_invalidated", "task_id", taskID, "entries", dropped)
	}

	return nil
}
