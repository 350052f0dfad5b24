package ports

import (
	"context"
	"io"

	"github.com/reportdash/backend/internal/domain"
)

// AlertSource hands out the historical alert export as CSV.
type AlertSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Describe() string
}

type TaskService interface {
	GetTask(id string) (*domain.Task, error)
	LatestTask() (*domain.Task, error)
}

type ImportService interface {
	StartImport(ctx context.Context) (*domain.Task, error)
}

type StatisticsService interface {
	Latest(ctx context.Context) ([]domain.AlertStatistic, error)
}

type CacheService interface {
	Refresh(ctx context.Context) error
}
