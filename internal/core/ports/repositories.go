package ports

import (
	"context"
	"time"

	"github.com/reportdash/backend/internal/domain"
)

type AlertRepository interface {
	// ReplaceAll swaps the stored snapshot set for rows in one transaction.
	ReplaceAll(ctx context.Context, rows []domain.AlertSnapshot) error
	GetAll(ctx context.Context) ([]domain.AlertSnapshot, error)
	Count(ctx context.Context) (int64, error)
}

type TimelineRepository interface {
	Create(ctx context.Context, event *domain.TimelineEvent) error
	GetByResource(ctx context.Context, resourceType string, resourceID string) ([]domain.TimelineEvent, error)
	GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error)
	CleanupOld(ctx context.Context, olderThan time.Duration) error
}

type SystemSettingRepository interface {
	Get(ctx context.Context, key string) (*domain.SystemSetting, error)
	Set(ctx context.Context, setting *domain.SystemSetting) error
}
