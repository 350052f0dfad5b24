package db

import (
	"context"
	"time"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const timelineResourceLimit = 50

type timelineRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineRepository(db *gorm.DB, log *logger.Logger) ports.TimelineRepository {
	return &timelineRepository{
		db:  db,
		log: log,
	}
}

func (r *timelineRepository) Create(ctx context.Context, event *domain.TimelineEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.log.Errorw("timeline_repo_create_failed", "type", event.Type, "status", event.Status, "error", err)
		return err
	}
	r.log.Debugw("timeline_repo_create_ok", "id", event.ID, "type", event.Type, "status", event.Status)
	return nil
}

func (r *timelineRepository) GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_list_failed", "error", err)
		return nil, err
	}
	return events, nil
}

func (r *timelineRepository) GetByResource(ctx context.Context, resourceType string, resourceID string) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at desc").
		Order("id desc").
		Limit(timelineResourceLimit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_get_by_resource_failed", "resource_type", resourceType, "resource_id", resourceID, "error", err)
		return nil, err
	}
	return events, nil
}

// CleanupOld removes events older than the specified duration
func (r *timelineRepository) CleanupOld(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.TimelineEvent{})
	if res.Error != nil {
		r.log.Errorw("timeline_repo_cleanup_failed", "error", res.Error)
		return res.Error
	}
	r.log.Infow("timeline_repo_cleanup_ok", "removed", res.RowsAffected)
	return nil
}
