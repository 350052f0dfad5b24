package db

import (
	"context"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const alertInsertBatchSize = 500

type alertRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepository(db *gorm.DB, log *logger.Logger) ports.AlertRepository {
	return &alertRepository{db: db, log: log}
}

func (r *alertRepository) ReplaceAll(ctx context.Context, rows []domain.AlertSnapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().
			Delete(&domain.AlertSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, alertInsertBatchSize).Error
	})
	if err != nil {
		r.log.Errorw("alert_repo_replace_failed", "rows", len(rows), "error", err)
		return err
	}
	r.log.Infow("alert_repo_replace_ok", "rows", len(rows))
	return nil
}

func (r *alertRepository) GetAll(ctx context.Context) ([]domain.AlertSnapshot, error) {
	var rows []domain.AlertSnapshot
	err := r.db.WithContext(ctx).
		Order("location asc").
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		r.log.Errorw("alert_repo_list_failed", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *alertRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.AlertSnapshot{}).Count(&n).Error; err != nil {
		r.log.Errorw("alert_repo_count_failed", "error", err)
		return 0, err
	}
	return n, nil
}
