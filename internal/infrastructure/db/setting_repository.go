package db

import (
	"context"
	"errors"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type systemSettingRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSystemSettingRepository(db *gorm.DB, log *logger.Logger) ports.SystemSettingRepository {
	return &systemSettingRepository{db: db, log: log}
}

// Get returns nil, nil when the key is not set.
func (r *systemSettingRepository) Get(ctx context.Context, key string) (*domain.SystemSetting, error) {
	var setting domain.SystemSetting
	if err := r.db.WithContext(ctx).Where(&domain.SystemSetting{Key: key}).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorw("setting_repo_get_failed", "key", key, "error", err)
		return nil, err
	}
	return &setting, nil
}

func (r *systemSettingRepository) Set(ctx context.Context, setting *domain.SystemSetting) error {
	var existing domain.SystemSetting
	err := r.db.WithContext(ctx).Unscoped().Where(&domain.SystemSetting{Key: setting.Key}).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.WithContext(ctx).Create(setting).Error; err != nil {
				r.log.Errorw("setting_repo_create_failed", "key", setting.Key, "error", err)
				return err
			}
			r.log.Infow("setting_repo_create_ok", "key", setting.Key)
			return nil
		}
		r.log.Errorw("setting_repo_get_for_set_failed", "key", setting.Key, "error", err)
		return err
	}
	existing.Value = setting.Value
	existing.Type = setting.Type
	existing.Category = setting.Category
	existing.DeletedAt = gorm.DeletedAt{}
	if err := r.db.WithContext(ctx).Unscoped().Save(&existing).Error; err != nil {
		r.log.Errorw("setting_repo_update_failed", "key", setting.Key, "error", err)
		return err
	}
	r.log.Infow("setting_repo_update_ok", "key", setting.Key)
	return nil
}
