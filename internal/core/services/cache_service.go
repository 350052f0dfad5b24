package services

import (
	"context"
	"fmt"
	"time"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
)

const (
	SettingKeyLastRefresh = "cache.last_refresh"
	settingCategoryCache  = "cache"
)

// CacheService drops cached report data so the next page load recomputes it.
type CacheService struct {
	cache    *Cache
	settings ports.SystemSettingRepository
	timeline ports.TimelineRepository
	logger   *logger.Logger
	now      func() time.Time
}

type CacheServiceConfig struct {
	Cache    *Cache
	Settings ports.SystemSettingRepository
	Timeline ports.TimelineRepository
	Logger   *logger.Logger
}

func NewCacheService(cfg CacheServiceConfig) *CacheService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &CacheService{
		cache:    cfg.Cache,
		settings: cfg.Settings,
		timeline: cfg.Timeline,
		logger:   log,
		now:      time.Now,
	}
}

func (s *CacheService) Refresh(ctx context.Context) error {
	dropped := s.cache.Clear()
	refreshedAt := s.now().UTC()

	if s.settings != nil {
		err := s.settings.Set(ctx, &domain.SystemSetting{
			Key:      SettingKeyLastRefresh,
			Value:    refreshedAt.Format(time.RFC3339),
			Type:     "time",
			Category: settingCategoryCache,
		})
		if err != nil {
			s.logger.Errorw("cache_refresh_setting_failed", "error", err)
			return fmt.Errorf("%w: %v", ErrCacheRefreshFailed, err)
		}
	}

	if s.timeline != nil {
		event := &domain.TimelineEvent{
			Type:    domain.EventTypeCacheRefresh,
			Status:  domain.EventStatusSuccess,
			Message: "cache cleared",
			Meta:    domain.JSONB{"entries": dropped},
		}
		if err := s.timeline.Create(ctx, event); err != nil {
			s.logger.Warnw("cache_refresh_timeline_failed", "error", err)
		}
	}

	s.logger.Infow("cache_refresh_ok", "entries", dropped, "at", refreshedAt)
	return nil
}

// LastRefresh returns the time of the last successful refresh, if any.
func (s *CacheService) LastRefresh(ctx context.Context) (time.Time, bool, error) {
	if s.settings == nil {
		return time.Time{}, false, nil
	}
	setting, err := s.settings.Get(ctx, SettingKeyLastRefresh)
	if err != nil {
		return time.Time{}, false, err
	}
	if setting == nil {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, setting.Value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s setting: %w", SettingKeyLastRefresh, err)
	}
	return t, true, nil
}
