package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/domain"
	"github.com/reportdash/backend/internal/infrastructure/logger"
)

const (
	statisticsCachePrefix = "statistics:"
	statisticsLatestKey   = statisticsCachePrefix + "latest"
	unknownCustomer       = "Unknown"
)

type StatisticsService struct {
	repo   ports.AlertRepository
	cache  *Cache
	ttl    time.Duration
	logger *logger.Logger
}

type StatisticsServiceConfig struct {
	Repository ports.AlertRepository
	Cache      *Cache
	TTL        time.Duration
	Logger     *logger.Logger
}

func NewStatisticsService(cfg StatisticsServiceConfig) *StatisticsService {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &StatisticsService{
		repo:   cfg.Repository,
		cache:  cache,
		ttl:    cfg.TTL,
		logger: log,
	}
}

// Latest returns one row per location, newest snapshot first.
func (s *StatisticsService) Latest(ctx context.Context) ([]domain.AlertStatistic, error) {
	if v, ok := s.cache.Get(statisticsLatestKey); ok {
		if stats, ok := v.([]domain.AlertStatistic); ok {
			s.logger.Debugw("statistics_cache_hit", "rows", len(stats))
			return append([]domain.AlertStatistic(nil), stats...), nil
		}
	}

	gen := s.cache.Generation()
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Errorw("statistics_load_failed", "error", err)
		return nil, fmt.Errorf("failed to load alert snapshots: %w", err)
	}

	stats := BuildStatistics(rows)
	if !s.cache.SetIfGeneration(statisticsLatestKey, stats, s.ttl, gen) {
		s.logger.Infow("statistics_cache_skipped_stale", "snapshots", len(rows))
	}
	s.logger.Infow("statistics_computed", "snapshots", len(rows), "rows", len(stats))

	return append([]domain.AlertStatistic(nil), stats...), nil
}

// Invalidate drops every cached statistics result.
func (s *StatisticsService) Invalidate() int {
	return s.cache.InvalidatePrefix(statisticsCachePrefix)
}

// BuildStatistics reduces the snapshot history to the latest row of every
// location. The row colour reflects the change of the critical count against
// the previous snapshot of the same location.
func BuildStatistics(rows []domain.AlertSnapshot) []domain.AlertStatistic {
	if len(rows) == 0 {
		return []domain.AlertStatistic{}
	}

	history := append([]domain.AlertSnapshot(nil), rows...)
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].Location != history[j].Location {
			return history[i].Location < history[j].Location
		}
		return dateBefore(history[i].Date, history[j].Date)
	})

	type entry struct {
		row     domain.AlertSnapshot
		diff    int
		hasDiff bool
	}

	entries := make([]entry, len(history))
	for i, row := range history {
		entries[i] = entry{row: row}
		if i > 0 && history[i-1].Location == row.Location {
			entries[i].diff = row.Critical - history[i-1].Critical
			entries[i].hasDiff = true
		}
	}

	// Newest first; undated rows sink to the end.
	sort.SliceStable(entries, func(i, j int) bool {
		return dateAfter(entries[i].row.Date, entries[j].row.Date)
	})

	seen := make(map[string]bool)
	stats := make([]domain.AlertStatistic, 0)
	for _, e := range entries {
		if seen[e.row.Location] {
			continue
		}
		seen[e.row.Location] = true

		color := ""
		if e.hasDiff {
			switch {
			case e.diff > 0:
				color = domain.ColorCriticalRising
			case e.diff < 0:
				color = domain.ColorCriticalFalling
			}
		}

		date := domain.MissingDate
		if e.row.Date != nil {
			date = e.row.Date.Format("2006-01-02")
		}

		customer := e.row.Customer
		if customer == "" {
			customer = unknownCustomer
		}

		stats = append(stats, domain.AlertStatistic{
			Customer:  customer,
			Date:      date,
			Location:  e.row.Location,
			Critical:  e.row.Critical,
			Immediate: e.row.Immediate,
			Warning:   e.row.Warning,
			Total:     e.row.Total,
			Color:     color,
		})
	}

	return stats
}

// dateBefore orders dates ascending with nil dates last.
func dateBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// dateAfter orders dates descending with nil dates last.
func dateAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
