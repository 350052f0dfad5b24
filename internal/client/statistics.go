package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type statisticsFetcher interface {
	Statistics(ctx context.Context) ([]Statistic, error)
}

type StatisticsLoader struct {
	api    statisticsFetcher
	logger *zap.Logger
}

func NewStatisticsLoader(api statisticsFetcher, logger *zap.Logger) *StatisticsLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsLoader{api: api, logger: logger}
}

// Load fetches the statistics rows in display order. An empty result still
// reveals the popup.
func (s *StatisticsLoader) Load(ctx context.Context) Outcome {
	rows, err := s.api.Statistics(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Err: ctx.Err()}
		}
		s.logger.Warn("statistics_fetch_failed", zap.Error(err))
		return failOutcome(MsgStatisticsFailed, fmt.Errorf("%w: %w", ErrStatisticsFailed, err))
	}
	s.logger.Debug("statistics_fetch_ok", zap.Int("rows", len(rows)))
	return Outcome{Rows: rows, ShowPopup: true}
}
