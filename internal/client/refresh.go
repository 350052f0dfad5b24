package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type cacheRefresher interface {
	RefreshCache(ctx context.Context) error
}

type Refresher struct {
	api    cacheRefresher
	logger *zap.Logger
}

func NewRefresher(api cacheRefresher, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{api: api, logger: logger}
}

// Refresh asks the server to drop its caches; success reloads the page.
func (r *Refresher) Refresh(ctx context.Context) Outcome {
	if err := r.api.RefreshCache(ctx); err != nil {
		if ctx.Err() != nil {
			return Outcome{Err: ctx.Err()}
		}
		r.logger.Warn("cache_refresh_rejected", zap.Error(err))
		return failOutcome(MsgRefreshFailed, fmt.Errorf("%w: %w", ErrRefreshRejected, err))
	}
	r.logger.Info("cache_refresh_ok")
	return reloadOutcome("")
}
