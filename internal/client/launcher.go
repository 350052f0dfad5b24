package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type taskStarter interface {
	StartTask(ctx context.Context) (*StartResponse, error)
}

// Launcher starts the server-side task and hands over to the poller.
type Launcher struct {
	api    taskStarter
	poller *Poller
	logger *zap.Logger
}

func NewLauncher(api taskStarter, poller *Poller, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{api: api, poller: poller, logger: logger}
}

// Launch blocks for the whole task run. A rejected start never polls.
func (l *Launcher) Launch(ctx context.Context) Outcome {
	resp, err := l.api.StartTask(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Err: ctx.Err()}
		}
		l.logger.Warn("task_launch_rejected", zap.Error(err))
		return failOutcome(MsgTaskFailed, fmt.Errorf("%w: %w", ErrLaunchRejected, err))
	}

	l.logger.Info("task_launch_ok", zap.String("task_id", resp.TaskID))
	return l.poller.Run(ctx, resp.TaskID)
}
