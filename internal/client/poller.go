package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval        = time.Second
	DefaultMaxTransportRetries = 5
	DefaultMaxWait             = 30 * time.Minute
	maxRetryDelay              = 30 * time.Second
)

type statusChecker interface {
	TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
}

type PollerConfig struct {
	Interval time.Duration
	// MaxTransportRetries bounds consecutive failed status requests that
	// are retried before the cycle gives up. 0 selects
	// DefaultMaxTransportRetries; a negative value disables retries.
	MaxTransportRetries int
	// MaxWait caps the wall-clock length of a cycle. 0 selects
	// DefaultMaxWait; a negative value leaves the cycle unbounded.
	MaxWait time.Duration
	Clock   Clock
	Logger  *zap.Logger
	// OnStatus, when set, sees every successful status answer.
	OnStatus func(TaskStatus)
}

// Poller runs one poll cycle: status checks strictly one after another, a
// fixed interval apart, until the server reports the task is no longer
// running.
type Poller struct {
	api        statusChecker
	interval   time.Duration
	maxRetries int
	maxWait    time.Duration
	clock      Clock
	logger     *zap.Logger
	onStatus   func(TaskStatus)
}

func NewPoller(api statusChecker, cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxRetries := cfg.MaxTransportRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxTransportRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	maxWait := cfg.MaxWait
	switch {
	case maxWait == 0:
		maxWait = DefaultMaxWait
	case maxWait < 0:
		maxWait = 0
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		api:        api,
		interval:   interval,
		maxRetries: maxRetries,
		maxWait:    maxWait,
		clock:      clock,
		logger:     log,
		onStatus:   cfg.OnStatus,
	}
}

// Run polls until the task finishes, the cycle fails, or ctx is cancelled.
// A cancelled cycle returns ctx.Err() with neither Reload nor Alert set.
func (p *Poller) Run(ctx context.Context, taskID string) Outcome {
	start := p.clock.Now()
	var backoff retry.Backoff
	checks := 0

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("poll_cancelled", zap.String("task_id", taskID), zap.Int("checks", checks))
			return Outcome{Err: err, TaskID: taskID}
		}

		checks++
		status, err := p.api.TaskStatus(ctx, taskID)

		var delay time.Duration
		switch {
		case err == nil:
			backoff = nil
			p.logger.Debug("poll_status_response",
				zap.String("task_id", taskID),
				zap.Bool("running", status.Running),
				zap.Int("progress", status.Progress),
			)
			if p.onStatus != nil {
				p.onStatus(*status)
			}
			if !status.Running {
				p.logger.Info("poll_task_finished", zap.String("task_id", taskID), zap.Int("checks", checks))
				return reloadOutcome(taskID)
			}
			delay = p.interval

		case ctx.Err() != nil:
			return Outcome{Err: ctx.Err(), TaskID: taskID}

		case errors.Is(err, ErrTaskGone):
			p.logger.Warn("poll_task_gone", zap.String("task_id", taskID), zap.Error(err))
			return Outcome{Alert: MsgTaskGone, Err: err, TaskID: taskID}

		case errors.Is(err, ErrMalformedResponse):
			p.logger.Warn("poll_malformed_response", zap.String("task_id", taskID), zap.Error(err))
			return Outcome{Alert: MsgStatusUnreadable, Err: err, TaskID: taskID}

		default:
			if backoff == nil {
				backoff = p.newBackoff()
			}
			next, stop := backoff.Next()
			if stop {
				p.logger.Warn("poll_transport_exhausted", zap.String("task_id", taskID), zap.Error(err))
				return Outcome{Alert: MsgLostContact, Err: err, TaskID: taskID}
			}
			p.logger.Warn("poll_transport_retry", zap.String("task_id", taskID), zap.Duration("delay", next), zap.Error(err))
			delay = next
		}

		if p.maxWait > 0 && p.clock.Now().Sub(start) >= p.maxWait {
			p.logger.Warn("poll_max_wait_exceeded", zap.String("task_id", taskID), zap.Duration("max_wait", p.maxWait))
			return Outcome{
				Alert:  MsgTaskTooLong,
				Err:    fmt.Errorf("%w after %s", ErrPollTimeout, p.maxWait),
				TaskID: taskID,
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info("poll_cancelled", zap.String("task_id", taskID), zap.Int("checks", checks))
			return Outcome{Err: ctx.Err(), TaskID: taskID}
		case <-p.clock.After(delay):
		}
	}
}

func (p *Poller) newBackoff() retry.Backoff {
	b := retry.NewExponential(p.interval)
	b = retry.WithCappedDuration(maxRetryDelay, b)
	return retry.WithMaxRetries(uint64(p.maxRetries), b)
}
