package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Environment is the page the dashboard drives.
type Environment interface {
	ShowLoading()
	HideLoading()
	Reload()
	Notify(message string)
	RenderStatistics(rows []Statistic)
	ShowStatisticsPopup()
}

// ProgressReporter is implemented by environments that can display task
// progress while a task run is being polled.
type ProgressReporter interface {
	ReportProgress(status TaskStatus)
}

type DashboardConfig struct {
	API    *APIClient
	Env    Environment
	Poll   PollerConfig
	Logger *zap.Logger
}

// Dashboard applies flow outcomes to the environment. Launch and Refresh
// are mutually exclusive; LoadStatistics is read-only and may run at any
// time.
type Dashboard struct {
	env        Environment
	launcher   *Launcher
	refresher  *Refresher
	statistics *StatisticsLoader
	logger     *zap.Logger

	mu   sync.Mutex
	busy bool
}

func NewDashboard(cfg DashboardConfig) *Dashboard {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pollCfg := cfg.Poll
	if pollCfg.Logger == nil {
		pollCfg.Logger = log
	}
	if reporter, ok := cfg.Env.(ProgressReporter); ok && pollCfg.OnStatus == nil {
		pollCfg.OnStatus = reporter.ReportProgress
	}

	poller := NewPoller(cfg.API, pollCfg)
	return &Dashboard{
		env:        cfg.Env,
		launcher:   NewLauncher(cfg.API, poller, log),
		refresher:  NewRefresher(cfg.API, log),
		statistics: NewStatisticsLoader(cfg.API, log),
		logger:     log,
	}
}

// Launch starts the long task and blocks until its poll cycle ends.
func (d *Dashboard) Launch(ctx context.Context) error {
	if !d.acquire() {
		d.logger.Info("dashboard_launch_blocked")
		return ErrOperationInProgress
	}
	defer d.release()

	d.env.ShowLoading()
	out := d.launcher.Launch(ctx)
	d.apply(out)
	return out.Err
}

func (d *Dashboard) Refresh(ctx context.Context) error {
	if !d.acquire() {
		d.logger.Info("dashboard_refresh_blocked")
		return ErrOperationInProgress
	}
	defer d.release()

	d.env.ShowLoading()
	out := d.refresher.Refresh(ctx)
	d.apply(out)
	return out.Err
}

func (d *Dashboard) LoadStatistics(ctx context.Context) error {
	out := d.statistics.Load(ctx)
	if out.ShowPopup {
		d.env.RenderStatistics(out.Rows)
		d.env.ShowStatisticsPopup()
		return nil
	}
	if out.Alert != "" {
		d.env.Notify(out.Alert)
	}
	return out.Err
}

// isBusy reports whether a launch or refresh is in progress.
func (d *Dashboard) isBusy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *Dashboard) apply(out Outcome) {
	if out.Reload {
		d.env.Reload()
		return
	}
	d.env.HideLoading()
	if out.Alert != "" {
		d.env.Notify(out.Alert)
	}
}

func (d *Dashboard) acquire() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return false
	}
	d.busy = true
	return true
}

func (d *Dashboard) release() {
	d.mu.Lock()
	d.busy = false
	d.mu.Unlock()
}
