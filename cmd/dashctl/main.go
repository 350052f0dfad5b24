package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/reportdash/backend/internal/client"
	"github.com/reportdash/backend/internal/config"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const progname = "dashctl"

var Error = log.New(os.Stderr, progname+": error: ", 0)

type sessionKey struct{}

// session is built once in Before and shared by every command.
type session struct {
	cfg    *config.ClientConfig
	logger *zap.Logger
	api    *client.APIClient
	term   *terminal
	dash   *client.Dashboard
}

func sessionFromContext(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func main() {
	app := new(cli.Command)

	app.Name = progname
	app.Usage = "drive the alert report dashboard from a terminal"
	app.HideHelpCommand = true

	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		cfg, err := config.LoadClient(c.String("config"))
		if err != nil {
			return nil, err
		}
		if v := c.String("base-url"); v != "" {
			cfg.BaseURL = v
		}
		if v := c.String("token"); v != "" {
			cfg.AdminToken = v
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		logger := initLogger(cfg.LogPath, c.Bool("verbose"))

		api := client.NewAPIClient(client.APIConfig{
			BaseURL:    cfg.BaseURL,
			AdminToken: cfg.AdminToken,
			Timeout:    cfg.RequestTimeout,
			Logger:     logger,
		})

		term := newTerminal(os.Stdout, os.Stderr, c.Bool("json"))
		dash := client.NewDashboard(client.DashboardConfig{
			API: api,
			Env: term,
			Poll: client.PollerConfig{
				Interval:            cfg.PollInterval,
				MaxTransportRetries: cfg.MaxTransportRetries,
				MaxWait:             cfg.MaxWait,
			},
			Logger: logger,
		})
		term.onReload = func() {
			if err := dash.LoadStatistics(ctx); err != nil {
				logger.Warn("reload_statistics_failed", zap.Error(err))
			}
		}

		return context.WithValue(ctx, sessionKey{}, &session{
			cfg:    cfg,
			logger: logger,
			api:    api,
			term:   term,
			dash:   dash,
		}), nil
	}

	app.After = func(ctx context.Context, c *cli.Command) error {
		if s := sessionFromContext(ctx); s != nil {
			_ = s.logger.Sync()
		}
		return nil
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to the configuration file",
			Sources: cli.EnvVars("DASHCTL_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "dashboard server `URL`",
			Sources: cli.EnvVars("DASHCTL_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "admin `token` sent with task and refresh requests",
			Sources: cli.EnvVars("DASHCTL_ADMIN_TOKEN"),
		},
		&cli.BoolFlag{
			Name:    "json",
			Usage:   "show statistics in the JSON format",
			Aliases: []string{"j"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "log client activity to stderr",
			Aliases: []string{"v"},
		},
	}

	app.Commands = []*cli.Command{
		CommandRunTask,
		CommandRefresh,
		CommandStats,
		CommandMonth,
		CommandToday,
		CommandParam,
		{
			Name:     "version",
			Usage:    "print the version information",
			Category: "Other",
			Action: func(_ context.Context, _ *cli.Command) error {
				fmt.Printf("%s (built %s)\n", progname, runtime.Version())
				return nil
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	exitcode := 1

	switch {
	case errors.Is(err, client.ErrOperationInProgress):
		exitcode = 2
	case errors.Is(err, client.ErrPollTimeout):
		exitcode = 3
	case errors.Is(err, client.ErrPollTransport), errors.Is(err, client.ErrTaskGone):
		exitcode = 4
	case errors.Is(err, client.ErrLaunchRejected), errors.Is(err, client.ErrRefreshRejected):
		exitcode = 5
	}

	Error.Println(err)

	os.Exit(exitcode)
}

// initLogger writes JSON to logPath when set. Console output goes to stderr
// and is limited to warnings unless verbose is set.
func initLogger(logPath string, verbose bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), consoleLevel),
	}

	if logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				zapcore.InfoLevel,
			))
		}
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
