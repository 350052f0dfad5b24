package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reportdash/backend/internal/client"
	"github.com/urfave/cli/v3"
)

var errNoSession = errors.New("client session is not initialized")

var CommandRunTask = &cli.Command{
	Name:     "run-task",
	Usage:    "start the long import task and wait until it finishes",
	HideHelp: true,
	Category: "Tasks",
	Action: func(ctx context.Context, c *cli.Command) error {
		s := sessionFromContext(ctx)
		if s == nil {
			return errNoSession
		}
		return s.dash.Launch(ctx)
	},
}

var CommandRefresh = &cli.Command{
	Name:     "refresh",
	Usage:    "clear the server-side statistics cache",
	HideHelp: true,
	Category: "Tasks",
	Action: func(ctx context.Context, c *cli.Command) error {
		s := sessionFromContext(ctx)
		if s == nil {
			return errNoSession
		}
		return s.dash.Refresh(ctx)
	},
}

var CommandStats = &cli.Command{
	Name:     "stats",
	Usage:    "print the per-location alert statistics",
	HideHelp: true,
	Category: "Reports",
	Action: func(ctx context.Context, c *cli.Command) error {
		s := sessionFromContext(ctx)
		if s == nil {
			return errNoSession
		}
		return s.dash.LoadStatistics(ctx)
	},
}

var CommandMonth = &cli.Command{
	Name:      "month",
	Usage:     "print the report URL shifted by a number of months",
	ArgsUsage: "URL",
	HideHelp:  true,
	Category:  "Navigation",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 1, Usage: "month `offset`, negative to go back"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		raw, err := urlArg(ctx, c)
		if err != nil {
			return err
		}
		next, err := client.NavigateMonth(raw, int(c.Int("offset")), time.Now())
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

var CommandToday = &cli.Command{
	Name:      "today",
	Usage:     "print the report URL for the current month",
	ArgsUsage: "URL",
	HideHelp:  true,
	Category:  "Navigation",
	Action: func(ctx context.Context, c *cli.Command) error {
		raw, err := urlArg(ctx, c)
		if err != nil {
			return err
		}
		next, err := client.SetToday(raw, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

var CommandParam = &cli.Command{
	Name:      "param",
	Usage:     "print the report URL with one query parameter set",
	ArgsUsage: "KEY VALUE [URL]",
	HideHelp:  true,
	Category:  "Navigation",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() < 2 {
			return fmt.Errorf("KEY and VALUE are required")
		}
		key, value := c.Args().Get(0), c.Args().Get(1)

		raw := c.Args().Get(2)
		if raw == "" {
			if s := sessionFromContext(ctx); s != nil {
				raw = s.cfg.BaseURL
			}
		}
		next, err := client.UpdateParam(raw, key, value)
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

// urlArg returns the first argument, or the configured base URL when none
// was given.
func urlArg(ctx context.Context, c *cli.Command) (string, error) {
	if c.Args().Len() > 0 {
		return c.Args().First(), nil
	}
	if s := sessionFromContext(ctx); s != nil {
		return s.cfg.BaseURL, nil
	}
	return "", fmt.Errorf("report URL is required")
}
