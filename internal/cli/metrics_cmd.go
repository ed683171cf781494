package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeMetricsCmd(app *App) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Expose Prometheus metrics and refresh the behind-schedule gauges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Metrics == nil {
				return fmt.Errorf("metrics are not configured")
			}
			if addr == "" {
				addr = app.Config.Metrics.Addr
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info("serving metrics", zap.String("addr", addr), zap.Duration("interval", interval))
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return app.Metrics.Serve(ctx, addr)
			})
			g.Go(func() error {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					refreshBehind(ctx, app)
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
					}
				}
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "How often to re-check every course")

	return cmd
}

// refreshBehind runs the behind-schedule check for every course so the
// observers publish fresh values. Failures are logged and skipped.
func refreshBehind(ctx context.Context, app *App) {
	courses, err := app.Courses.List(ctx)
	if err != nil {
		app.Logger.Warn("listing courses", zap.Error(err))
		return
	}
	today := app.now()
	for _, c := range courses {
		if ctx.Err() != nil {
			return
		}
		if _, err := app.Plans.CheckBehindSchedule(ctx, c.ID, today); err != nil {
			app.Logger.Warn("behind-schedule check failed",
				zap.String("course_id", c.ID), zap.Error(err))
		}
	}
}
