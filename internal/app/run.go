package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/radgo/internal/scheduler"
)

// Serve loads the requests in paths and runs them on the configured
// interval until ctx is cancelled. Outcomes land in the app's store and are
// served over HTTP when a healthcheck port is set.
func (a *App) Serve(ctx context.Context, paths ...string) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Serve method started.")

	reqs, err := a.Load(ctx, paths...)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		a.logger.Warn("No requests found, nothing to serve.")
		return nil
	}

	sched, err := scheduler.New(a.pipeline, a.store, reqs, scheduler.Config{
		Interval: a.settings.Interval,
		Workers:  a.settings.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if a.config.HealthcheckPort > 0 {
		stop := a.startServer(ctx, a.config.HealthcheckPort)
		defer stop()
	} else {
		a.logger.Warn("Health check server not started: disabled")
	}

	a.logger.Info("🚀 Serving requests...", "requests", len(reqs), "interval", a.settings.Interval, "workers", a.settings.Workers)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	a.logger.Info("🏁 Serve finished.")
	return nil
}
