package app

import (
	"context"
	"time"

	"github.com/olusolaa/cfn-diff-reporter/internal/config"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/service"
	"github.com/olusolaa/cfn-diff-reporter/internal/metrics"
)

// Application runs one reconciliation of every resolved stack.
type Application struct {
	Engine   ports.ReconciliationEngine
	Logger   ports.Logger
	Config   *config.Config
	Metrics  *metrics.Recorder
	Registry *service.ComponentRegistry
}

// NewApplication creates an application around an already wired engine.
func NewApplication(engine ports.ReconciliationEngine, logger ports.Logger) *Application {
	return &Application{
		Engine: engine,
		Logger: logger,
	}
}

// Run executes the reconciliation and records the run metrics.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.Infof(ctx, "Starting stack diff report...")
	started := time.Now()

	err := a.Engine.Run(ctx)
	a.recordRun(ctx, started, err)

	if err != nil {
		a.Logger.Errorf(ctx, err, "Stack diff report failed")
		return err
	}

	a.Logger.Infof(ctx, "Stack diff report completed successfully")
	return nil
}

func (a *Application) recordRun(ctx context.Context, started time.Time, runErr error) {
	if a.Metrics == nil {
		return
	}
	a.Metrics.ObserveRun(started, runErr)

	if a.Config == nil || a.Config.Metrics.TextfilePath == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
		a.Logger.Warnf(ctx, "Failed to write metrics to %s: %v", a.Config.Metrics.TextfilePath, err)
		return
	}
	a.Logger.Debugf(ctx, "Metrics written to %s", a.Config.Metrics.TextfilePath)
}
