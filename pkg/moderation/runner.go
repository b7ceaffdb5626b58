package moderation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type RunnerConfig struct {
	PollInterval    time.Duration
	ErrorBackoff    time.Duration
	CleanupInterval time.Duration
}

// Runner drives the pipeline on a fixed polling schedule. Cycles are
// sequential; a running cycle always finishes before shutdown completes.
type Runner struct {
	pipeline *Pipeline
	config   RunnerConfig
	logger   *logrus.Logger
}

func NewRunner(pipeline *Pipeline, config RunnerConfig, logger *logrus.Logger) *Runner {
	return &Runner{
		pipeline: pipeline,
		config:   config,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.pollLoop(ctx) })
	g.Go(func() error { return r.cleanupLoop(ctx) })
	return g.Wait()
}

func (r *Runner) pollLoop(ctx context.Context) error {
	for {
		delay := r.config.PollInterval
		if err := r.pipeline.RunCycle(ctx); err != nil {
			r.logger.WithError(err).Error("moderation cycle failed")
			delay = r.config.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (r *Runner) cleanupLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.logger.Info("running periodic state cleanup")
			r.pipeline.Cleanup()
		}
	}
}
