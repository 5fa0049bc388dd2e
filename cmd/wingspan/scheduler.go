package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"wingspan/pkg/config"
)

// pipelineScheduler re-runs a pipeline configuration on a cron schedule,
// modeled on the teacher's evidence retention scheduler.
type pipelineScheduler struct {
	cronExpr string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

func newPipelineScheduler(cronExpr string, logger *slog.Logger) *pipelineScheduler {
	return &pipelineScheduler{
		cronExpr: cronExpr,
		cron:     cron.New(),
		logger:   logger.With("component", "scheduler"),
	}
}

// Start begins scheduled pipeline re-execution. Each firing loads cfgFile
// fresh so edits to the pipeline config take effect on the next run.
func (s *pipelineScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronExpr == "" {
		return fmt.Errorf("cron schedule not configured")
	}

	if _, err := cron.ParseStandard(s.cronExpr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cronExpr, err)
	}

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pipeline run: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("pipeline scheduler started", "schedule", s.cronExpr)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *pipelineScheduler) runOnce(ctx context.Context) {
	s.logger.Info("starting scheduled pipeline run")

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		s.logger.Error("scheduled run aborted, config load failed", "error", err)
		return
	}

	run, err := executePipeline(ctx, cfg, s.logger)
	if err != nil {
		s.logger.Error("scheduled pipeline run failed", "error", err)
		return
	}

	s.logger.Info("scheduled pipeline run completed",
		"execution_id", run.executionID,
		"total_matches", run.totalMatches,
	)
}

// Stop stops the scheduler and waits for any in-flight run to finish.
func (s *pipelineScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		doneCtx := s.cron.Stop()
		<-doneCtx.Done()
		s.running = false
		s.logger.Info("pipeline scheduler stopped")
	}
}

func (s *pipelineScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *pipelineScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
