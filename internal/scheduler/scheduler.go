// Package scheduler runs ingestion on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/newswatch/internal/logger"
)

// RunFunc executes one ingestion run and returns how many articles were
// persisted.
type RunFunc func(ctx context.Context) (int, error)

// IntervalScheduler triggers an ingestion run immediately and then on a
// fixed interval. A failed or panicking run is logged and never prevents the
// next scheduled run.
type IntervalScheduler struct {
	cron     *cron.Cron
	interval time.Duration
	run      RunFunc
	log      logger.Interface
}

// NewIntervalScheduler creates a scheduler running every intervalMinutes.
func NewIntervalScheduler(intervalMinutes int, run RunFunc, log logger.Interface) *IntervalScheduler {
	return &IntervalScheduler{
		cron:     cron.New(),
		interval: time.Duration(intervalMinutes) * time.Minute,
		run:      run,
		log:      log.WithComponent("scheduler"),
	}
}

// Start blocks until the context is cancelled.
func (s *IntervalScheduler) Start(ctx context.Context) error {
	s.log.Info("scheduler starting", "interval", s.interval)

	// Run immediately on startup; scheduled runs follow.
	s.runOnce(ctx)

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule runs: %w", err)
	}

	s.cron.Start()
	s.log.Info("next run scheduled", "at", s.cron.Entry(entryID).Next)

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("timed out waiting for running job to finish")
	}

	s.log.Info("scheduler stopped")
	return nil
}

// runOnce executes one run, isolating failures and panics from the schedule.
func (s *IntervalScheduler) runOnce(ctx context.Context) {
	runLog := s.log.With("run_id", uuid.NewString())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			runLog.Error("run panicked", "panic", r)
		}
		runLog.Info("next run", "at", start.Add(s.interval))
	}()

	runLog.Info("run starting")
	persisted, err := s.run(ctx)
	if err != nil {
		runLog.Error("run failed", "error", err, "duration", time.Since(start))
		return
	}
	runLog.Info("run complete", "persisted", persisted, "duration", time.Since(start))
}
