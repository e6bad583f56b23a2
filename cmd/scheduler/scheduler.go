// Package scheduler implements the interval ingestion command.
package scheduler

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newswatch/cmd/common"
	"github.com/jonesrussell/newswatch/internal/scheduler"
)

// Command returns the scheduler command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run ingestion on a fixed interval",
		Long: `Run an ingestion pass immediately and then on the configured
interval. A failed run is logged and never prevents the next one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := common.Setup()
			if err != nil {
				return err
			}
			if err = cfg.ValidateIngestion(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := common.Connect(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			ingestion, err := common.BuildIngestion(cfg, db, log)
			if err != nil {
				return err
			}

			sched := scheduler.NewIntervalScheduler(cfg.Scraper.RunIntervalMinutes, ingestion.Run, log)
			return sched.Start(ctx)
		},
	}
}
