// Package scrape implements the one-shot ingestion command.
package scrape

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newswatch/cmd/common"
)

// Command returns the scrape command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingestion pass over all configured sources",
		Long: `Fetch the latest articles from every configured source, deduplicate
them against the store, embed the novel ones and persist them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := common.Setup()
			if err != nil {
				return err
			}
			if err = cfg.ValidateIngestion(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx := cmd.Context()
			db, err := common.Connect(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			ingestion, err := common.BuildIngestion(cfg, db, log)
			if err != nil {
				return err
			}

			start := time.Now()
			persisted, err := ingestion.Run(ctx)
			if err != nil {
				return fmt.Errorf("ingestion run failed: %w", err)
			}

			log.Info("ingestion run complete", "persisted", persisted, "duration", time.Since(start))
			return nil
		},
	}
}
