// Package sources implements the source inspection commands.
package sources

import (
	"net/http"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newswatch/cmd/common"
	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/scraper"
)

// Command returns the sources command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect configured news sources",
	}
	cmd.AddCommand(newListCmd())
	return cmd
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured source adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := common.Setup()
			if err != nil {
				return err
			}

			adapters, err := scraper.Build(cfg.Scraper.Sources, scraper.Deps{
				HTTPClient: &http.Client{Timeout: cfg.Scraper.RequestTimeout},
				Limiter:    scraper.NewLimiter(cfg.Scraper.MaxConcurrent),
				Logger:     logger.NewNoOp(),
			})
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Adapter", "Source", "URL"})
			for _, adapter := range adapters {
				info := adapter.Source()
				t.AppendRow(table.Row{adapter.Name(), info.Name, info.URL})
			}
			t.Render()

			return nil
		},
	}
}
