// Package httpd implements the HTTP API server command.
package httpd

import (
	"fmt"
	"os/signal"
	"syscall"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newswatch/cmd/common"
	"github.com/jonesrussell/newswatch/internal/api"
	"github.com/jonesrussell/newswatch/internal/database"
	"github.com/jonesrussell/newswatch/internal/embedding"
	"github.com/jonesrussell/newswatch/internal/llm"
	"github.com/jonesrussell/newswatch/internal/query"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the article listing and semantic search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := common.Setup()
			if err != nil {
				return err
			}
			if err = cfg.ValidateServer(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := common.Connect(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			client := openai.NewClient(cfg.OpenAI.APIKey)
			service := query.NewService(
				database.NewArticleRepository(db),
				embedding.NewOpenAIProvider(client, cfg.OpenAI.EmbeddingModel),
				llm.NewOpenAIGenerator(client),
				cfg.OpenAI,
				log,
			)

			server := api.NewServer(cfg.Server, api.NewArticlesHandler(service, log), log)
			return server.Start(ctx)
		},
	}
}
