// Package common wires the shared dependencies used by the subcommands.
package common

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jonesrussell/newswatch/internal/config"
	"github.com/jonesrussell/newswatch/internal/database"
	"github.com/jonesrussell/newswatch/internal/embedding"
	"github.com/jonesrussell/newswatch/internal/ingest"
	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/pipeline"
	"github.com/jonesrussell/newswatch/internal/scraper"
)

// Setup loads the configuration and builds the root logger.
func Setup() (*config.Config, logger.Interface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, log, nil
}

// Connect opens the database and ensures the articles schema exists.
func Connect(ctx context.Context, cfg *config.Config, log logger.Interface) (*sqlx.DB, error) {
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)
	return db, nil
}

// Ingestion bundles the fetch orchestrator with the persistence engine.
type Ingestion struct {
	Orchestrator *pipeline.Orchestrator
	Committer    *ingest.Committer
}

// BuildIngestion wires the configured source adapters, the orchestrator and
// the committer.
func BuildIngestion(cfg *config.Config, db *sqlx.DB, log logger.Interface) (*Ingestion, error) {
	adapters, err := scraper.Build(cfg.Scraper.Sources, scraper.Deps{
		HTTPClient: &http.Client{Timeout: cfg.Scraper.RequestTimeout},
		Limiter:    scraper.NewLimiter(cfg.Scraper.MaxConcurrent),
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build source adapters: %w", err)
	}

	embedder := embedding.NewOpenAIProvider(
		openai.NewClient(cfg.OpenAI.APIKey),
		cfg.OpenAI.EmbeddingModel,
	)

	return &Ingestion{
		Orchestrator: pipeline.NewOrchestrator(adapters, cfg.Scraper, log),
		Committer:    ingest.NewCommitter(database.NewArticleRepository(db), embedder, log),
	}, nil
}

// Run executes one ingestion run and returns how many articles were
// persisted.
func (i *Ingestion) Run(ctx context.Context) (int, error) {
	batch := i.Orchestrator.RunAll(ctx)
	return i.Committer.Commit(ctx, batch)
}
