package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newswatch/internal/domain"
)

// EnsureSchema creates the pgvector extension and the articles table if they
// do not exist. The table carries the three equivalence keys used for
// deduplication: the primary key on id plus unique constraints on
// (slug, source_name) and (title, source_name).
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS articles (
			id VARCHAR(255) PRIMARY KEY,
			slug VARCHAR(255),
			title TEXT,
			content TEXT,
			clean_content TEXT,
			published_at TIMESTAMP WITH TIME ZONE,
			author_name VARCHAR(255),
			category VARCHAR(255),
			source_name VARCHAR(255) NOT NULL,
			source_url VARCHAR(255),
			image_url TEXT,
			article_url TEXT,
			tags TEXT[] NOT NULL DEFAULT '{}',
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT articles_unique_slug_source UNIQUE (slug, source_name),
			CONSTRAINT articles_unique_title_source UNIQUE (title, source_name)
		)
	`, domain.EmbeddingDimensions)

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}

	return nil
}
