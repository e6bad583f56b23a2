// Package ingest commits candidate batches to the store: novelty check,
// embedding of the novel subset, and an atomic upsert.
package ingest

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/embedding"
	"github.com/jonesrussell/newswatch/internal/logger"
)

// ArticleStore is the persistence surface the committer depends on.
type ArticleStore interface {
	FilterNovel(ctx context.Context, candidates []domain.Article) ([]domain.Article, error)
	Upsert(ctx context.Context, articles []domain.Article) (int, error)
}

// Committer implements the deduplication and persistence engine.
type Committer struct {
	store    ArticleStore
	embedder embedding.Provider
	log      logger.Interface
}

// NewCommitter creates a committer over the given store and embedder.
func NewCommitter(store ArticleStore, embedder embedding.Provider, log logger.Interface) *Committer {
	return &Committer{
		store:    store,
		embedder: embedder,
		log:      log.WithComponent("committer"),
	}
}

// Commit persists the novel subset of candidates and returns how many rows
// were written. Novelty is binary: a candidate matching any existing row on
// id, (slug, source) or (title, source) is excluded with no partial merge.
// Embeddings are computed only for the novel subset; an embedding or
// persistence error fails the whole batch so rows and vectors stay aligned.
// A candidate with no clean content embeds its title instead; one with
// neither is dropped.
func (c *Committer) Commit(ctx context.Context, candidates []domain.Article) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	unique := collapseBatch(candidates)
	if dropped := len(candidates) - len(unique); dropped > 0 {
		c.log.Info("collapsed in-batch duplicates", "dropped", dropped)
	}

	novel, err := c.store.FilterNovel(ctx, unique)
	if err != nil {
		return 0, fmt.Errorf("novelty check failed: %w", err)
	}
	c.log.Info("novelty check complete", "candidates", len(unique), "novel", len(novel))
	if len(novel) == 0 {
		return 0, nil
	}

	// A failed body fetch leaves no clean content, and the embeddings API
	// rejects empty inputs; the title stands in so one dead page cannot fail
	// the whole batch. Articles with neither are dropped.
	embeddable := make([]domain.Article, 0, len(novel))
	texts := make([]string, 0, len(novel))
	for i := range novel {
		text := novel[i].CleanContent
		if text == "" {
			text = novel[i].Title
		}
		if text == "" {
			c.log.Warn("dropping article with no embeddable text", "id", novel[i].ID, "source", novel[i].SourceName)
			continue
		}
		embeddable = append(embeddable, novel[i])
		texts = append(texts, text)
	}
	if len(embeddable) == 0 {
		return 0, nil
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(embeddable) {
		return 0, fmt.Errorf("embedding misalignment: %d articles, %d vectors", len(embeddable), len(vectors))
	}
	for i := range embeddable {
		embeddable[i].Embedding = pgvector.NewVector(vectors[i])
	}

	count, err := c.store.Upsert(ctx, embeddable)
	if err != nil {
		return 0, fmt.Errorf("persistence failed: %w", err)
	}

	return count, nil
}

// collapseBatch removes in-batch duplicates under the same three-way
// equivalence used against the store; the first occurrence wins. Empty slugs
// and titles do not participate in their composite keys.
func collapseBatch(candidates []domain.Article) []domain.Article {
	seenID := make(map[string]struct{}, len(candidates))
	seenSlug := make(map[[2]string]struct{}, len(candidates))
	seenTitle := make(map[[2]string]struct{}, len(candidates))

	unique := make([]domain.Article, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]

		if _, ok := seenID[c.ID]; ok {
			continue
		}
		slugKey := [2]string{c.Slug, c.SourceName}
		if c.Slug != "" {
			if _, ok := seenSlug[slugKey]; ok {
				continue
			}
		}
		titleKey := [2]string{c.Title, c.SourceName}
		if c.Title != "" {
			if _, ok := seenTitle[titleKey]; ok {
				continue
			}
		}

		seenID[c.ID] = struct{}{}
		if c.Slug != "" {
			seenSlug[slugKey] = struct{}{}
		}
		if c.Title != "" {
			seenTitle[titleKey] = struct{}{}
		}
		unique = append(unique, c)
	}

	return unique
}
