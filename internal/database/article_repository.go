package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/jonesrussell/newswatch/internal/domain"
)

// listColumns are the article columns returned by read queries. The embedding
// column is deliberately excluded from listings.
const listColumns = `id, slug, title, content, clean_content, published_at,
	       author_name, category, source_name, source_url, image_url,
	       article_url, tags, created_at, updated_at`

// ArticleRepository handles database operations for articles.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// FilterNovel returns the subset of candidates that match no existing row on
// any equivalence key: id, (slug, source_name) or (title, source_name).
// Matching any key makes a candidate a duplicate; no partial merge happens.
func (r *ArticleRepository) FilterNovel(ctx context.Context, candidates []domain.Article) ([]domain.Article, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM articles
			WHERE id = $1
			   OR (slug = $2 AND source_name = $3)
			   OR (title = $4 AND source_name = $3)
		)
	`

	novel := make([]domain.Article, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]

		var exists bool
		err := r.db.GetContext(ctx, &exists, query, c.ID, c.Slug, c.SourceName, c.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to check novelty for %s: %w", c.ID, err)
		}
		if !exists {
			novel = append(novel, *c)
		}
	}

	return novel, nil
}

// Upsert inserts articles in a single transaction and returns how many rows
// were actually written. On a primary-key conflict (a competing writer
// persisted the same id between the novelty check and this insert) only
// content, clean_content, embedding and updated_at are refreshed, and only
// when the conflicting row re-matches one of the three equivalence keys; a
// conflict that matches no key writes nothing and is not counted. Any error
// rolls back the whole batch.
func (r *ArticleRepository) Upsert(ctx context.Context, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO articles (
			id, slug, title, content, clean_content, published_at,
			author_name, category, source_name, source_url, image_url,
			article_url, tags, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			clean_content = EXCLUDED.clean_content,
			embedding = EXCLUDED.embedding,
			updated_at = CURRENT_TIMESTAMP
		WHERE articles.id = EXCLUDED.id
		   OR (articles.slug = EXCLUDED.slug AND articles.source_name = EXCLUDED.source_name)
		   OR (articles.title = EXCLUDED.title AND articles.source_name = EXCLUDED.source_name)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var persisted int64
	for i := range articles {
		a := &articles[i]
		a.NormalizeTags()

		res, execErr := tx.ExecContext(
			ctx,
			query,
			a.ID,
			a.Slug,
			a.Title,
			a.Content,
			a.CleanContent,
			a.PublishedAt,
			a.AuthorName,
			a.Category,
			a.SourceName,
			a.SourceURL,
			a.ImageURL,
			a.ArticleURL,
			a.Tags,
			a.Embedding,
		)
		if execErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("failed to rollback after insert error: %w (insert: %w)", rbErr, execErr)
			}
			return 0, fmt.Errorf("failed to insert article %s: %w", a.ID, execErr)
		}

		affected, affErr := res.RowsAffected()
		if affErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("failed to rollback after result error: %w (result: %w)", rbErr, affErr)
			}
			return 0, fmt.Errorf("failed to read result for article %s: %w", a.ID, affErr)
		}
		persisted += affected
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return 0, fmt.Errorf("failed to commit articles: %w", commitErr)
	}

	return int(persisted), nil
}

// Count returns the number of stored articles, optionally filtered by source.
func (r *ArticleRepository) Count(ctx context.Context, sourceName string) (int, error) {
	var total int
	var err error

	if sourceName != "" {
		err = r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM articles WHERE source_name = $1`, sourceName)
	} else {
		err = r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM articles`)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}

	return total, nil
}

// List returns one page of articles ordered by publish date descending with
// unknown dates last, plus the total count under the same filter. The count
// and the page are separate queries; totals are eventually consistent under
// concurrent inserts.
func (r *ArticleRepository) List(ctx context.Context, page, pageSize int, sourceName string) ([]domain.Article, int, error) {
	total, err := r.Count(ctx, sourceName)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	var articles []domain.Article
	if sourceName != "" {
		query := `
			SELECT ` + listColumns + `
			FROM articles
			WHERE source_name = $1
			ORDER BY published_at DESC NULLS LAST
			LIMIT $2 OFFSET $3
		`
		err = r.db.SelectContext(ctx, &articles, query, sourceName, pageSize, offset)
	} else {
		query := `
			SELECT ` + listColumns + `
			FROM articles
			ORDER BY published_at DESC NULLS LAST
			LIMIT $1 OFFSET $2
		`
		err = r.db.SelectContext(ctx, &articles, query, pageSize, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}

	if articles == nil {
		articles = []domain.Article{}
	}
	for i := range articles {
		articles[i].NormalizeTags()
	}

	return articles, total, nil
}

// SemanticSearch ranks stored articles by cosine similarity to the query
// embedding, optionally restricted to an inclusive publish-date window.
// An empty result is valid when no rows satisfy the window.
func (r *ArticleRepository) SemanticSearch(
	ctx context.Context,
	embedding pgvector.Vector,
	limit int,
	publishedAfter, publishedBefore *time.Time,
) ([]domain.ScoredArticle, error) {
	query := `
		SELECT ` + listColumns + `,
		       1 - (embedding <=> $1) AS similarity
		FROM articles
	`
	args := []any{embedding}

	where := ""
	if publishedAfter != nil {
		args = append(args, *publishedAfter)
		where = fmt.Sprintf(" WHERE published_at >= $%d", len(args))
	}
	if publishedBefore != nil {
		args = append(args, *publishedBefore)
		if where == "" {
			where = fmt.Sprintf(" WHERE published_at <= $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND published_at <= $%d", len(args))
		}
	}

	args = append(args, limit)
	query += where + fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	var results []domain.ScoredArticle
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("failed to run semantic search: %w", err)
	}

	if results == nil {
		results = []domain.ScoredArticle{}
	}
	for i := range results {
		results[i].NormalizeTags()
	}

	return results, nil
}
