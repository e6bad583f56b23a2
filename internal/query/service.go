// Package query serves the read paths over the article store: paginated
// listing and semantic search with answer generation.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/jonesrussell/newswatch/internal/config"
	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/embedding"
	"github.com/jonesrussell/newswatch/internal/llm"
	"github.com/jonesrussell/newswatch/internal/logger"
)

// Listing and search bounds.
const (
	MinPageSize        = 1
	MaxPageSize        = 100
	DefaultPageSize    = 10
	MaxSearchLimit     = 20
	DefaultSearchLimit = config.DefaultSearchLimit
)

// Validation errors surfaced to the HTTP boundary.
var (
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = fmt.Errorf("page_size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrInvalidLimit    = fmt.Errorf("limit must be between 1 and %d", MaxSearchLimit)
	ErrEmptyPrompt     = errors.New("prompt must not be empty")
)

// ArticleReader is the store surface the query engine depends on.
type ArticleReader interface {
	Count(ctx context.Context, sourceName string) (int, error)
	List(ctx context.Context, page, pageSize int, sourceName string) ([]domain.Article, int, error)
	SemanticSearch(
		ctx context.Context,
		embedding pgvector.Vector,
		limit int,
		publishedAfter, publishedBefore *time.Time,
	) ([]domain.ScoredArticle, error)
}

// Service implements the query engine.
type Service struct {
	reader    ArticleReader
	embedder  embedding.Provider
	generator llm.Generator
	cfg       config.OpenAIConfig
	log       logger.Interface
}

// NewService creates a query service.
func NewService(
	reader ArticleReader,
	embedder embedding.Provider,
	generator llm.Generator,
	cfg config.OpenAIConfig,
	log logger.Interface,
) *Service {
	return &Service{
		reader:    reader,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
		log:       log.WithComponent("query"),
	}
}

// ListResult is one page of articles with the filtered total.
type ListResult struct {
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Articles []domain.Article `json:"articles"`
}

// Count returns the total number of stored articles.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.reader.Count(ctx, "")
}

// List returns one page of articles ordered by publish date descending,
// optionally filtered by source name.
func (s *Service) List(ctx context.Context, page, pageSize int, sourceName string) (*ListResult, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return nil, ErrInvalidPageSize
	}

	articles, total, err := s.reader.List(ctx, page, pageSize, sourceName)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Articles: articles,
	}, nil
}

// SearchRequest describes a semantic search.
type SearchRequest struct {
	Prompt          string
	SystemPrompt    string
	Model           string
	Limit           int
	PublishedAfter  *time.Time
	PublishedBefore *time.Time
}

// Search embeds the prompt once and returns the most similar articles,
// optionally restricted to the publish-date window. A window matching zero
// rows yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]domain.ScoredArticle, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, ErrInvalidLimit
	}

	vectors, err := s.embedder.Embed(ctx, []string{req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to embed prompt: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one prompt embedding, got %d", len(vectors))
	}

	return s.reader.SemanticSearch(
		ctx,
		pgvector.NewVector(vectors[0]),
		limit,
		req.PublishedAfter,
		req.PublishedBefore,
	)
}

// AnswerResult is a generated answer with its deduplicated source list.
type AnswerResult struct {
	Answer  string              `json:"answer"`
	Sources []domain.SourceInfo `json:"sources"`
}

// Answer runs a semantic search and feeds the retrieved articles to the
// generator along with the original prompt.
func (s *Service) Answer(ctx context.Context, req SearchRequest) (*AnswerResult, error) {
	results, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.cfg.ChatModel
	}
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = s.cfg.SystemPrompt
	}

	answer, err := s.generator.Generate(ctx, model, systemPrompt, req.Prompt, BuildContext(results))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &AnswerResult{
		Answer:  answer,
		Sources: DedupeSources(results),
	}, nil
}

// BuildContext concatenates the retrieved articles into the context blob fed
// to the generator.
func BuildContext(results []domain.ScoredArticle) string {
	parts := make([]string, 0, len(results))
	for i := range results {
		parts = append(parts, fmt.Sprintf("Title: %s\nContent: %s", results[i].Title, results[i].Content))
	}
	return strings.Join(parts, "\n\n")
}

// DedupeSources derives the source list keyed by (source_name, source_url),
// preserving first-seen order.
func DedupeSources(results []domain.ScoredArticle) []domain.SourceInfo {
	seen := make(map[domain.SourceInfo]struct{}, len(results))
	sources := make([]domain.SourceInfo, 0, len(results))
	for i := range results {
		info := domain.SourceInfo{Name: results[i].SourceName, URL: results[i].SourceURL}
		if _, ok := seen[info]; ok {
			continue
		}
		seen[info] = struct{}{}
		sources = append(sources, info)
	}
	return sources
}
