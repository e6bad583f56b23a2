// Package domain provides domain models used across the application.
package domain

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the fixed length of article embedding vectors.
const EmbeddingDimensions = 1536

// Article is the canonical unit of ingested content.
type Article struct {
	// Source-provided stable identifier, unique across the store.
	ID string `db:"id" json:"id"`
	// Source-local path fragment; (slug, source_name) is a uniqueness key.
	Slug string `db:"slug" json:"slug,omitempty"`
	// Title; (title, source_name) is a second uniqueness key.
	Title string `db:"title" json:"title,omitempty"`
	// Raw extracted text.
	Content string `db:"content" json:"content,omitempty"`
	// Normalized text used as embedding input.
	CleanContent string `db:"clean_content" json:"clean_content,omitempty"`
	// Publish timestamp; nil means unknown and sorts last.
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	AuthorName  string     `db:"author_name" json:"author_name,omitempty"`
	Category    string     `db:"category" json:"category,omitempty"`
	SourceName  string     `db:"source_name" json:"source_name"`
	SourceURL   string     `db:"source_url" json:"source_url,omitempty"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
	ArticleURL  string     `db:"article_url" json:"article_url,omitempty"`
	// Tags is never null at the API boundary; empty slice when absent.
	Tags pq.StringArray `db:"tags" json:"tags"`
	// Embedding is present only after the article has been embedded.
	Embedding pgvector.Vector `db:"embedding" json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NormalizeTags ensures tags serialize as an empty list rather than null.
func (a *Article) NormalizeTags() {
	if a.Tags == nil {
		a.Tags = pq.StringArray{}
	}
}

// SourceInfo identifies a configured source site.
type SourceInfo struct {
	Name string `json:"source_name"`
	URL  string `json:"source_url"`
}

// ScoredArticle pairs an article with its similarity score for a query.
type ScoredArticle struct {
	Article
	// Similarity is 1 minus the cosine distance to the query embedding.
	Similarity float64 `db:"similarity" json:"similarity"`
}
