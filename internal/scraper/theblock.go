package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const theBlockListingURL = "https://www.theblock.co/api/pagesPlus/data/latest-crypto-news"

// TheBlock fetches news from theblock.co's page-data API, which carries full
// article bodies inline as HTML.
type TheBlock struct {
	deps Deps
	log  logger.Interface
}

// NewTheBlock creates a TheBlock adapter.
func NewTheBlock(deps Deps) *TheBlock {
	return &TheBlock{deps: deps, log: deps.Logger.WithComponent("scraper.theblock")}
}

// Name returns the adapter name.
func (t *TheBlock) Name() string { return "theblock" }

// Source returns the source identity attached to every article.
func (t *TheBlock) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "The Block", URL: "https://www.theblock.co"}
}

type theBlockListing struct {
	Posts []theBlockPost `json:"posts"`
}

type theBlockPost struct {
	ID        json.Number `json:"id"`
	Slug      string      `json:"slug"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Published string      `json:"published"`
	Author    struct {
		Name string `json:"name"`
	} `json:"author"`
	Category struct {
		Name string `json:"name"`
	} `json:"primaryCategory"`
	Thumbnail string `json:"thumbnail"`
}

// FetchPage fetches one listing page. The listing already carries bodies, so
// no per-article requests are needed. Malformed entries are skipped.
func (t *TheBlock) FetchPage(ctx context.Context, page, _ int) ([]domain.Article, error) {
	var listing theBlockListing
	url := fmt.Sprintf("%s/%d", theBlockListingURL, page)
	if err := getJSON(ctx, t.deps, url, nil, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	source := t.Source()
	articles := make([]domain.Article, 0, len(listing.Posts))
	for _, post := range listing.Posts {
		id := post.ID.String()
		if id == "" {
			t.log.Warn("skipping post with missing id", "title", post.Title)
			continue
		}

		articles = append(articles, domain.Article{
			ID:          id,
			Slug:        post.Slug,
			Title:       post.Title,
			Content:     extractParagraphs(post.Body),
			PublishedAt: parsePublishTime(post.Published),
			AuthorName:  post.Author.Name,
			Category:    post.Category.Name,
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ImageURL:    post.Thumbnail,
			ArticleURL:  fmt.Sprintf("%s/post/%s/%s", source.URL, id, post.Slug),
		})
	}

	return articles, nil
}
