package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const (
	cointelegraphGraphQLURL = "https://conpletus.cointelegraph.com/v1/"

	cointelegraphQuery = `query MainPagePostsQuery($offset: Int!, $length: Int!) {
	  posts(order: "postPublishedTime", offset: $offset, length: $length) {
	    data {
	      id
	      slug
	      postTranslate {
	        title
	        published
	        avatar
	        author { authorTranslates { name } }
	      }
	      postBadge { postBadgeTranslates { title } }
	      category { categoryTranslates { title } }
	    }
	  }
	}`
)

// Cointelegraph fetches listings from cointelegraph.com's GraphQL API and
// article bodies from the rendered news pages.
type Cointelegraph struct {
	deps Deps
	log  logger.Interface
}

// NewCointelegraph creates a Cointelegraph adapter.
func NewCointelegraph(deps Deps) *Cointelegraph {
	return &Cointelegraph{deps: deps, log: deps.Logger.WithComponent("scraper.cointelegraph")}
}

// Name returns the adapter name.
func (c *Cointelegraph) Name() string { return "cointelegraph" }

// Source returns the source identity attached to every article.
func (c *Cointelegraph) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Cointelegraph", URL: "https://cointelegraph.com"}
}

type cointelegraphListing struct {
	Data struct {
		Posts struct {
			Data []cointelegraphPost `json:"data"`
		} `json:"posts"`
	} `json:"data"`
}

type cointelegraphPost struct {
	ID            json.Number `json:"id"`
	Slug          string      `json:"slug"`
	PostTranslate struct {
		Title     string `json:"title"`
		Published string `json:"published"`
		Avatar    string `json:"avatar"`
		Author    struct {
			AuthorTranslates []struct {
				Name string `json:"name"`
			} `json:"authorTranslates"`
		} `json:"author"`
	} `json:"postTranslate"`
	PostBadge struct {
		PostBadgeTranslates []struct {
			Title string `json:"title"`
		} `json:"postBadgeTranslates"`
	} `json:"postBadge"`
	Category struct {
		CategoryTranslates []struct {
			Title string `json:"title"`
		} `json:"categoryTranslates"`
	} `json:"category"`
}

// FetchPage fetches one listing page and resolves each entry's body from the
// article page. Items whose body fetch fails keep empty content.
func (c *Cointelegraph) FetchPage(ctx context.Context, page, pageSize int) ([]domain.Article, error) {
	payload, err := json.Marshal(map[string]any{
		"operationName": "MainPagePostsQuery",
		"query":         cointelegraphQuery,
		"variables": map[string]any{
			"offset": (page - 1) * pageSize,
			"length": pageSize,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	headers := http.Header{}
	headers.Set("Accept", "application/graphql-response+json, application/json")
	headers.Set("Origin", "https://cointelegraph.com")

	var listing cointelegraphListing
	if err = postForJSON(ctx, c.deps, cointelegraphGraphQLURL, "application/json", payload, headers, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	source := c.Source()
	articles := make([]domain.Article, 0, len(listing.Data.Posts.Data))
	for _, post := range listing.Data.Posts.Data {
		id := post.ID.String()
		if id == "" || post.Slug == "" {
			c.log.Warn("skipping post with missing id or slug", "title", post.PostTranslate.Title)
			continue
		}

		article := domain.Article{
			ID:          id,
			Slug:        post.Slug,
			Title:       post.PostTranslate.Title,
			Content:     c.fetchBody(ctx, post.Slug),
			PublishedAt: parsePublishTime(post.PostTranslate.Published),
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ImageURL:    post.PostTranslate.Avatar,
			ArticleURL:  source.URL + "/news/" + post.Slug,
		}
		if translates := post.PostTranslate.Author.AuthorTranslates; len(translates) > 0 {
			article.AuthorName = translates[0].Name
		}
		if translates := post.Category.CategoryTranslates; len(translates) > 0 {
			article.Category = translates[0].Title
		}
		for _, badge := range post.PostBadge.PostBadgeTranslates {
			if badge.Title != "" {
				article.Tags = append(article.Tags, badge.Title)
			}
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// fetchBody returns the cleaned body text from the article page, or empty on
// failure.
func (c *Cointelegraph) fetchBody(ctx context.Context, slug string) string {
	slug = strings.TrimPrefix(slug, "/")
	articleURL := c.Source().URL + "/news/" + slug

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, http.NoBody)
	if err != nil {
		c.log.Warn("failed to create body request", "slug", slug, "error", err)
		return ""
	}

	body, err := doRequest(ctx, c.deps, req)
	if err != nil {
		c.log.Warn("failed to fetch article body", "slug", slug, "error", err)
		return ""
	}

	content := extractParagraphs(string(body))
	if content == "" {
		c.log.Warn("no content found for article", "slug", slug)
	}
	return content
}
