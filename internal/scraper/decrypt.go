package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const (
	decryptGatewayURL = "https://gateway.decrypt.co/"
	decryptArticleURL = "https://decrypt.co/_next/data/1DAsWX9DvodIzQ0WRMepi/en-US"
	// decryptQueryHash is the persisted GraphQL query for article previews.
	decryptQueryHash = "7366f3114618c1df3a4b718a7b3e6f93cb804c036a907f52a75b108d9645618f"
)

// Decrypt fetches news listings from decrypt.co's GraphQL gateway and article
// bodies from its page-data endpoint.
type Decrypt struct {
	deps Deps
	log  logger.Interface
}

// NewDecrypt creates a Decrypt adapter.
func NewDecrypt(deps Deps) *Decrypt {
	return &Decrypt{deps: deps, log: deps.Logger.WithComponent("scraper.decrypt")}
}

// Name returns the adapter name.
func (d *Decrypt) Name() string { return "decrypt" }

// Source returns the source identity attached to every article.
func (d *Decrypt) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Decrypt", URL: "https://decrypt.co"}
}

type decryptListing struct {
	Data struct {
		Articles struct {
			Data []decryptEntry `json:"data"`
		} `json:"articles"`
	} `json:"data"`
}

type decryptEntry struct {
	ID          json.Number `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	PublishedAt string      `json:"publishedAt"`
	Authors     struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	} `json:"authors"`
	Category struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	} `json:"category"`
}

type decryptArticlePage struct {
	PageProps struct {
		ActiveArticle struct {
			ActiveArticle struct {
				Content string `json:"content"`
			} `json:"activeArticle"`
		} `json:"activeArticle"`
	} `json:"pageProps"`
}

// FetchPage fetches one listing page and resolves each entry's body. Items
// whose body fetch fails keep an empty content rather than aborting the page.
func (d *Decrypt) FetchPage(ctx context.Context, page, pageSize int) ([]domain.Article, error) {
	variables := map[string]any{
		"filters": map[string]any{
			"locale":   map[string]any{"eq": "en"},
			"category": map[string]any{"slug": map[string]any{"eq": "news"}},
		},
		"pagination": map[string]any{"pageSize": pageSize, "page": page},
		"sort":       []string{"publishedAt:desc"},
	}
	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query variables: %w", err)
	}
	extensionsJSON, err := json.Marshal(map[string]any{
		"persistedQuery": map[string]any{"version": 1, "sha256Hash": decryptQueryHash},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query extensions: %w", err)
	}

	params := url.Values{}
	params.Set("operationName", "ArticlePreviews")
	params.Set("variables", string(variablesJSON))
	params.Set("extensions", string(extensionsJSON))

	headers := http.Header{}
	headers.Set("Referer", "https://decrypt.co/")
	headers.Set("Origin", "https://decrypt.co")
	headers.Set("Apollo-Require-Preflight", "true")

	var listing decryptListing
	if err = getJSON(ctx, d.deps, decryptGatewayURL+"?"+params.Encode(), headers, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	source := d.Source()
	articles := make([]domain.Article, 0, len(listing.Data.Articles.Data))
	for _, entry := range listing.Data.Articles.Data {
		id := entry.ID.String()
		if id == "" || entry.Slug == "" {
			d.log.Warn("skipping entry with missing id or slug", "title", entry.Title)
			continue
		}

		article := domain.Article{
			ID:          id,
			Slug:        entry.Slug,
			Title:       entry.Title,
			Content:     d.fetchBody(ctx, id, entry.Slug),
			PublishedAt: parsePublishTime(entry.PublishedAt),
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ArticleURL:  source.URL + "/" + id + "/" + entry.Slug,
			Category:    entry.Category.Data.Name,
		}
		if len(entry.Authors.Data) > 0 {
			article.AuthorName = entry.Authors.Data[0].Name
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// fetchBody returns the cleaned body text, or empty on failure.
func (d *Decrypt) fetchBody(ctx context.Context, id, slug string) string {
	pageURL := fmt.Sprintf("%s/%s/%s.json?post_id=%s&slug=%s",
		decryptArticleURL, id, slug, url.QueryEscape(id), url.QueryEscape(slug))

	var page decryptArticlePage
	if err := getJSON(ctx, d.deps, pageURL, nil, &page); err != nil {
		d.log.Warn("failed to fetch article body", "article_id", id, "error", err)
		return ""
	}

	content := extractParagraphs(page.PageProps.ActiveArticle.ActiveArticle.Content, "embedded-post")
	if content == "" {
		d.log.Warn("no content found for article", "article_id", id)
	}
	return content
}
