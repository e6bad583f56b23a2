package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const (
	forbesSourceURL  = "https://www.forbes.com/digital-assets/"
	forbesListingURL = "https://www.forbes.com/digital-assets/_next/data/0lOZ_TN7MA2GUEm9YUHLu/news.json"
)

// Forbes fetches crypto news from forbes.com's digital-assets page-data
// endpoint and article bodies from the rendered pages.
type Forbes struct {
	deps Deps
	log  logger.Interface
}

// NewForbes creates a Forbes adapter.
func NewForbes(deps Deps) *Forbes {
	return &Forbes{deps: deps, log: deps.Logger.WithComponent("scraper.forbes")}
}

// Name returns the adapter name.
func (f *Forbes) Name() string { return "forbes" }

// Source returns the source identity attached to every article.
func (f *Forbes) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Forbes", URL: forbesSourceURL}
}

type forbesListing struct {
	PageProps struct {
		InitialData struct {
			LatestNewsServerData struct {
				Latest []forbesEntry `json:"latest"`
			} `json:"latestNewsServerData"`
		} `json:"initialData"`
	} `json:"pageProps"`
}

type forbesEntry struct {
	ID     json.Number `json:"id"`
	URI    string      `json:"uri"`
	Title  string      `json:"title"`
	Date   string      `json:"date"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
}

// FetchPage fetches the latest-news listing and resolves each entry's body.
// The endpoint is not paginated; pageSize caps the result. Items whose body
// fetch fails keep empty content rather than aborting the page.
func (f *Forbes) FetchPage(ctx context.Context, _, pageSize int) ([]domain.Article, error) {
	headers := http.Header{}
	headers.Set("Referer", forbesSourceURL+"news/")

	var listing forbesListing
	if err := getJSON(ctx, f.deps, forbesListingURL, headers, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	entries := listing.PageProps.InitialData.LatestNewsServerData.Latest
	if len(entries) > pageSize {
		entries = entries[:pageSize]
	}

	source := f.Source()
	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID.String()
		if id == "" || entry.URI == "" {
			f.log.Warn("skipping entry with missing id or uri", "title", entry.Title)
			continue
		}

		articles = append(articles, domain.Article{
			ID:          id,
			Slug:        forbesSlug(entry.URI),
			Title:       entry.Title,
			Content:     f.fetchBody(ctx, entry.URI),
			PublishedAt: parsePublishTime(entry.Date),
			AuthorName:  entry.Author.Name,
			Category:    "Crypto",
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ArticleURL:  entry.URI,
		})
	}

	return articles, nil
}

// fetchBody returns the cleaned body text from an article page, or empty on
// failure.
func (f *Forbes) fetchBody(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, http.NoBody)
	if err != nil {
		f.log.Warn("failed to create body request", "url", articleURL, "error", err)
		return ""
	}

	body, err := doRequest(ctx, f.deps, req)
	if err != nil {
		f.log.Warn("failed to fetch article body", "url", articleURL, "error", err)
		return ""
	}

	content := extractParagraphsIn(string(body), "div.article-body")
	if content == "" {
		f.log.Warn("no content found for article", "url", articleURL)
	}
	return content
}

// forbesSlug derives the slug from the last path segment of the article URL.
func forbesSlug(articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil || u.Path == "" {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}
