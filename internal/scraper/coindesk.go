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
	coindeskBaseURL = "https://www.coindesk.com/"
	// coindeskNextAction selects the server action returning the latest
	// articles listing embedded in a text/x-component response.
	coindeskNextAction = "40e2c881baef274abca4f12f54acf2d96cb0f3fbf7"
)

// Coindesk fetches listings from coindesk.com's component endpoint, which
// embeds an articles JSON array in a mixed-format response, and article
// bodies from the rendered pages.
type Coindesk struct {
	deps Deps
	log  logger.Interface
}

// NewCoindesk creates a Coindesk adapter.
func NewCoindesk(deps Deps) *Coindesk {
	return &Coindesk{deps: deps, log: deps.Logger.WithComponent("scraper.coindesk")}
}

// Name returns the adapter name.
func (c *Coindesk) Name() string { return "coindesk" }

// Source returns the source identity attached to every article.
func (c *Coindesk) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Coindesk", URL: "https://www.coindesk.com"}
}

type coindeskEntry struct {
	ID          json.Number `json:"id"`
	Pathname    string      `json:"pathname"`
	Title       string      `json:"title"`
	PublishedAt string      `json:"publishedAt"`
	Author      struct {
		Name string `json:"name"`
	} `json:"author"`
	Section string `json:"section"`
	Image   struct {
		URL string `json:"url"`
	} `json:"image"`
}

// FetchPage fetches one listing page and resolves each entry's body. Items
// whose body fetch fails keep empty content rather than aborting the page.
func (c *Coindesk) FetchPage(ctx context.Context, page, pageSize int) ([]domain.Article, error) {
	payload := fmt.Sprintf(`[{"page":%d,"pageSize":%d}]`, page, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, coindeskBaseURL, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/x-component")
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("Next-Action", coindeskNextAction)
	req.Header.Set("Origin", "https://www.coindesk.com")
	req.Header.Set("Referer", "https://www.coindesk.com/")

	body, err := doRequest(ctx, c.deps, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	entries, err := extractEmbeddedArticles(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	source := c.Source()
	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID.String()
		if id == "" || entry.Pathname == "" {
			c.log.Warn("skipping entry with missing id or pathname", "title", entry.Title)
			continue
		}

		articles = append(articles, domain.Article{
			ID:          id,
			Slug:        entry.Pathname,
			Title:       entry.Title,
			Content:     c.fetchBody(ctx, entry.Pathname),
			PublishedAt: parsePublishTime(entry.PublishedAt),
			AuthorName:  entry.Author.Name,
			Category:    entry.Section,
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ImageURL:    entry.Image.URL,
			ArticleURL:  source.URL + entry.Pathname,
		})
	}

	return articles, nil
}

// extractEmbeddedArticles locates the "articles":[...] array inside the
// component response and decodes it. The response is not valid JSON as a
// whole, so the array is balanced-bracket scanned out of it.
func extractEmbeddedArticles(response string) ([]coindeskEntry, error) {
	const marker = `"articles":[`
	start := strings.Index(response, marker)
	if start < 0 {
		return nil, fmt.Errorf("no articles array in response")
	}

	arrayStart := start + len(marker) - 1
	depth := 0
	end := -1
	for i := arrayStart; i < len(response); i++ {
		switch response[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("unterminated articles array in response")
	}

	var entries []coindeskEntry
	if err := json.Unmarshal([]byte(response[arrayStart:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode articles array: %w", err)
	}

	return entries, nil
}

// fetchBody returns the cleaned body text from an article page, or empty on
// failure. Footer boilerplate is dropped.
func (c *Coindesk) fetchBody(ctx context.Context, pathname string) string {
	articleURL := strings.TrimSuffix(coindeskBaseURL, "/") + pathname

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, http.NoBody)
	if err != nil {
		c.log.Warn("failed to create body request", "pathname", pathname, "error", err)
		return ""
	}
	req.Header.Set("Referer", "https://www.coindesk.com/")

	body, err := doRequest(ctx, c.deps, req)
	if err != nil {
		c.log.Warn("failed to fetch article body", "pathname", pathname, "error", err)
		return ""
	}

	content := extractParagraphs(string(body))
	if content == "" {
		c.log.Warn("no content found for article", "pathname", pathname)
	}
	return content
}
