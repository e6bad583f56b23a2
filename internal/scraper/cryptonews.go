package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const cryptoNewsBaseURL = "https://cryptonews.com"

// CryptoNews scrapes cryptonews.com's HTML front page with colly. The listing
// has no JSON API; articles are parsed out of the top-story cells and bodies
// fetched from the article pages.
type CryptoNews struct {
	deps Deps
	log  logger.Interface
}

// NewCryptoNews creates a CryptoNews adapter.
func NewCryptoNews(deps Deps) *CryptoNews {
	return &CryptoNews{deps: deps, log: deps.Logger.WithComponent("scraper.cryptonews")}
}

// Name returns the adapter name.
func (c *CryptoNews) Name() string { return "cryptonews" }

// Source returns the source identity attached to every article.
func (c *CryptoNews) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Crypto News", URL: cryptoNewsBaseURL}
}

// FetchPage scrapes the front page listing. The site paginates by infinite
// scroll, so only the first page is reachable; pageSize caps the result.
func (c *CryptoNews) FetchPage(ctx context.Context, _, pageSize int) ([]domain.Article, error) {
	collector := c.newCollector()

	source := c.Source()
	var articles []domain.Article

	collector.OnHTML("div.top-story-cell-top__wrap", func(e *colly.HTMLElement) {
		if len(articles) >= pageSize {
			return
		}

		articleURL := e.ChildAttr("a.top-story-cell", "href")
		if articleURL == "" {
			return
		}
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = cryptoNewsBaseURL + articleURL
		}

		slug := strings.Trim(strings.TrimPrefix(articleURL, cryptoNewsBaseURL), "/")
		if slug == "" {
			c.log.Warn("skipping cell with empty slug", "url", articleURL)
			return
		}

		article := domain.Article{
			// The site exposes no stable numeric id; the slug is the id.
			ID:          slug,
			Slug:        slug,
			Title:       strings.TrimSpace(e.ChildText("div.top-story-cell__title")),
			Category:    strings.TrimSpace(e.ChildText("div.top-story-cell__term")),
			AuthorName:  strings.TrimSpace(e.ChildText("div.top-story-cell__author")),
			PublishedAt: parsePublishTime(strings.TrimSpace(e.ChildText("div.top-story-cell__time"))),
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ImageURL:    backgroundImageURL(e.ChildAttr("div.top-story-cell-top__bg", "style")),
			ArticleURL:  articleURL,
		}

		articles = append(articles, article)
	})

	if err := c.visit(ctx, collector, cryptoNewsBaseURL); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	for i := range articles {
		c.fetchBody(ctx, &articles[i])
	}

	return articles, nil
}

// fetchBody scrapes the article page for body text and tags. Failures leave
// the article with empty content; they never abort the batch.
func (c *CryptoNews) fetchBody(ctx context.Context, article *domain.Article) {
	collector := c.newCollector()

	collector.OnHTML("div.article-single__content", func(e *colly.HTMLElement) {
		var parts []string
		e.ForEach("p, h2", func(_ int, el *colly.HTMLElement) {
			text := strings.TrimSpace(el.Text)
			if text != "" {
				parts = append(parts, text)
			}
		})
		article.Content = strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	})

	collector.OnHTML("div.single-post-new__tags span.value", func(e *colly.HTMLElement) {
		tag := strings.TrimSpace(e.Text)
		if tag != "" {
			article.Tags = append(article.Tags, tag)
		}
	})

	if err := c.visit(ctx, collector, article.ArticleURL); err != nil {
		c.log.Warn("failed to fetch article body", "slug", article.Slug, "error", err)
		return
	}
	if article.Content == "" {
		c.log.Warn("no content found for article", "slug", article.Slug)
	}
}

func (c *CryptoNews) newCollector() *colly.Collector {
	collector := colly.NewCollector(colly.UserAgent(defaultUserAgent))
	collector.SetRequestTimeout(c.deps.HTTPClient.Timeout)
	return collector
}

// visit runs a synchronous colly visit under the shared limiter.
func (c *CryptoNews) visit(ctx context.Context, collector *colly.Collector, url string) error {
	if err := c.deps.Limiter.Acquire(ctx); err != nil {
		return err
	}
	defer c.deps.Limiter.Release()

	return collector.Visit(url)
}

// backgroundImageURL extracts a url(...) value from an inline style.
func backgroundImageURL(style string) string {
	start := strings.Index(style, "url(")
	if start < 0 {
		return ""
	}
	rest := style[start+len("url("):]
	end := strings.Index(rest, ")")
	if end < 0 {
		return ""
	}
	return strings.Trim(rest[:end], `'" `)
}
