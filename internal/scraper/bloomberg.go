package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

const (
	bloombergBaseURL     = "https://www.bloomberg.com"
	bloombergPaginateURL = bloombergBaseURL + "/lineup-next/api/paginate"
)

// Bloomberg fetches crypto news from bloomberg.com's lineup paginate API and
// article bodies from the rendered pages.
type Bloomberg struct {
	deps Deps
	log  logger.Interface
}

// NewBloomberg creates a Bloomberg adapter.
func NewBloomberg(deps Deps) *Bloomberg {
	return &Bloomberg{deps: deps, log: deps.Logger.WithComponent("scraper.bloomberg")}
}

// Name returns the adapter name.
func (b *Bloomberg) Name() string { return "bloomberg" }

// Source returns the source identity attached to every article.
func (b *Bloomberg) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: "Bloomberg", URL: bloombergBaseURL}
}

type bloombergListing struct {
	ArchiveStoryList struct {
		Items []bloombergItem `json:"items"`
	} `json:"archive_story_list"`
}

type bloombergItem struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Headline    string `json:"headline"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"publishedAt"`
	Label       string `json:"label"`
	Credits     []struct {
		Name string `json:"name"`
	} `json:"credits"`
	Eyebrow struct {
		Text string `json:"text"`
	} `json:"eyebrow"`
	Image struct {
		BaseURL string `json:"baseUrl"`
	} `json:"image"`
	Lede struct {
		BaseURL string `json:"baseUrl"`
	} `json:"lede"`
}

// FetchPage fetches one listing page and resolves each entry's body. When the
// body fetch fails the item's summary stands in for the content.
func (b *Bloomberg) FetchPage(ctx context.Context, page, pageSize int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("id", "archive_story_list")
	params.Set("page", "phx-crypto")
	params.Set("offset", strconv.Itoa((page-1)*pageSize))
	params.Set("variation", "archive")
	params.Set("type", "lineup_content")

	headers := http.Header{}
	headers.Set("Referer", bloombergBaseURL+"/crypto")

	var listing bloombergListing
	if err := getJSON(ctx, b.deps, bloombergPaginateURL+"?"+params.Encode(), headers, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	source := b.Source()
	articles := make([]domain.Article, 0, len(listing.ArchiveStoryList.Items))
	for _, item := range listing.ArchiveStoryList.Items {
		if item.ID == "" || item.Slug == "" {
			b.log.Warn("skipping item with missing id or slug", "headline", item.Headline)
			continue
		}

		content := b.fetchBody(ctx, item.Slug)
		if content == "" {
			content = item.Summary
		}

		article := domain.Article{
			ID:          item.ID,
			Slug:        item.Slug,
			Title:       item.Headline,
			Content:     content,
			PublishedAt: parsePublishTime(item.PublishedAt),
			Category:    item.Label,
			SourceName:  source.Name,
			SourceURL:   source.URL,
			ImageURL:    item.Image.BaseURL,
			ArticleURL:  source.URL + "/news/articles/" + item.Slug,
		}
		if len(item.Credits) > 0 {
			article.AuthorName = item.Credits[0].Name
		}
		if article.Category == "" {
			article.Category = item.Eyebrow.Text
		}
		if article.ImageURL == "" {
			article.ImageURL = item.Lede.BaseURL
		}
		if item.Eyebrow.Text != "" {
			article.Tags = append(article.Tags, item.Eyebrow.Text)
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// fetchBody returns the cleaned body text from an article page, or empty on
// failure. The body lives in a div whose class contains "body-content".
func (b *Bloomberg) fetchBody(ctx context.Context, slug string) string {
	articleURL := bloombergBaseURL + "/news/articles/" + slug

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, http.NoBody)
	if err != nil {
		b.log.Warn("failed to create body request", "slug", slug, "error", err)
		return ""
	}
	req.Header.Set("Referer", bloombergBaseURL+"/crypto")

	body, err := doRequest(ctx, b.deps, req)
	if err != nil {
		b.log.Warn("failed to fetch article body", "slug", slug, "error", err)
		return ""
	}

	content := extractParagraphsIn(string(body), `div[class*="body-content"]`)
	if content == "" {
		b.log.Warn("no content found for article", "slug", slug)
	}
	return content
}

// extractParagraphsIn joins the <p> text under the first container matching
// selector, collapsing whitespace. Unlike extractParagraphs there is no
// fallback root: no matching container means no content.
func extractParagraphsIn(html, selector string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var paragraphs []string
	doc.Find(selector).First().Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(strings.Fields(strings.Join(paragraphs, " ")), " ")
}
