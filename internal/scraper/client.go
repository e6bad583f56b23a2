package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// defaultUserAgent identifies outbound requests from the fetch pipeline.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxResponseBodyBytes limits the size of fetched responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// doRequest executes req under the shared limiter and returns the bounded body.
func doRequest(ctx context.Context, deps Deps, req *http.Request) ([]byte, error) {
	if err := deps.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer deps.Limiter.Release()

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// getJSON issues a GET request and decodes the JSON response into out.
func getJSON(ctx context.Context, deps Deps, url string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, headers)

	body, err := doRequest(ctx, deps, req)
	if err != nil {
		return err
	}

	if unmarshalErr := json.Unmarshal(body, out); unmarshalErr != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, unmarshalErr)
	}

	return nil
}

// postForJSON issues a POST request with the given payload and decodes the
// JSON response into out.
func postForJSON(ctx context.Context, deps Deps, url, contentType string, payload []byte, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, headers)
	req.Header.Set("Content-Type", contentType)

	body, err := doRequest(ctx, deps, req)
	if err != nil {
		return err
	}

	if unmarshalErr := json.Unmarshal(body, out); unmarshalErr != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, unmarshalErr)
	}

	return nil
}

func applyHeaders(req *http.Request, headers http.Header) {
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}

// extractParagraphs extracts readable text from HTML, joining <p> elements
// and collapsing whitespace. Boilerplate containers named in skipClasses are
// removed first.
func extractParagraphs(html string, skipClasses ...string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, class := range skipClasses {
		doc.Find("." + class).Remove()
	}

	root := doc.Find("article")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(strings.Fields(strings.Join(paragraphs, " ")), " ")
}

// publishTimeLayouts are the timestamp formats observed across sources.
var publishTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 02, 2006 15:04",
	"January 2, 2006",
}

// parsePublishTime parses a source-provided timestamp, returning nil when the
// value is missing or unparsable. Unknown dates are kept, not invented.
func parsePublishTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
