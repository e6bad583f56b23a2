package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmbeddedArticles(t *testing.T) {
	response := `0:["$@1",["x"]]
1:{"ok":true,"data":{"articles":[{"id":123,"pathname":"/markets/btc-rally","title":"BTC Rally","publishedAt":"2025-06-01T10:00:00Z","author":{"name":"A. Writer"},"section":"Markets","image":{"url":"https://img.test/1.jpg"}},{"id":456,"pathname":"/policy/etf","title":"ETF [Update]","publishedAt":"2025-06-01T09:00:00Z","author":{"name":""},"section":"Policy","image":{"url":""}}],"total":2}}`

	entries, err := extractEmbeddedArticles(response)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "123", entries[0].ID.String())
	assert.Equal(t, "/markets/btc-rally", entries[0].Pathname)
	assert.Equal(t, "A. Writer", entries[0].Author.Name)
	assert.Equal(t, "Markets", entries[0].Section)

	// Nested brackets inside values must not terminate the scan early.
	assert.Equal(t, "ETF [Update]", entries[1].Title)
}

func TestExtractEmbeddedArticlesMissingMarker(t *testing.T) {
	_, err := extractEmbeddedArticles(`0:{"nothing":"here"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no articles array")
}

func TestExtractEmbeddedArticlesUnterminated(t *testing.T) {
	_, err := extractEmbeddedArticles(`"articles":[{"id":1}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}
