package scraper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloombergListingDecode(t *testing.T) {
	payload := `{
		"archive_story_list": {
			"items": [
				{
					"id": "bbg-1",
					"slug": "2025-06-01/btc-surges",
					"headline": "BTC Surges",
					"summary": "Bitcoin rose sharply.",
					"publishedAt": "2025-06-01T10:00:00Z",
					"label": "Markets",
					"credits": [{"name": "A. Writer"}],
					"eyebrow": {"text": "Crypto"},
					"image": {"baseUrl": "https://img.test/a.jpg"}
				},
				{
					"id": "bbg-2",
					"slug": "2025-06-01/eth-slips",
					"headline": "ETH Slips",
					"eyebrow": {"text": "Crypto"},
					"lede": {"baseUrl": "https://img.test/b.jpg"}
				}
			]
		}
	}`

	var listing bloombergListing
	require.NoError(t, json.Unmarshal([]byte(payload), &listing))
	require.Len(t, listing.ArchiveStoryList.Items, 2)

	first := listing.ArchiveStoryList.Items[0]
	assert.Equal(t, "bbg-1", first.ID)
	assert.Equal(t, "BTC Surges", first.Headline)
	assert.Equal(t, "Markets", first.Label)
	assert.Equal(t, "A. Writer", first.Credits[0].Name)
	assert.Equal(t, "https://img.test/a.jpg", first.Image.BaseURL)

	// Category and image fall back to eyebrow and lede when absent.
	second := listing.ArchiveStoryList.Items[1]
	assert.Empty(t, second.Label)
	assert.Equal(t, "Crypto", second.Eyebrow.Text)
	assert.Equal(t, "https://img.test/b.jpg", second.Lede.BaseURL)
}

func TestExtractParagraphsIn(t *testing.T) {
	html := `
		<html><body>
		<nav><p>Menu item</p></nav>
		<div class="body-content copy-lg">
			<p>First paragraph.</p>
			<p>Second   paragraph.</p>
		</div>
		<footer><p>Legal.</p></footer>
		</body></html>`

	assert.Equal(t, "First paragraph. Second paragraph.",
		extractParagraphsIn(html, `div[class*="body-content"]`))

	// No fallback root: a missing container yields no content.
	assert.Empty(t, extractParagraphsIn(html, "div.article-body"))
	assert.Empty(t, extractParagraphsIn("", "div.article-body"))
}
