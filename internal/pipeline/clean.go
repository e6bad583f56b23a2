// Package pipeline runs the ingestion pipeline: concurrent source fetch,
// content normalization, recency filtering and ordering.
package pipeline

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	nonAlphaPattern = regexp.MustCompile(`[^a-zA-Z\s]`)
)

// CleanContent normalizes raw article text for embedding input: URLs are
// stripped, non-alphabetic characters replaced with spaces, whitespace
// collapsed and the result lowercased.
func CleanContent(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = nonAlphaPattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
