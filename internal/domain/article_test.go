package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	a := &Article{}
	a.NormalizeTags()
	require.NotNil(t, a.Tags)
	assert.Empty(t, a.Tags)

	a.Tags = []string{"bitcoin"}
	a.NormalizeTags()
	assert.Equal(t, []string{"bitcoin"}, []string(a.Tags))
}

func TestArticleJSONOmitsEmbedding(t *testing.T) {
	a := Article{ID: "1", SourceName: "src"}
	a.NormalizeTags()

	data, err := json.Marshal(a)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "embedding")
	assert.Contains(t, string(data), `"tags":[]`)
}
