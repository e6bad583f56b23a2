package scraper

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newswatch/internal/logger"
)

func TestBuild(t *testing.T) {
	deps := Deps{
		HTTPClient: http.DefaultClient,
		Limiter:    NewLimiter(1),
		Logger:     logger.NewNoOp(),
	}

	names := []string{"coindesk", "cointelegraph", "decrypt", "theblock", "cryptonews", "bloomberg", "forbes"}
	adapters, err := Build(names, deps)
	require.NoError(t, err)
	require.Len(t, adapters, len(names))

	for i, adapter := range adapters {
		assert.Equal(t, names[i], adapter.Name())
		assert.NotEmpty(t, adapter.Source().Name)
		assert.NotEmpty(t, adapter.Source().URL)
	}
}

func TestBuildUnknownAdapter(t *testing.T) {
	deps := Deps{
		HTTPClient: http.DefaultClient,
		Limiter:    NewLimiter(1),
		Logger:     logger.NewNoOp(),
	}

	_, err := Build([]string{"coindesk", "coinmarketbeat"}, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source adapter")
}
