package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newswatch/internal/config"
	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/scraper"
)

type fakeAdapter struct {
	name     string
	articles []domain.Article
	err      error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Source() domain.SourceInfo {
	return domain.SourceInfo{Name: f.name, URL: "https://" + f.name + ".test"}
}

func (f *fakeAdapter) FetchPage(_ context.Context, _, _ int) ([]domain.Article, error) {
	return f.articles, f.err
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestOrchestrator(t *testing.T, cfg config.ScraperConfig, adapters ...*fakeAdapter) *Orchestrator {
	t.Helper()

	built := make([]scraper.Adapter, 0, len(adapters))
	for _, a := range adapters {
		built = append(built, a)
	}

	o := NewOrchestrator(built, cfg, logger.NewNoOp())
	o.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestRunAllGathersAllSources(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := &fakeAdapter{name: "alpha", articles: []domain.Article{
		{ID: "a1", Title: "First", Content: "Alpha One!", SourceName: "alpha", PublishedAt: timePtr(now.Add(-10 * time.Minute))},
	}}
	b := &fakeAdapter{name: "beta", articles: []domain.Article{
		{ID: "b1", Title: "Second", Content: "Beta One!", SourceName: "beta", PublishedAt: timePtr(now.Add(-5 * time.Minute))},
	}}

	o := newTestOrchestrator(t, config.ScraperConfig{PageSize: 20, WindowMinutes: 60}, a, b)

	batch := o.RunAll(context.Background())
	require.Len(t, batch, 2)

	// Newest first.
	assert.Equal(t, "b1", batch[0].ID)
	assert.Equal(t, "a1", batch[1].ID)

	// Clean content is derived during preparation.
	assert.Equal(t, "beta one", batch[0].CleanContent)
	assert.Equal(t, "alpha one", batch[1].CleanContent)
}

func TestRunAllIsolatesSourceFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	healthy := &fakeAdapter{name: "healthy", articles: []domain.Article{
		{ID: "h1", Title: "Up", SourceName: "healthy", PublishedAt: timePtr(now.Add(-time.Minute))},
	}}
	broken := &fakeAdapter{name: "broken", err: errors.New("connection refused")}

	o := newTestOrchestrator(t, config.ScraperConfig{PageSize: 20, WindowMinutes: 60}, healthy, broken)

	batch := o.RunAll(context.Background())
	require.Len(t, batch, 1)
	assert.Equal(t, "h1", batch[0].ID)
}

func TestPrepareAppliesRecencyWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	o := newTestOrchestrator(t, config.ScraperConfig{WindowMinutes: 60})

	batch := o.prepare([]domain.Article{
		{ID: "recent", PublishedAt: timePtr(now.Add(-30 * time.Minute))},
		{ID: "stale", PublishedAt: timePtr(now.Add(-2 * time.Hour))},
		{ID: "boundary", PublishedAt: timePtr(now.Add(-60 * time.Minute))},
	})

	require.Len(t, batch, 2)
	assert.Equal(t, "recent", batch[0].ID)
	assert.Equal(t, "boundary", batch[1].ID)
}

func TestPrepareKeepsUnknownDatesByDefault(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	o := newTestOrchestrator(t, config.ScraperConfig{WindowMinutes: 60})

	batch := o.prepare([]domain.Article{
		{ID: "undated"},
		{ID: "dated", PublishedAt: timePtr(now.Add(-time.Minute))},
	})

	require.Len(t, batch, 2)

	// Unknown dates sort last.
	assert.Equal(t, "dated", batch[0].ID)
	assert.Equal(t, "undated", batch[1].ID)
}

func TestPrepareStrictWindowDropsUnknownDates(t *testing.T) {
	o := newTestOrchestrator(t, config.ScraperConfig{WindowMinutes: 60, StrictWindow: true})

	batch := o.prepare([]domain.Article{{ID: "undated"}})
	assert.Empty(t, batch)
}
