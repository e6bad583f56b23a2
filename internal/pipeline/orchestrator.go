package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonesrussell/newswatch/internal/config"
	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
	"github.com/jonesrussell/newswatch/internal/scraper"
)

// Orchestrator fans out the configured source adapters, gathers their
// results and produces the candidate batch for a run.
type Orchestrator struct {
	adapters []scraper.Adapter
	cfg      config.ScraperConfig
	log      logger.Interface
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator over the given adapters.
func NewOrchestrator(adapters []scraper.Adapter, cfg config.ScraperConfig, log logger.Interface) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		cfg:      cfg,
		log:      log.WithComponent("orchestrator"),
		now:      time.Now,
	}
}

// RunAll fetches the first listing page from every adapter concurrently.
// One source's failure contributes zero articles and never cancels its
// siblings. After fan-in the batch is normalized, filtered to the recency
// window and sorted by publish date descending with unknown dates last.
func (o *Orchestrator) RunAll(ctx context.Context) []domain.Article {
	results := make([][]domain.Article, len(o.adapters))

	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter scraper.Adapter) {
			defer wg.Done()

			articles, err := adapter.FetchPage(ctx, 1, o.cfg.PageSize)
			if err != nil {
				o.log.Error("source fetch failed", "source", adapter.Name(), "error", err)
				return
			}
			o.log.Info("source fetch succeeded", "source", adapter.Name(), "articles", len(articles))
			results[i] = articles
		}(i, adapter)
	}
	wg.Wait()

	var batch []domain.Article
	for _, articles := range results {
		batch = append(batch, articles...)
	}

	batch = o.prepare(batch)
	o.log.Info("run batch assembled", "articles", len(batch))
	return batch
}

// prepare derives clean content, applies the recency window and sorts.
func (o *Orchestrator) prepare(batch []domain.Article) []domain.Article {
	cutoff := o.now().UTC().Add(-time.Duration(o.cfg.WindowMinutes) * time.Minute)

	filtered := make([]domain.Article, 0, len(batch))
	for i := range batch {
		a := batch[i]
		a.CleanContent = CleanContent(a.Content)

		if a.PublishedAt == nil {
			// Unknown dates are kept unless strict filtering is requested,
			// to avoid silently losing articles from sources with unparsable
			// timestamps.
			if o.cfg.StrictWindow {
				o.log.Warn("dropping article with unknown publish date", "source", a.SourceName, "title", a.Title)
				continue
			}
			filtered = append(filtered, a)
			continue
		}

		if a.PublishedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, a)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		left, right := filtered[i].PublishedAt, filtered[j].PublishedAt
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return left.After(*right)
		}
	})

	return filtered
}
