// Package scraper implements source adapters that normalize crawled news
// pages into canonical articles.
package scraper

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonesrussell/newswatch/internal/domain"
	"github.com/jonesrussell/newswatch/internal/logger"
)

// Adapter fetches one listing page from a source and normalizes every entry
// into a partial article (no embedding). Implementations are best-effort: a
// single malformed or unreachable item is logged and omitted, never an error.
type Adapter interface {
	Name() string
	Source() domain.SourceInfo
	FetchPage(ctx context.Context, page, pageSize int) ([]domain.Article, error)
}

// Deps carries the shared collaborators every adapter is constructed with.
type Deps struct {
	HTTPClient *http.Client
	Limiter    *Limiter
	Logger     logger.Interface
}

// Build constructs the adapters named in the configuration.
func Build(names []string, deps Deps) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		adapter, err := newAdapter(name, deps)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func newAdapter(name string, deps Deps) (Adapter, error) {
	switch name {
	case "coindesk":
		return NewCoindesk(deps), nil
	case "cointelegraph":
		return NewCointelegraph(deps), nil
	case "decrypt":
		return NewDecrypt(deps), nil
	case "theblock":
		return NewTheBlock(deps), nil
	case "cryptonews":
		return NewCryptoNews(deps), nil
	case "bloomberg":
		return NewBloomberg(deps), nil
	case "forbes":
		return NewForbes(deps), nil
	default:
		return nil, fmt.Errorf("unknown source adapter: %s", name)
	}
}
