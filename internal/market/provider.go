// Package market proxies an external market-data provider, with symbol
// resolution, outbound throttling, and short-TTL response caching.
package market

import (
	"context"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

// Provider is the upstream market-data source
type Provider interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Chart(ctx context.Context, symbol, rng, interval string) (*models.Chart, error)
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
}
