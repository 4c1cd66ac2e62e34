package market

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/cache"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

// Service resolves dashboard symbols to provider symbols and memoizes
// provider responses behind a short TTL. Provider failures are logged with
// detail server-side and surfaced to callers as models.ErrBadGateway-style
// generic errors by the handler layer.
type Service struct {
	provider Provider
	logger   *slog.Logger

	searchCache *cache.TTL[[]models.SearchResult]
	chartCache  *cache.TTL[*models.Chart]
	quoteCache  *cache.TTL[*models.Quote]
}

// NewService creates a market Service with the given response cache TTL
func NewService(provider Provider, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		provider:    provider,
		logger:      logger,
		searchCache: cache.NewTTL[[]models.SearchResult](cacheTTL),
		chartCache:  cache.NewTTL[*models.Chart](cacheTTL),
		quoteCache:  cache.NewTTL[*models.Quote](cacheTTL),
	}
}

// Search proxies a ticker search
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	key := strings.ToLower(query)
	if hit, ok := s.searchCache.Get(key); ok {
		return hit, nil
	}

	results, err := s.provider.Search(ctx, query)
	if err != nil {
		s.logger.Error("market search failed", slog.String("query", query), slog.Any("error", err))
		return nil, err
	}

	s.searchCache.Set(key, results)
	return results, nil
}

// Chart returns candle history for a dashboard symbol
func (s *Service) Chart(ctx context.Context, symbol, rng, interval string) (*models.Chart, error) {
	if rng == "" {
		rng = "6mo"
	}
	if interval == "" {
		interval = "1d"
	}

	resolved := s.ResolveSymbol(ctx, symbol)
	key := resolved + "|" + rng + "|" + interval
	if hit, ok := s.chartCache.Get(key); ok {
		return hit, nil
	}

	chart, err := s.provider.Chart(ctx, resolved, rng, interval)
	if err != nil {
		s.logger.Error("market chart fetch failed", slog.String("symbol", resolved), slog.Any("error", err))
		return nil, err
	}

	s.chartCache.Set(key, chart)
	return chart, nil
}

// Quote returns a snapshot for a dashboard symbol
func (s *Service) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	resolved := s.ResolveSymbol(ctx, symbol)
	if hit, ok := s.quoteCache.Get(resolved); ok {
		return hit, nil
	}

	quote, err := s.provider.Quote(ctx, resolved)
	if err != nil {
		s.logger.Error("market quote fetch failed", slog.String("symbol", resolved), slog.Any("error", err))
		return nil, err
	}

	s.quoteCache.Set(resolved, quote)
	return quote, nil
}

// ResolveSymbol maps dashboard symbol notation to the provider's notation.
// Bursa Malaysia prefixes (KLSE:, MYX:) become the provider's ".KL" suffix,
// refined through a search lookup when one answers; other exchange prefixes
// (NASDAQ:, NYSE:) are simply stripped.
func (s *Service) ResolveSymbol(ctx context.Context, symbol string) string {
	if strings.HasPrefix(symbol, "KLSE:") || strings.HasPrefix(symbol, "MYX:") {
		ticker := strings.TrimPrefix(strings.TrimPrefix(symbol, "KLSE:"), "MYX:")
		direct := ticker + ".KL"

		results, err := s.provider.Search(ctx, ticker)
		if err != nil {
			return direct
		}
		for _, r := range results {
			if strings.HasSuffix(r.Symbol, ".KL") && r.Type == "EQUITY" {
				return r.Symbol
			}
		}
		return direct
	}

	if i := strings.Index(symbol, ":"); i >= 0 {
		return symbol[i+1:]
	}
	return symbol
}
