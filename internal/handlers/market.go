package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tickerdesk/tickerdesk/internal/market"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// MarketHandler proxies market-data lookups. Provider failures surface as a
// bad gateway without upstream detail.
type MarketHandler struct {
	service *market.Service
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(service *market.Service) *MarketHandler {
	return &MarketHandler{service: service}
}

// Search handles ticker search
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if query == "" {
		pkghttp.WriteBadRequest(w, "Search query is required")
		return
	}

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		pkghttp.WriteBadGateway(w, "Failed to search")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, results)
}

// Stock handles candle history lookups
func (h *MarketHandler) Stock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		pkghttp.WriteBadRequest(w, "Symbol is required")
		return
	}

	chart, err := h.service.Chart(r.Context(), symbol, r.URL.Query().Get("range"), r.URL.Query().Get("interval"))
	if err != nil {
		pkghttp.WriteBadGateway(w, "Failed to fetch stock data")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, chart)
}

// Quote handles snapshot lookups
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		pkghttp.WriteBadRequest(w, "Symbol is required")
		return
	}

	quote, err := h.service.Quote(r.Context(), symbol)
	if err != nil {
		pkghttp.WriteBadGateway(w, "Failed to fetch quote")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, quote)
}
