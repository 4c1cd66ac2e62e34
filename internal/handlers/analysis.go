package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/middleware"
	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// AnalysisHandler handles the model-backed analysis endpoint and the admin
// view of the analysis audit log.
type AnalysisHandler struct {
	service *services.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(service *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// AnalysisRequest represents the request body for an analysis. The client
// sends the candle data it already fetched for the chart.
type AnalysisRequest struct {
	Symbol  string          `json:"symbol" validate:"required"`
	Candles []models.Candle `json:"candles" validate:"required,min=1"`
	Quote   *models.Quote   `json:"quote"`
}

// AnalysisLogResponse is the admin view of one analysis log row
type AnalysisLogResponse struct {
	ID        int64     `json:"id"`
	UserEmail string    `json:"userEmail"`
	Symbol    string    `json:"symbol"`
	IP        *string   `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analyze runs an analysis on behalf of the session
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sess := auth.GetSessionFromContext(r)
	if sess == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	analysis, err := h.service.Analyze(r.Context(), sess, req.Symbol, req.Candles, req.Quote, middleware.GetClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteTooManyRequests(w, "rate_limited", "Hourly analysis limit reached. Please try again later.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Symbol and candle data are required")
		default:
			pkghttp.WriteInternalError(w, "Failed to generate analysis")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, analysis)
}

// Logs returns the newest analysis log rows
func (h *AnalysisHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.service.RecentLogs(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	out := make([]AnalysisLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, AnalysisLogResponse{
			ID:        log.ID,
			UserEmail: log.UserEmail,
			Symbol:    log.Symbol,
			IP:        log.IP,
			CreatedAt: log.CreatedAt,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}
