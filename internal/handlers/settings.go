package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// SettingsHandler handles the admin settings endpoints
type SettingsHandler struct {
	service *services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// UpdateSettingsRequest represents the request body for updating settings
type UpdateSettingsRequest struct {
	RateLimitPerHour int `json:"rateLimitPerHour" validate:"required,gte=1,lte=1000"`
}

// SettingsResponse represents the effective settings
type SettingsResponse struct {
	RateLimitPerHour int `json:"rateLimitPerHour"`
}

// Get returns the effective settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit, err := h.service.RateLimitPerHour(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SettingsResponse{RateLimitPerHour: limit})
}

// Update changes the rate limit setting
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.SetRateLimitPerHour(r.Context(), req.RateLimitPerHour); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Rate limit must be between 1 and 1000")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SettingsResponse{RateLimitPerHour: req.RateLimitPerHour})
}
