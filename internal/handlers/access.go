package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// AccessHandler handles the admin IP access-control endpoints: the lockout
// table and the curated allow/block rules.
type AccessHandler struct {
	lockout *services.LockoutService
	access  *services.AccessService
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(lockout *services.LockoutService, access *services.AccessService) *AccessHandler {
	return &AccessHandler{lockout: lockout, access: access}
}

// CreateIPRuleRequest represents the request body for adding an IP rule
type CreateIPRuleRequest struct {
	RuleType    string  `json:"ruleType" validate:"required,oneof=whitelist block"`
	StartIP     string  `json:"startIp" validate:"required"`
	EndIP       string  `json:"endIp" validate:"required"`
	Description *string `json:"description"`
}

// BlockedIPResponse is the admin view of one lockout record
type BlockedIPResponse struct {
	ID            int        `json:"id"`
	IPAddress     string     `json:"ipAddress"`
	Attempts      int        `json:"attempts"`
	Blocked       bool       `json:"blocked"`
	LastAttemptAt time.Time  `json:"lastAttemptAt"`
	BlockedAt     *time.Time `json:"blockedAt"`
}

// IPRuleResponse is the admin view of one access rule
type IPRuleResponse struct {
	ID          int       `json:"id"`
	RuleType    string    `json:"ruleType"`
	StartIP     string    `json:"startIp"`
	EndIP       string    `json:"endIp"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toIPRuleResponse(rule *models.IPRule) IPRuleResponse {
	return IPRuleResponse{
		ID:          rule.ID,
		RuleType:    rule.RuleType,
		StartIP:     rule.StartIP,
		EndIP:       rule.EndIP,
		Description: rule.Description,
		CreatedAt:   rule.CreatedAt,
	}
}

// ListBlockedIPs returns the lockout table, attempt counts included. This
// level of detail is admin-only; login responses never carry it.
func (h *AccessHandler) ListBlockedIPs(w http.ResponseWriter, r *http.Request) {
	records, err := h.lockout.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	out := make([]BlockedIPResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, BlockedIPResponse{
			ID:            rec.ID,
			IPAddress:     rec.IPAddress,
			Attempts:      rec.Attempts,
			Blocked:       rec.Blocked,
			LastAttemptAt: rec.LastAttemptAt,
			BlockedAt:     rec.BlockedAt,
		})
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// UnblockIP deletes a lockout record
func (h *AccessHandler) UnblockIP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid record ID")
		return
	}

	if err := h.lockout.Unblock(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Blocked IP record not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListRules returns all IP access rules
func (h *AccessHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.access.ListRules(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	out := make([]IPRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toIPRuleResponse(rule))
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// CreateRule adds an IP access rule
func (h *AccessHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateIPRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rule, err := h.access.AddRule(r.Context(), &models.IPRule{
		RuleType:    req.RuleType,
		StartIP:     req.StartIP,
		EndIP:       req.EndIP,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid rule: both bounds must be valid IPv4 addresses with start <= end")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toIPRuleResponse(rule))
}

// DeleteRule removes an IP access rule
func (h *AccessHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid rule ID")
		return
	}

	if err := h.access.DeleteRule(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Rule not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
