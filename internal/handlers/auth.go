package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/middleware"
	"github.com/tickerdesk/tickerdesk/internal/models"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error)
	AdminLogin(ctx context.Context, password, ipAddress string) (string, *auth.Session, error)
	Logout(sessionID string)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	sessions     *auth.SessionManager
	cookieConfig auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, sessions *auth.SessionManager, cookieConfig auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		sessions:     sessions,
		cookieConfig: cookieConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest represents the request body for admin login
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	ExpiresIn int64  `json:"expiresIn"`
}

// SessionResponse describes the current session state
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	IsAdmin       bool   `json:"isAdmin,omitempty"`
	RemainingMs   int64  `json:"remainingMs,omitempty"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, sess, err := h.service.Login(r.Context(), req.Email, req.Password, middleware.GetClientIP(r))
	if err != nil {
		writeLoginError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, h.sessions.Duration(), h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Email:     sess.Email,
		IsAdmin:   false,
		ExpiresIn: h.sessions.Duration().Milliseconds(),
	})
}

// AdminLogin handles login with the shared admin password
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, sess, err := h.service.AdminLogin(r.Context(), req.Password, middleware.GetClientIP(r))
	if err != nil {
		writeLoginError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, h.sessions.Duration(), h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Email:     sess.Email,
		IsAdmin:   true,
		ExpiresIn: h.sessions.Duration().Milliseconds(),
	})
}

// writeLoginError maps login failures without leaking which check failed
// beyond the coarse category. Attempt counts never appear here.
func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, models.ErrAccountDisabled):
		pkghttp.WriteForbidden(w, "Your account is disabled. Please contact an administrator.")
	case errors.Is(err, models.ErrIPBlocked):
		pkghttp.WriteTooManyRequests(w, "ip_blocked", "Too many failed login attempts. Please try again later.")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// Logout destroys the current session if one exists. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.GetSessionCookie(r); token != "" {
		if sess, _, err := h.sessions.Resolve(token); err == nil {
			h.service.Logout(sess.ID)
		}
	}

	auth.ClearSessionCookie(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Session reports whether the request carries a live session. Expiry is
// detected (and the session destroyed) here as well as in the middleware, so
// polling this endpoint is what makes a stale cookie disappear.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := auth.GetSessionCookie(r)
	sess, remaining, err := h.sessions.Resolve(token)
	if err != nil {
		pkghttp.WriteJSON(w, http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		Email:         sess.Email,
		IsAdmin:       sess.IsAdmin(),
		RemainingMs:   remaining.Milliseconds(),
	})
}
