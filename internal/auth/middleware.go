package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/tickerdesk/tickerdesk/internal/models"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the resolved session in context
	SessionContextKey contextKey = "session"
)

// RequireSession re-verifies the absolute session window on every request and
// injects the live session into context. The route handlers behind it are the
// enforcement point: a session that expired between the client's last poll and
// this request is rejected here with a session_expired code so the client can
// force a re-login rather than show a generic login wall.
func RequireSession(m *SessionManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _, err := m.Resolve(GetSessionCookie(r))
			if err != nil {
				if errors.Is(err, models.ErrSessionExpired) {
					pkghttp.WriteSessionExpired(w, "Session expired, please log in again")
					return
				}
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin session kind. Must be used after
// RequireSession. A valid non-admin session gets 403, distinct from 401.
func RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSessionFromContext(r)
			if sess == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !sess.IsAdmin() {
				pkghttp.WriteForbidden(w, "Admin privileges required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the resolved session from the request context
func GetSessionFromContext(r *http.Request) *Session {
	sess, ok := r.Context().Value(SessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return sess
}
