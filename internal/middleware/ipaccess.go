package middleware

import (
	"context"
	"net/http"

	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

type contextKey string

// ClientIPKey is the context key holding the resolved client IP
const ClientIPKey contextKey = "client_ip"

// IPAccessControl resolves the client IP and evaluates it against the
// admin-curated allow/block rules before anything else sees the request.
// Rejections use a distinct error code so the client can tell curated access
// control apart from the brute-force lockout.
func IPAccessControl(access *services.AccessService, ipConfig *pkghttp.IPConfig, auditLogger *pkglogger.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := pkghttp.ExtractClientIP(r, ipConfig)

			decision, err := access.Evaluate(r.Context(), clientIP)
			if err != nil {
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}
			if !decision.Allowed {
				auditLogger.LogAccessDecision("ip_rule_rejection", clientIP, false, decision.Reason)
				pkghttp.WriteError(w, http.StatusForbidden, "ip_not_authorized", "Access from your IP address is not authorized")
				return
			}

			ctx := context.WithValue(r.Context(), ClientIPKey, clientIP)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIP returns the client IP resolved by IPAccessControl, or the
// connection's remote address when the middleware did not run.
func GetClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ClientIPKey).(string); ok {
		return ip
	}
	return pkghttp.ExtractClientIP(r, nil)
}
