package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/middleware"
)

// RegisterRoutes registers all /api routes. The caller has already mounted
// the IP access-control middleware above this tree; login endpoints get an
// additional transport-level per-IP throttle.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	accessHandler *handlers.AccessHandler,
	settingsHandler *handlers.SettingsHandler,
	analysisHandler *handlers.AnalysisHandler,
	marketHandler *handlers.MarketHandler,
	sessions *auth.SessionManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public auth endpoints
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/admin-login", authHandler.AdminLogin)
	router.Post("/auth/logout", authHandler.Logout)
	router.Get("/auth/session", authHandler.Session)

	// Market data requires no session, only passing the IP rules
	router.Get("/search/{query}", marketHandler.Search)
	router.Get("/stock/{symbol}", marketHandler.Stock)
	router.Get("/quote/{symbol}", marketHandler.Quote)

	// Session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions))

		r.Post("/analysis", analysisHandler.Analyze)

		// Admin-only
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin())

			r.Get("/admin/users", userHandler.List)
			r.Post("/admin/users", userHandler.Create)
			r.Put("/admin/users/{id}", userHandler.Update)
			r.Patch("/admin/users/{id}/toggle", userHandler.Toggle)
			r.Delete("/admin/users/{id}", userHandler.Delete)

			r.Get("/admin/blocked-ips", accessHandler.ListBlockedIPs)
			r.Delete("/admin/blocked-ips/{id}", accessHandler.UnblockIP)

			r.Get("/admin/ip-rules", accessHandler.ListRules)
			r.Post("/admin/ip-rules", accessHandler.CreateRule)
			r.Delete("/admin/ip-rules/{id}", accessHandler.DeleteRule)

			r.Get("/admin/settings", settingsHandler.Get)
			r.Put("/admin/settings", settingsHandler.Update)

			r.Get("/admin/analysis-logs", analysisHandler.Logs)
		})
	})
}
