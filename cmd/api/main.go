package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/background"
	"github.com/tickerdesk/tickerdesk/internal/config"
	"github.com/tickerdesk/tickerdesk/internal/database"
	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/llm"
	"github.com/tickerdesk/tickerdesk/internal/market"
	middlewareCustom "github.com/tickerdesk/tickerdesk/internal/middleware"
	"github.com/tickerdesk/tickerdesk/internal/repositories"
	"github.com/tickerdesk/tickerdesk/internal/routes"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	blockedIPRepo := repositories.NewBlockedIPRepository(db)
	ipRuleRepo := repositories.NewIPRuleRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	analysisLogRepo := repositories.NewAnalysisLogRepository(db)

	// Security services
	auditLogger := pkglogger.NewAuditLogger(logger)
	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionDuration)
	sweepManager := background.NewSweepManager(sessions, logger, cfg.Auth.SweepInterval)

	lockoutService := services.NewLockoutService(blockedIPRepo, logger, auditLogger)
	accessService := services.NewAccessService(ipRuleRepo, logger, auditLogger)
	authService := services.NewAuthService(userRepo, lockoutService, sessions, cfg.Auth.AdminPassword, logger, auditLogger)
	userService := services.NewUserService(userRepo, logger, auditLogger)
	settingsService := services.NewSettingsService(settingRepo, logger, auditLogger)
	rateLimitService := services.NewRateLimitService(analysisLogRepo, settingsService, logger)

	// Market data and analysis
	marketService := market.NewService(market.NewYahooClient(cfg.Market), cfg.Market.CacheTTL, logger)

	llmProvider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		logger.Error("failed to initialize analysis provider", slog.Any("error", err))
		os.Exit(1)
	}
	analysisService := services.NewAnalysisService(llmProvider, userRepo, analysisLogRepo, rateLimitService, logger)

	// Handlers
	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Server.Env == "production",
		SameSite: "lax",
	}
	authHandler := handlers.NewAuthHandler(authService, sessions, cookieConfig)
	userHandler := handlers.NewUserHandler(userService)
	accessHandler := handlers.NewAccessHandler(lockoutService, accessService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	marketHandler := handlers.NewMarketHandler(marketService)

	// Setup router
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Everything under /api passes the IP rule engine first
	router.Route("/api", func(r chi.Router) {
		r.Use(middlewareCustom.IPAccessControl(accessService, ipConfig, auditLogger))
		routes.RegisterRoutes(r, authHandler, userHandler, accessHandler, settingsHandler, analysisHandler, marketHandler, sessions)
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start session sweep task
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweepManager.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweepManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
