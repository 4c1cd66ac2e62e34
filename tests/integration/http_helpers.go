package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/config"
	"github.com/tickerdesk/tickerdesk/internal/database"
	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/market"
	middlewareCustom "github.com/tickerdesk/tickerdesk/internal/middleware"
	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/routes"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

const TestAdminPassword = "integration-admin-secret"

// CapturedCompletion records a prompt sent to the model
type CapturedCompletion struct {
	Prompt string
}

// MockLLM captures prompts and returns a canned analysis for test assertions
type MockLLM struct {
	Response    string
	Err         error
	Completions []CapturedCompletion
	mu          sync.Mutex
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Completions = append(m.Completions, CapturedCompletion{Prompt: prompt})
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return `{"trend":"bullish","confidence":72,"patternAnalysis":"Higher lows."}`, nil
}

func (m *MockLLM) Name() string { return "mock" }

// CompletionCount returns how many prompts reached the model
func (m *MockLLM) CompletionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Completions)
}

// MockMarketProvider serves canned market data without touching the network
type MockMarketProvider struct{}

func (m *MockMarketProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return []models.SearchResult{{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NMS", Type: "EQUITY"}}, nil
}

func (m *MockMarketProvider) Chart(ctx context.Context, symbol, rng, interval string) (*models.Chart, error) {
	return &models.Chart{
		Symbol:   symbol,
		Currency: "USD",
		Candles: []models.Candle{
			{Time: "2026-08-28", Open: 100, High: 103, Low: 99, Close: 102, Volume: 1000},
		},
	}, nil
}

func (m *MockMarketProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, Price: 102}, nil
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server   *httptest.Server
	DB       *database.DB
	LLM      *MockLLM
	Sessions *auth.SessionManager
	Config   *config.Config

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server with real database + mocked
// model and market providers
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionSecret:   "test-secret-32-characters-long-for-testing",
			AdminPassword:   TestAdminPassword,
			SessionDuration: 15 * time.Minute,
			SweepInterval:   time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
	}

	userRepo, blockedIPRepo, ipRuleRepo, settingRepo, analysisLogRepo := InitializeRepositories(db)

	auditLogger := pkglogger.NewAuditLogger(logger)
	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionDuration)

	lockoutService := services.NewLockoutService(blockedIPRepo, logger, auditLogger)
	accessService := services.NewAccessService(ipRuleRepo, logger, auditLogger)
	authService := services.NewAuthService(userRepo, lockoutService, sessions, cfg.Auth.AdminPassword, logger, auditLogger)
	userService := services.NewUserService(userRepo, logger, auditLogger)
	settingsService := services.NewSettingsService(settingRepo, logger, auditLogger)
	rateLimitService := services.NewRateLimitService(analysisLogRepo, settingsService, logger)

	mockLLM := &MockLLM{}
	analysisService := services.NewAnalysisService(mockLLM, userRepo, analysisLogRepo, rateLimitService, logger)

	marketService := market.NewService(&MockMarketProvider{}, time.Minute, logger)

	cookieConfig := auth.CookieConfig{Secure: false, SameSite: "lax"}
	authHandler := handlers.NewAuthHandler(authService, sessions, cookieConfig)
	userHandler := handlers.NewUserHandler(userService)
	accessHandler := handlers.NewAccessHandler(lockoutService, accessService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	marketHandler := handlers.NewMarketHandler(marketService)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewareCustom.IPAccessControl(accessService, ipConfig, auditLogger))
		routes.RegisterRoutes(api, authHandler, userHandler, accessHandler, settingsHandler, analysisHandler, marketHandler, sessions)
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:   server,
		DB:       db,
		LLM:      mockLLM,
		Sessions: sessions,
		Config:   cfg,
		logger:   logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithSession makes a request carrying the session cookie
func (ts *TestServer) RequestWithSession(method, path, sessionToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Cookie": auth.SessionCookieName + "=" + sessionToken,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractSessionCookie returns the value of the session cookie set by a login
// response, or "" when none was set
func ExtractSessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

// GetErrorCode extracts the error code from an error response
func GetErrorCode(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if code, ok := errResp["error"].(string); ok {
		return code, nil
	}
	return "", nil
}
