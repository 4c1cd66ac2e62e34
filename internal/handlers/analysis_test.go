package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

func newAnalysisHandler(provider *services.MockLLMProvider, users *services.MockUserRepository, logs *services.MockAnalysisLogRepository) *handlers.AnalysisHandler {
	logger := discardLogger()
	settings := services.NewSettingsService(&services.MockSettingRepository{}, logger, pkglogger.NewAuditLogger(logger))
	rateLimit := services.NewRateLimitService(logs, settings, logger)
	return handlers.NewAnalysisHandler(services.NewAnalysisService(provider, users, logs, rateLimit, logger))
}

func analysisRequest() handlers.AnalysisRequest {
	return handlers.AnalysisRequest{
		Symbol: "AAPL",
		Candles: []models.Candle{
			{Time: "2026-08-28", Open: 100, High: 103, Low: 99, Close: 102, Volume: 1000},
		},
	}
}

func TestAnalyze_Success(t *testing.T) {
	provider := &services.MockLLMProvider{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"trend":"bearish","confidence":61}`, nil
		},
	}
	logs := &services.MockAnalysisLogRepository{}

	handler := newAnalysisHandler(provider, &services.MockUserRepository{}, logs)
	req := handlers.NewTestRequest(t, "POST", "/analysis", analysisRequest())
	req = handlers.WithSessionContext(req, "user-1", "alice@example.com")

	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	var resp models.Analysis
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "bearish", resp.Trend)
	assert.Equal(t, 61.0, resp.Confidence)
}

func TestAnalyze_NoSession(t *testing.T) {
	handler := newAnalysisHandler(&services.MockLLMProvider{}, &services.MockUserRepository{}, &services.MockAnalysisLogRepository{})
	req := handlers.NewTestRequest(t, "POST", "/analysis", analysisRequest())

	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestAnalyze_RateLimited(t *testing.T) {
	logs := &services.MockAnalysisLogRepository{
		CountForUserSinceFunc: func(ctx context.Context, email string, since time.Time) (int, error) {
			return 20, nil
		},
	}
	provider := &services.MockLLMProvider{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			t.Fatal("provider must not be called for a rate-limited request")
			return "", nil
		},
	}

	handler := newAnalysisHandler(provider, &services.MockUserRepository{}, logs)
	req := handlers.NewTestRequest(t, "POST", "/analysis", analysisRequest())
	req = handlers.WithSessionContext(req, "user-1", "alice@example.com")

	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	handlers.AssertErrorResponse(t, w, 429, "rate_limited")
}

func TestAnalyze_MissingCandles(t *testing.T) {
	handler := newAnalysisHandler(&services.MockLLMProvider{}, &services.MockUserRepository{}, &services.MockAnalysisLogRepository{})
	req := handlers.NewTestRequest(t, "POST", "/analysis", handlers.AnalysisRequest{Symbol: "AAPL"})
	req = handlers.WithSessionContext(req, "user-1", "alice@example.com")

	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestAnalysisLogs_List(t *testing.T) {
	ip := "192.0.2.10"
	logs := &services.MockAnalysisLogRepository{
		ListFunc: func(ctx context.Context, limit int) ([]*models.AnalysisLog, error) {
			assert.Equal(t, 100, limit)
			return []*models.AnalysisLog{
				{ID: 2, UserEmail: "alice@example.com", Symbol: "AAPL", IP: &ip, CreatedAt: time.Now()},
				{ID: 1, UserEmail: "admin", Symbol: "1155.KL", CreatedAt: time.Now().Add(-time.Minute)},
			}, nil
		},
	}

	handler := newAnalysisHandler(&services.MockLLMProvider{}, &services.MockUserRepository{}, logs)
	req := handlers.NewTestRequest(t, "GET", "/admin/analysis-logs", nil)

	w := httptest.NewRecorder()
	handler.Logs(w, req)

	var resp []handlers.AnalysisLogResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "alice@example.com", resp[0].UserEmail)
	require.NotNil(t, resp[0].IP)
	assert.Equal(t, "admin", resp[1].UserEmail)
	assert.Nil(t, resp[1].IP)
}
