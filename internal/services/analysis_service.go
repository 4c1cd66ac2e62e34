package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/llm"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

// AnalysisService runs model-backed technical analysis. Ordering matters:
// the rate limit is checked first, the lifetime request counter is incremented
// before the provider call (so abandoned calls still count against it), and
// the windowed analysis log row is written only after the provider succeeds.
type AnalysisService struct {
	provider  llm.Provider
	users     UserRepository
	logs      AnalysisLogRepository
	rateLimit *RateLimitService
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(
	provider llm.Provider,
	users UserRepository,
	logs AnalysisLogRepository,
	rateLimit *RateLimitService,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		provider:  provider,
		users:     users,
		logs:      logs,
		rateLimit: rateLimit,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze produces an analysis for the given symbol and candle data on behalf
// of the session. Admin sessions bypass the rate limit and the lifetime
// counter (admin has no user row); their requests are still logged under the
// "admin" email.
func (s *AnalysisService) Analyze(ctx context.Context, sess *auth.Session, symbol string, candles []models.Candle, quote *models.Quote, ipAddress string) (*models.Analysis, error) {
	if symbol == "" || len(candles) == 0 {
		return nil, models.ErrBadRequest
	}

	if !sess.IsAdmin() {
		if err := s.rateLimit.Check(ctx, sess.Email); err != nil {
			return nil, err
		}

		if err := s.users.IncrementRequestCount(ctx, sess.UserID); err != nil {
			s.logger.Error("failed to increment request count", slog.String("user_id", sess.UserID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	prompt := llm.BuildAnalysisPrompt(symbol, candles, quote)
	content, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("analysis provider call failed",
			slog.String("provider", s.provider.Name()),
			slog.String("symbol", symbol),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	analysis := llm.ParseAnalysis(content)

	logRow := &models.AnalysisLog{
		UserEmail: sess.Email,
		Symbol:    symbol,
		CreatedAt: s.now(),
	}
	if ipAddress != "" {
		logRow.IP = &ipAddress
	}
	if err := s.logs.Insert(ctx, logRow); err != nil {
		// The user already has their analysis; losing the log row costs us
		// rate-limit accuracy, not correctness of the response.
		s.logger.Error("failed to write analysis log", slog.String("symbol", symbol), slog.Any("error", err))
	}

	return analysis, nil
}

// RecentLogs returns the newest analysis log rows for the admin dashboard
func (s *AnalysisService) RecentLogs(ctx context.Context, limit int) ([]*models.AnalysisLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	logs, err := s.logs.List(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list analysis logs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return logs, nil
}
