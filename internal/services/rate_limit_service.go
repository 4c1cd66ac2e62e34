package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

// AnalysisLogRepository defines the interface for analysis log access
type AnalysisLogRepository interface {
	Insert(ctx context.Context, log *models.AnalysisLog) error
	CountForUserSince(ctx context.Context, email string, since time.Time) (int, error)
	List(ctx context.Context, limit int) ([]*models.AnalysisLog, error)
}

// RateLimitService enforces the per-user hourly analysis quota. The window is
// a trailing 60 minutes counted from the analysis log, not a calendar hour,
// so the quota refills gradually as old requests age out.
type RateLimitService struct {
	logs     AnalysisLogRepository
	settings *SettingsService
	logger   *slog.Logger
	now      func() time.Time
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(logs AnalysisLogRepository, settings *SettingsService, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		logs:     logs,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *RateLimitService) SetClock(now func() time.Time) {
	s.now = now
}

// Check returns ErrRateLimited when the user has already reached the hourly
// quota. The request being checked is not itself counted until it succeeds,
// so with a limit of N the Nth request in a window passes and the N+1th does
// not.
func (s *RateLimitService) Check(ctx context.Context, email string) error {
	limit, err := s.settings.RateLimitPerHour(ctx)
	if err != nil {
		return err
	}

	since := s.now().Add(-time.Hour)
	count, err := s.logs.CountForUserSince(ctx, email, since)
	if err != nil {
		s.logger.Error("failed to count analysis requests", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if count >= limit {
		return models.ErrRateLimited
	}

	return nil
}
