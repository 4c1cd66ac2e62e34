package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/tickerdesk/tickerdesk/internal/models"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// SettingRepository defines the interface for key/value setting access
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// SettingsService reads and writes runtime-tunable settings. Values are stored
// as strings; unparseable or missing values fall back to compiled defaults so
// a bad row can never take the service down.
type SettingsService struct {
	repo        SettingRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo SettingRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *SettingsService {
	return &SettingsService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// RateLimitPerHour returns the effective per-user hourly analysis quota
func (s *SettingsService) RateLimitPerHour(ctx context.Context) (int, error) {
	raw, present, err := s.repo.Get(ctx, models.SettingRateLimitPerHour)
	if err != nil {
		s.logger.Error("failed to read rate limit setting", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	if !present {
		return models.DefaultRateLimitPerHour, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		s.logger.Warn("ignoring malformed rate limit setting", slog.String("value", raw))
		return models.DefaultRateLimitPerHour, nil
	}

	return limit, nil
}

// SetRateLimitPerHour updates the quota. Bounds keep an admin typo from
// locking everyone out or disabling the limit entirely.
func (s *SettingsService) SetRateLimitPerHour(ctx context.Context, limit int) error {
	if limit < 1 || limit > 1000 {
		return models.ErrBadRequest
	}

	if err := s.repo.Set(ctx, models.SettingRateLimitPerHour, strconv.Itoa(limit)); err != nil {
		s.logger.Error("failed to write rate limit setting", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("rate_limit_updated", map[string]string{
		"rate_limit_per_hour": strconv.Itoa(limit),
	})

	return nil
}
