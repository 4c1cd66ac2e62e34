package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/models"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// BlockedIPRepository defines the interface for lockout record persistence
type BlockedIPRepository interface {
	RecordFailure(ctx context.Context, ipAddress string, threshold int, at time.Time) (*models.BlockedIP, error)
	GetByIP(ctx context.Context, ipAddress string) (*models.BlockedIP, error)
	List(ctx context.Context) ([]*models.BlockedIP, error)
	Delete(ctx context.Context, id int) error
}

// LockoutService tracks failed login attempts per source IP and blocks an IP
// once it reaches the threshold. State lives in a single row per IP and the
// increment is one atomic upsert, so concurrent brute-force attempts never
// under-count.
type LockoutService struct {
	repo        BlockedIPRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewLockoutService creates a new LockoutService
func NewLockoutService(repo BlockedIPRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *LockoutService {
	return &LockoutService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// IsBlocked reports whether an IP has tripped the lockout threshold. Pure
// read; an absent record means unblocked.
func (s *LockoutService) IsBlocked(ctx context.Context, ipAddress string) (bool, error) {
	rec, err := s.repo.GetByIP(ctx, ipAddress)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		s.logger.Error("failed to check blocked ip", slog.String("ip_address", ipAddress), slog.Any("error", err))
		return false, models.ErrInternalServer
	}

	return rec.Blocked, nil
}

// RecordFailure registers one failed login attempt. The returned record tells
// the caller whether the IP is now blocked and how many attempts it has made;
// that detail is for admin visibility and server logs only, never for the
// login response body.
func (s *LockoutService) RecordFailure(ctx context.Context, ipAddress string) (*models.BlockedIP, error) {
	rec, err := s.repo.RecordFailure(ctx, ipAddress, models.LockoutThreshold, s.now())
	if err != nil {
		s.logger.Error("failed to record login failure", slog.String("ip_address", ipAddress), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if rec.Blocked {
		s.auditLogger.LogAccessDecision("ip_lockout", ipAddress, false, "failed login threshold reached")
	}

	return rec, nil
}

// List returns all lockout records for the admin table
func (s *LockoutService) List(ctx context.Context) ([]*models.BlockedIP, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blocked ips", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return records, nil
}

// Unblock deletes a lockout record entirely, returning the IP to the unknown
// state rather than the warning state.
func (s *LockoutService) Unblock(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to unblock ip", slog.Int("id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("ip_unblocked", map[string]string{"record_id": strconv.Itoa(id)})
	return nil
}
