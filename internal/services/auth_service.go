package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/models"
	pkgauth "github.com/tickerdesk/tickerdesk/pkg/auth"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// AuthService handles the authentication state machine: credential
// verification, the failed-login lockout hook, and session establishment.
type AuthService struct {
	repo        UserRepository
	lockout     *LockoutService
	sessions    *auth.SessionManager
	adminSecret []byte
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repo UserRepository,
	lockout *LockoutService,
	sessions *auth.SessionManager,
	adminPassword string,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		lockout:     lockout,
		sessions:    sessions,
		adminSecret: []byte(adminPassword),
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Login authenticates a user and establishes a session. The lockout tracker
// is consulted before credential evaluation: a blocked IP is rejected even
// with correct credentials, and every failed path records a lockout failure.
// The returned string is the signed session cookie token.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return s.failLogin(ctx, email, ipAddress, "empty_email", models.ErrInvalidCredentials)
	}

	blocked, err := s.lockout.IsBlocked(ctx, ipAddress)
	if err != nil {
		return "", nil, err
	}
	if blocked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_rejected",
			Email:         email,
			IPAddress:     ipAddress,
			FailureReason: "ip_blocked",
			Success:       false,
		})
		return "", nil, models.ErrIPBlocked
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.failLogin(ctx, email, ipAddress, "invalid_credentials", models.ErrInvalidCredentials)
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return "", nil, models.ErrInternalServer
	}

	// Disabled short-circuits before the password is even compared
	if user.Disabled {
		return s.failLogin(ctx, email, ipAddress, "account_disabled", models.ErrAccountDisabled)
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return s.failLogin(ctx, email, ipAddress, "invalid_credentials", models.ErrInvalidCredentials)
	}

	// Audit write happens before the session is established
	if err := s.repo.RecordLogin(ctx, user.ID, ipAddress, s.now()); err != nil {
		s.logger.Error("failed to record login audit fields", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", nil, models.ErrInternalServer
	}

	token, sess, err := s.sessions.CreateUserSession(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		Email:     user.Email,
		IPAddress: ipAddress,
		Success:   true,
	})

	return token, sess, nil
}

// failLogin records the lockout failure and emits the audit event, then
// returns the caller's error. The external message never distinguishes
// user-not-found from password-mismatch, and never exposes attempt counts.
func (s *AuthService) failLogin(ctx context.Context, email, ipAddress, reason string, cause error) (string, *auth.Session, error) {
	if _, err := s.lockout.RecordFailure(ctx, ipAddress); err != nil {
		// The lockout write failing should not mask the real outcome
		s.logger.Error("failed to record lockout failure", slog.String("ip_address", ipAddress), slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		Email:         email,
		IPAddress:     ipAddress,
		FailureReason: reason,
		Success:       false,
	})

	return "", nil, cause
}

// AdminLogin compares the shared admin password against the server-held
// secret in constant time and establishes the synthetic admin session. Like
// user login it consults the lockout tracker first. No audit IP is written to
// any user row because admin has none.
func (s *AuthService) AdminLogin(ctx context.Context, password, ipAddress string) (string, *auth.Session, error) {
	blocked, err := s.lockout.IsBlocked(ctx, ipAddress)
	if err != nil {
		return "", nil, err
	}
	if blocked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "admin_login_rejected",
			IPAddress:     ipAddress,
			FailureReason: "ip_blocked",
			Success:       false,
		})
		return "", nil, models.ErrIPBlocked
	}

	if subtle.ConstantTimeCompare([]byte(password), s.adminSecret) != 1 {
		if _, err := s.lockout.RecordFailure(ctx, ipAddress); err != nil {
			s.logger.Error("failed to record lockout failure", slog.String("ip_address", ipAddress), slog.Any("error", err))
		}
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "admin_login_failed",
			IPAddress:     ipAddress,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return "", nil, models.ErrInvalidCredentials
	}

	token, sess, err := s.sessions.CreateAdminSession()
	if err != nil {
		s.logger.Error("failed to create admin session", slog.Any("error", err))
		return "", nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "admin_login_success",
		IPAddress: ipAddress,
		Success:   true,
	})

	return token, sess, nil
}

// Logout destroys the session. Unconditional and idempotent: logging out an
// already-destroyed session is still a success.
func (s *AuthService) Logout(sessionID string) {
	if sessionID != "" {
		s.sessions.Destroy(sessionID)
	}
}
