package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/pkg/auth"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
	RecordLogin(ctx context.Context, id, ip string, at time.Time) error
	IncrementRequestCount(ctx context.Context, id string) error
}

// UserService handles the admin-facing user management surface
type UserService struct {
	repo        UserRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// List returns all users, newest first
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// Get returns a single user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// Create adds a new user. The email is lowercased before storage and the
// password is hashed; duplicate emails surface as a conflict.
func (s *UserService) Create(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrBadRequest
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("user_created", map[string]string{
		"user_id": user.ID,
		"email":   pkglogger.SanitizedEmail(user.Email),
	})

	return user, nil
}

// UpdatePassword replaces a user's password hash
func (s *UserService) UpdatePassword(ctx context.Context, id, password string) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user.PasswordHash = hash
	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("user_password_updated", map[string]string{
		"user_id": id,
	})

	return updated, nil
}

// SetDisabled toggles the disabled flag. Disabling does not destroy an
// existing session; it takes effect at the next login attempt.
func (s *UserService) SetDisabled(ctx context.Context, id string, disabled bool) (*models.User, error) {
	user, err := s.repo.SetDisabled(ctx, id, disabled)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to set user disabled flag", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	action := "user_enabled"
	if disabled {
		action = "user_disabled"
	}
	s.auditLogger.LogAdminAction(action, map[string]string{
		"user_id": id,
	})

	return user, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("user_deleted", map[string]string{
		"user_id": id,
	})

	return nil
}
