package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/models"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc               func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc            func(ctx context.Context, email string) (*models.User, error)
	ListFunc                  func(ctx context.Context) ([]*models.User, error)
	CreateFunc                func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc                func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetDisabledFunc           func(ctx context.Context, id string, disabled bool) (*models.User, error)
	DeleteFunc                func(ctx context.Context, id string) error
	RecordLoginFunc           func(ctx context.Context, id, ip string, at time.Time) error
	IncrementRequestCountFunc func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetDisabled(ctx context.Context, id string, disabled bool) (*models.User, error) {
	if m.SetDisabledFunc != nil {
		return m.SetDisabledFunc(ctx, id, disabled)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id, ip string, at time.Time) error {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, id, ip, at)
	}
	return nil
}

func (m *MockUserRepository) IncrementRequestCount(ctx context.Context, id string) error {
	if m.IncrementRequestCountFunc != nil {
		return m.IncrementRequestCountFunc(ctx, id)
	}
	return nil
}

// MockBlockedIPRepository implements BlockedIPRepository for testing
type MockBlockedIPRepository struct {
	RecordFailureFunc func(ctx context.Context, ipAddress string, threshold int, at time.Time) (*models.BlockedIP, error)
	GetByIPFunc       func(ctx context.Context, ipAddress string) (*models.BlockedIP, error)
	ListFunc          func(ctx context.Context) ([]*models.BlockedIP, error)
	DeleteFunc        func(ctx context.Context, id int) error
}

func (m *MockBlockedIPRepository) RecordFailure(ctx context.Context, ipAddress string, threshold int, at time.Time) (*models.BlockedIP, error) {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, ipAddress, threshold, at)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBlockedIPRepository) GetByIP(ctx context.Context, ipAddress string) (*models.BlockedIP, error) {
	if m.GetByIPFunc != nil {
		return m.GetByIPFunc(ctx, ipAddress)
	}
	return nil, models.ErrNotFound
}

func (m *MockBlockedIPRepository) List(ctx context.Context) ([]*models.BlockedIP, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.BlockedIP{}, nil
}

func (m *MockBlockedIPRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockIPRuleRepository implements IPRuleRepository for testing
type MockIPRuleRepository struct {
	ListFunc   func(ctx context.Context) ([]*models.IPRule, error)
	CreateFunc func(ctx context.Context, rule *models.IPRule) (*models.IPRule, error)
	DeleteFunc func(ctx context.Context, id int) error
}

func (m *MockIPRuleRepository) List(ctx context.Context) ([]*models.IPRule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.IPRule{}, nil
}

func (m *MockIPRuleRepository) Create(ctx context.Context, rule *models.IPRule) (*models.IPRule, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	return nil, models.ErrInternalServer
}

func (m *MockIPRuleRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSettingRepository implements SettingRepository for testing
type MockSettingRepository struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", false, nil
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

// MockAnalysisLogRepository implements AnalysisLogRepository for testing
type MockAnalysisLogRepository struct {
	InsertFunc            func(ctx context.Context, log *models.AnalysisLog) error
	CountForUserSinceFunc func(ctx context.Context, email string, since time.Time) (int, error)
	ListFunc              func(ctx context.Context, limit int) ([]*models.AnalysisLog, error)
}

func (m *MockAnalysisLogRepository) Insert(ctx context.Context, log *models.AnalysisLog) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, log)
	}
	return nil
}

func (m *MockAnalysisLogRepository) CountForUserSince(ctx context.Context, email string, since time.Time) (int, error) {
	if m.CountForUserSinceFunc != nil {
		return m.CountForUserSinceFunc(ctx, email, since)
	}
	return 0, nil
}

func (m *MockAnalysisLogRepository) List(ctx context.Context, limit int) ([]*models.AnalysisLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*models.AnalysisLog{}, nil
}

// MockLLMProvider implements llm.Provider for testing
type MockLLMProvider struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLMProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "{}", nil
}

func (m *MockLLMProvider) Name() string {
	return "mock"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}
