package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

func newTestRateLimitService(settingValue string, settingPresent bool, count int, capturedSince *time.Time) *RateLimitService {
	settings := NewSettingsService(&MockSettingRepository{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return settingValue, settingPresent, nil
		},
	}, testLogger(), testAuditLogger())

	logs := &MockAnalysisLogRepository{
		CountForUserSinceFunc: func(ctx context.Context, email string, since time.Time) (int, error) {
			if capturedSince != nil {
				*capturedSince = since
			}
			return count, nil
		},
	}

	return NewRateLimitService(logs, settings, testLogger())
}

func TestRateLimitService_UnderLimit(t *testing.T) {
	svc := newTestRateLimitService("", false, 19, nil)

	err := svc.Check(context.Background(), "alice@example.com")
	assert.NoError(t, err)
}

func TestRateLimitService_AtLimit(t *testing.T) {
	svc := newTestRateLimitService("", false, 20, nil)

	err := svc.Check(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestRateLimitService_OverLimit(t *testing.T) {
	svc := newTestRateLimitService("", false, 21, nil)

	err := svc.Check(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestRateLimitService_CustomCeiling(t *testing.T) {
	svc := newTestRateLimitService("5", true, 4, nil)
	assert.NoError(t, svc.Check(context.Background(), "alice@example.com"))

	svc = newTestRateLimitService("5", true, 5, nil)
	assert.ErrorIs(t, svc.Check(context.Background(), "alice@example.com"), models.ErrRateLimited)
}

func TestRateLimitService_MalformedSettingUsesDefault(t *testing.T) {
	for _, raw := range []string{"abc", "-3", "0", ""} {
		svc := newTestRateLimitService(raw, true, models.DefaultRateLimitPerHour-1, nil)
		assert.NoError(t, svc.Check(context.Background(), "alice@example.com"), "value %q", raw)

		svc = newTestRateLimitService(raw, true, models.DefaultRateLimitPerHour, nil)
		assert.ErrorIs(t, svc.Check(context.Background(), "alice@example.com"), models.ErrRateLimited, "value %q", raw)
	}
}

func TestRateLimitService_TrailingHourWindow(t *testing.T) {
	var since time.Time
	svc := newTestRateLimitService("", false, 0, &since)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return current })

	assert.NoError(t, svc.Check(context.Background(), "alice@example.com"))
	assert.Equal(t, current.Add(-time.Hour), since)
}
