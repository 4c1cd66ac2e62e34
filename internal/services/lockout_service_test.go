package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

// memBlockedIPRepo is a stateful in-memory stand-in honoring the repository's
// upsert contract: increment unless blocked, transition at the threshold.
type memBlockedIPRepo struct {
	records map[string]*models.BlockedIP
	nextID  int
}

func newMemBlockedIPRepo() *memBlockedIPRepo {
	return &memBlockedIPRepo{records: make(map[string]*models.BlockedIP), nextID: 1}
}

func (r *memBlockedIPRepo) RecordFailure(ctx context.Context, ipAddress string, threshold int, at time.Time) (*models.BlockedIP, error) {
	rec, ok := r.records[ipAddress]
	if !ok {
		rec = &models.BlockedIP{ID: r.nextID, IPAddress: ipAddress}
		r.nextID++
		r.records[ipAddress] = rec
	}
	if !rec.Blocked {
		rec.Attempts++
		if rec.Attempts >= threshold {
			rec.Blocked = true
			at := at
			rec.BlockedAt = &at
		}
	}
	rec.LastAttemptAt = at
	rc := *rec
	return &rc, nil
}

func (r *memBlockedIPRepo) GetByIP(ctx context.Context, ipAddress string) (*models.BlockedIP, error) {
	rec, ok := r.records[ipAddress]
	if !ok {
		return nil, models.ErrNotFound
	}
	rc := *rec
	return &rc, nil
}

func (r *memBlockedIPRepo) List(ctx context.Context) ([]*models.BlockedIP, error) {
	out := make([]*models.BlockedIP, 0, len(r.records))
	for _, rec := range r.records {
		rc := *rec
		out = append(out, &rc)
	}
	return out, nil
}

func (r *memBlockedIPRepo) Delete(ctx context.Context, id int) error {
	for ip, rec := range r.records {
		if rec.ID == id {
			delete(r.records, ip)
			return nil
		}
	}
	return models.ErrNotFound
}

func newTestLockoutService(repo BlockedIPRepository) *LockoutService {
	return NewLockoutService(repo, testLogger(), testAuditLogger())
}

func TestLockoutService_ThresholdOnThirdAttempt(t *testing.T) {
	svc := newTestLockoutService(newMemBlockedIPRepo())
	ctx := context.Background()

	rec, err := svc.RecordFailure(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
	assert.False(t, rec.Blocked)

	rec, err = svc.RecordFailure(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, 2, rec.Attempts)
	assert.False(t, rec.Blocked)

	rec, err = svc.RecordFailure(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, 3, rec.Attempts)
	assert.True(t, rec.Blocked)
	assert.NotNil(t, rec.BlockedAt)
}

func TestLockoutService_IdempotentOnceBlocked(t *testing.T) {
	svc := newTestLockoutService(newMemBlockedIPRepo())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordFailure(ctx, "203.0.113.7")
		assert.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		rec, err := svc.RecordFailure(ctx, "203.0.113.7")
		assert.NoError(t, err)
		assert.True(t, rec.Blocked)
		assert.Equal(t, 3, rec.Attempts)
	}
}

func TestLockoutService_IsBlocked(t *testing.T) {
	repo := newMemBlockedIPRepo()
	svc := newTestLockoutService(repo)
	ctx := context.Background()

	// no record at all
	blocked, err := svc.IsBlocked(ctx, "198.51.100.1")
	assert.NoError(t, err)
	assert.False(t, blocked)

	// record exists but under threshold
	_, _ = svc.RecordFailure(ctx, "198.51.100.1")
	_, _ = svc.RecordFailure(ctx, "198.51.100.1")
	blocked, err = svc.IsBlocked(ctx, "198.51.100.1")
	assert.NoError(t, err)
	assert.False(t, blocked)

	_, _ = svc.RecordFailure(ctx, "198.51.100.1")
	blocked, err = svc.IsBlocked(ctx, "198.51.100.1")
	assert.NoError(t, err)
	assert.True(t, blocked)
}

func TestLockoutService_UnblockDeletesRecord(t *testing.T) {
	repo := newMemBlockedIPRepo()
	svc := newTestLockoutService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.RecordFailure(ctx, "203.0.113.7")
	}

	recs, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)

	assert.NoError(t, svc.Unblock(ctx, recs[0].ID))

	// record is gone entirely, not reset to a warning state
	blocked, err := svc.IsBlocked(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.False(t, blocked)
	_, err = repo.GetByIP(ctx, "203.0.113.7")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLockoutService_UnblockUnknownID(t *testing.T) {
	svc := newTestLockoutService(newMemBlockedIPRepo())

	err := svc.Unblock(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLockoutService_IPsTrackedIndependently(t *testing.T) {
	svc := newTestLockoutService(newMemBlockedIPRepo())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.RecordFailure(ctx, "203.0.113.7")
	}
	_, _ = svc.RecordFailure(ctx, "203.0.113.8")

	blocked, _ := svc.IsBlocked(ctx, "203.0.113.7")
	assert.True(t, blocked)
	blocked, _ = svc.IsBlocked(ctx, "203.0.113.8")
	assert.False(t, blocked)
}
