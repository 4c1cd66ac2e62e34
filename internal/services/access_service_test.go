package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

func newTestAccessService(rules []*models.IPRule) *AccessService {
	repo := &MockIPRuleRepository{
		ListFunc: func(ctx context.Context) ([]*models.IPRule, error) {
			return rules, nil
		},
	}
	return NewAccessService(repo, testLogger(), testAuditLogger())
}

func rule(ruleType, start, end string) *models.IPRule {
	return &models.IPRule{RuleType: ruleType, StartIP: start, EndIP: end}
}

func TestAccessService_NoRulesAllowsEverything(t *testing.T) {
	svc := newTestAccessService(nil)

	d, err := svc.Evaluate(context.Background(), "8.8.8.8")
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAccessService_BlockRuleWinsOverWhitelist(t *testing.T) {
	svc := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleWhitelist, "10.0.0.0", "10.0.0.255"),
		rule(models.IPRuleBlock, "10.0.0.5", "10.0.0.5"),
	})

	d, err := svc.Evaluate(context.Background(), "10.0.0.5")
	assert.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = svc.Evaluate(context.Background(), "10.0.0.6")
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAccessService_WhitelistActivatesRestrictiveMode(t *testing.T) {
	svc := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleWhitelist, "10.0.0.0", "10.0.0.255"),
	})

	d, err := svc.Evaluate(context.Background(), "10.0.0.5")
	assert.NoError(t, err)
	assert.True(t, d.Allowed)

	// no block rule mentions it, but it is outside the whitelist
	d, err = svc.Evaluate(context.Background(), "8.8.8.8")
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestAccessService_BlockOnlyRulesStayPermissive(t *testing.T) {
	svc := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleBlock, "203.0.113.0", "203.0.113.255"),
	})

	d, err := svc.Evaluate(context.Background(), "203.0.113.10")
	assert.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = svc.Evaluate(context.Background(), "8.8.8.8")
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAccessService_UnparseableIPFailClosedUnderWhitelist(t *testing.T) {
	restrictive := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleWhitelist, "10.0.0.0", "10.0.0.255"),
	})
	permissive := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleBlock, "203.0.113.0", "203.0.113.255"),
	})

	for _, bad := range []string{"", "not-an-ip", "::1", "10.0.0"} {
		d, err := restrictive.Evaluate(context.Background(), bad)
		assert.NoError(t, err)
		assert.False(t, d.Allowed, "restrictive mode must reject %q", bad)

		d, err = permissive.Evaluate(context.Background(), bad)
		assert.NoError(t, err)
		assert.True(t, d.Allowed, "permissive mode must allow %q", bad)
	}
}

func TestAccessService_RangeBoundariesInclusive(t *testing.T) {
	svc := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleWhitelist, "10.0.0.0", "10.0.0.255"),
	})

	for _, ip := range []string{"10.0.0.0", "10.0.0.255"} {
		d, err := svc.Evaluate(context.Background(), ip)
		assert.NoError(t, err)
		assert.True(t, d.Allowed, "boundary %s must match", ip)
	}

	d, err := svc.Evaluate(context.Background(), "10.0.1.0")
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestAccessService_AddRuleValidation(t *testing.T) {
	created := 0
	repo := &MockIPRuleRepository{
		CreateFunc: func(ctx context.Context, r *models.IPRule) (*models.IPRule, error) {
			created++
			r.ID = created
			return r, nil
		},
	}
	svc := NewAccessService(repo, testLogger(), testAuditLogger())
	ctx := context.Background()

	_, err := svc.AddRule(ctx, rule("allow", "10.0.0.0", "10.0.0.255"))
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.AddRule(ctx, rule(models.IPRuleWhitelist, "nope", "10.0.0.255"))
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.AddRule(ctx, rule(models.IPRuleWhitelist, "10.0.0.255", "10.0.0.0"))
	assert.ErrorIs(t, err, models.ErrBadRequest)

	r, err := svc.AddRule(ctx, rule(models.IPRuleBlock, "10.0.0.0", "10.0.0.255"))
	assert.NoError(t, err)
	assert.Equal(t, 1, r.ID)
}

func TestAccessService_OverlappingRangesPermitted(t *testing.T) {
	svc := newTestAccessService([]*models.IPRule{
		rule(models.IPRuleWhitelist, "10.0.0.0", "10.0.0.255"),
		rule(models.IPRuleWhitelist, "10.0.0.100", "10.0.1.255"),
	})

	d, err := svc.Evaluate(context.Background(), "10.0.0.150")
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
}
