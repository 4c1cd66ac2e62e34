package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/pkg/ipv4"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

// IPRuleRepository defines the interface for IP access rule persistence
type IPRuleRepository interface {
	List(ctx context.Context) ([]*models.IPRule, error)
	Create(ctx context.Context, rule *models.IPRule) (*models.IPRule, error)
	Delete(ctx context.Context, id int) error
}

// Decision is the outcome of evaluating an IP against the rule set
type Decision struct {
	Allowed bool
	Reason  string
}

// AccessService evaluates admin-curated allow/block IP ranges. Evaluation is
// read-only; rules change only through Add/Delete.
type AccessService struct {
	repo        IPRuleRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAccessService creates a new AccessService
func NewAccessService(repo IPRuleRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AccessService {
	return &AccessService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Evaluate applies the rule set to a source IP. Block rules are a hard
// denylist and always win. Whitelist rules only activate restrictive mode when
// at least one exists, so adding a single whitelist entry is an explicit
// opt-in to rejecting everything unlisted. An unparseable IP is rejected when
// restrictive mode is active and allowed otherwise; that asymmetry is part of
// the contract.
func (s *AccessService) Evaluate(ctx context.Context, ipAddress string) (Decision, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to load ip rules", slog.Any("error", err))
		return Decision{}, models.ErrInternalServer
	}

	var blockRules, whitelistRules []*models.IPRule
	for _, rule := range rules {
		switch rule.RuleType {
		case models.IPRuleBlock:
			blockRules = append(blockRules, rule)
		case models.IPRuleWhitelist:
			whitelistRules = append(whitelistRules, rule)
		}
	}

	addr, parseErr := ipv4.Parse(ipAddress)
	if parseErr != nil {
		if len(whitelistRules) > 0 {
			// Fail closed: restrictive mode is active and we cannot evaluate
			s.auditLogger.LogAccessDecision("ip_rule_reject", ipAddress, false, "unparseable address in restrictive mode")
			return Decision{Allowed: false, Reason: "not authorized"}, nil
		}
		// Fail open: no admin has opted in to restrictive mode
		return Decision{Allowed: true}, nil
	}

	for _, rule := range blockRules {
		if matchRule(addr, rule) {
			s.auditLogger.LogAccessDecision("ip_rule_reject", ipAddress, false, "matched block rule")
			return Decision{Allowed: false, Reason: "not authorized"}, nil
		}
	}

	if len(whitelistRules) > 0 {
		for _, rule := range whitelistRules {
			if matchRule(addr, rule) {
				return Decision{Allowed: true}, nil
			}
		}
		s.auditLogger.LogAccessDecision("ip_rule_reject", ipAddress, false, "no whitelist match")
		return Decision{Allowed: false, Reason: "not authorized"}, nil
	}

	return Decision{Allowed: true}, nil
}

// matchRule tests range membership. Rules whose stored bounds no longer parse
// are skipped rather than failing the whole evaluation.
func matchRule(addr ipv4.Addr, rule *models.IPRule) bool {
	start, err := ipv4.Parse(rule.StartIP)
	if err != nil {
		return false
	}
	end, err := ipv4.Parse(rule.EndIP)
	if err != nil {
		return false
	}
	return addr.InRange(start, end)
}

// ListRules returns all rules for the admin table
func (s *AccessService) ListRules(ctx context.Context) ([]*models.IPRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list ip rules", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return rules, nil
}

// AddRule validates and inserts a rule. Both bounds must be IPv4; overlaps
// with existing rules are permitted.
func (s *AccessService) AddRule(ctx context.Context, rule *models.IPRule) (*models.IPRule, error) {
	if rule.RuleType != models.IPRuleWhitelist && rule.RuleType != models.IPRuleBlock {
		return nil, models.ErrBadRequest
	}

	start, err := ipv4.Parse(rule.StartIP)
	if err != nil {
		return nil, models.ErrBadRequest
	}
	end, err := ipv4.Parse(rule.EndIP)
	if err != nil {
		return nil, models.ErrBadRequest
	}
	if start > end {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("failed to create ip rule", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("ip_rule_created", map[string]string{
		"rule_type": created.RuleType,
		"start_ip":  created.StartIP,
		"end_ip":    created.EndIP,
	})

	return created, nil
}

// DeleteRule removes a rule by id
func (s *AccessService) DeleteRule(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete ip rule", slog.Int("id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAdminAction("ip_rule_deleted", map[string]string{"rule_id": strconv.Itoa(id)})
	return nil
}
