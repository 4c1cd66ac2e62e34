package models

import "time"

// Rule types for IP access rules
const (
	IPRuleWhitelist = "whitelist"
	IPRuleBlock     = "block"
)

// IPRule is an admin-defined inclusive IP range with a type tag. Block rules
// are absolute; whitelist rules activate restrictive mode only when at least
// one exists. Overlapping ranges are permitted.
type IPRule struct {
	ID          int       `db:"id"`
	RuleType    string    `db:"rule_type"`
	StartIP     string    `db:"start_ip"`
	EndIP       string    `db:"end_ip"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}
