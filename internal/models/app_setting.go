package models

// Setting keys. The settings table is an open key space; these are the keys
// the server reads today.
const (
	SettingRateLimitPerHour = "rate_limit_per_hour"
)

// DefaultRateLimitPerHour applies when the setting is unset or unparseable.
const DefaultRateLimitPerHour = 20

// AppSetting is a single key/value configuration pair, mutable by admin only.
type AppSetting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
