package models

import "time"

// LockoutThreshold is the number of failed login attempts from a single IP
// before it is blocked.
const LockoutThreshold = 3

// BlockedIP is one row per distinct source IP that has ever failed a login.
// Once Blocked is set, further failures no longer increment Attempts and the
// IP is rejected before credential checking.
type BlockedIP struct {
	ID            int        `db:"id"`
	IPAddress     string     `db:"ip_address"`
	Attempts      int        `db:"attempts"`
	Blocked       bool       `db:"blocked"`
	LastAttemptAt time.Time  `db:"last_attempt_at"`
	BlockedAt     *time.Time `db:"blocked_at"`
}
