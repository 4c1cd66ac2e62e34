package models

import "time"

// AnalysisLog is one immutable row per analysis request. It doubles as the
// audit trail and as the source for the trailing-hour rate-limit count.
type AnalysisLog struct {
	ID        int64     `db:"id"`
	UserEmail string    `db:"user_email"`
	Symbol    string    `db:"symbol"`
	IP        *string   `db:"ip"`
	CreatedAt time.Time `db:"created_at"`
}
