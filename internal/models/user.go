package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Disabled     bool
	LastIP       *string    // IP of the most recent successful login
	LastLoginAt  *time.Time // Timestamp of the most recent successful login
	RequestCount int        // Lifetime analysis request counter, distinct from the hourly window
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
