package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tickerdesk/tickerdesk/internal/database"
)

// SettingRepository handles database operations for the app_settings key space
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *database.DB) *SettingRepository {
	return &SettingRepository{pool: db.Pool}
}

// Get returns the value for a key. The second return value reports presence,
// distinguishing "unset" from an empty value.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM app_settings WHERE key = $1`

	var value string
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, database.MapPostgresError(err)
	}

	return value, true, nil
}

// Set upserts a key/value pair
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
	`

	_, err := r.pool.Exec(ctx, query, key, value)
	return database.MapPostgresError(err)
}
