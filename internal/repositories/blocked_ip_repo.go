package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tickerdesk/tickerdesk/internal/database"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

// BlockedIPRepository handles database operations for failed-login lockout records
type BlockedIPRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedIPRepository creates a new BlockedIPRepository
func NewBlockedIPRepository(db *database.DB) *BlockedIPRepository {
	return &BlockedIPRepository{pool: db.Pool}
}

const blockedIPColumns = `id, ip_address, attempts, blocked, last_attempt_at, blocked_at`

func scanBlockedIPRow(scanner rowScanner) (*models.BlockedIP, error) {
	var rec models.BlockedIP

	err := scanner.Scan(
		&rec.ID, &rec.IPAddress, &rec.Attempts, &rec.Blocked,
		&rec.LastAttemptAt, &rec.BlockedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

// RecordFailure registers one failed login attempt from an IP as a single
// atomic upsert, so concurrent failures from the same IP never under-count.
// Once blocked, the counter stops incrementing; the call stays idempotent
// apart from the last_attempt_at stamp.
func (r *BlockedIPRepository) RecordFailure(ctx context.Context, ipAddress string, threshold int, at time.Time) (*models.BlockedIP, error) {
	query := `
		INSERT INTO blocked_ips (ip_address, attempts, blocked, last_attempt_at, blocked_at)
		VALUES ($1, 1, 1 >= $2, $3, CASE WHEN 1 >= $2 THEN $3 END)
		ON CONFLICT (ip_address) DO UPDATE SET
			attempts = CASE WHEN blocked_ips.blocked THEN blocked_ips.attempts ELSE blocked_ips.attempts + 1 END,
			blocked = blocked_ips.blocked OR blocked_ips.attempts + 1 >= $2,
			blocked_at = CASE
				WHEN blocked_ips.blocked THEN blocked_ips.blocked_at
				WHEN blocked_ips.attempts + 1 >= $2 THEN $3
			END,
			last_attempt_at = $3
		RETURNING ` + blockedIPColumns

	return scanBlockedIPRow(r.pool.QueryRow(ctx, query, ipAddress, threshold, at))
}

// GetByIP returns the lockout record for an IP, or models.ErrNotFound
func (r *BlockedIPRepository) GetByIP(ctx context.Context, ipAddress string) (*models.BlockedIP, error) {
	query := `SELECT ` + blockedIPColumns + ` FROM blocked_ips WHERE ip_address = $1`

	return scanBlockedIPRow(r.pool.QueryRow(ctx, query, ipAddress))
}

// List returns all lockout records, most recent attempt first
func (r *BlockedIPRepository) List(ctx context.Context) ([]*models.BlockedIP, error) {
	query := `SELECT ` + blockedIPColumns + ` FROM blocked_ips ORDER BY last_attempt_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked ips: %w", err)
	}

	return scanBlockedIPRows(rows)
}

func scanBlockedIPRows(rows pgx.Rows) ([]*models.BlockedIP, error) {
	defer rows.Close()

	records := make([]*models.BlockedIP, 0)

	for rows.Next() {
		rec, err := scanBlockedIPRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blocked ip: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Delete removes a lockout record entirely, returning the IP to the unknown
// state. This is the admin unblock path.
func (r *BlockedIPRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM blocked_ips WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Reset removes a lockout record by IP. Not called from the login path:
// successful logins deliberately leave the record in place.
func (r *BlockedIPRepository) Reset(ctx context.Context, ipAddress string) error {
	query := `DELETE FROM blocked_ips WHERE ip_address = $1`

	_, err := r.pool.Exec(ctx, query, ipAddress)
	return database.MapPostgresError(err)
}
