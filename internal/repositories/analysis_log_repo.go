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

// AnalysisLogRepository handles database operations for the analysis audit trail
type AnalysisLogRepository struct {
	pool *pgxpool.Pool
}

// NewAnalysisLogRepository creates a new AnalysisLogRepository
func NewAnalysisLogRepository(db *database.DB) *AnalysisLogRepository {
	return &AnalysisLogRepository{pool: db.Pool}
}

// Insert records one analysis request. Rows are immutable once written.
func (r *AnalysisLogRepository) Insert(ctx context.Context, log *models.AnalysisLog) error {
	query := `
		INSERT INTO analysis_logs (user_email, symbol, ip, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, query, log.UserEmail, log.Symbol, log.IP, log.CreatedAt)
	return database.MapPostgresError(err)
}

// CountForUserSince returns the number of analysis rows for an email with
// created_at at or after the given time. This is the sliding rate-limit window.
func (r *AnalysisLogRepository) CountForUserSince(ctx context.Context, email string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM analysis_logs
		WHERE user_email = $1 AND created_at >= $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, email, since).Scan(&count)
	return count, err
}

// List returns the most recent log rows up to limit
func (r *AnalysisLogRepository) List(ctx context.Context, limit int) ([]*models.AnalysisLog, error) {
	query := `
		SELECT id, user_email, symbol, ip, created_at
		FROM analysis_logs ORDER BY created_at DESC LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis logs: %w", err)
	}

	return scanAnalysisLogRows(rows)
}

func scanAnalysisLogRows(rows pgx.Rows) ([]*models.AnalysisLog, error) {
	defer rows.Close()

	logs := make([]*models.AnalysisLog, 0)

	for rows.Next() {
		var log models.AnalysisLog
		if err := rows.Scan(&log.ID, &log.UserEmail, &log.Symbol, &log.IP, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis log: %w", err)
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}
