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

// IPRuleRepository handles database operations for admin-defined IP access rules
type IPRuleRepository struct {
	pool *pgxpool.Pool
}

// NewIPRuleRepository creates a new IPRuleRepository
func NewIPRuleRepository(db *database.DB) *IPRuleRepository {
	return &IPRuleRepository{pool: db.Pool}
}

const ipRuleColumns = `id, rule_type, start_ip, end_ip, description, created_at`

func scanIPRuleRow(scanner rowScanner) (*models.IPRule, error) {
	var rule models.IPRule

	err := scanner.Scan(
		&rule.ID, &rule.RuleType, &rule.StartIP, &rule.EndIP,
		&rule.Description, &rule.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rule, nil
}

// List returns all rules, newest first. Rules have no uniqueness constraint;
// overlapping ranges are permitted and all evaluated.
func (r *IPRuleRepository) List(ctx context.Context) ([]*models.IPRule, error) {
	query := `SELECT ` + ipRuleColumns + ` FROM ip_rules ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip rules: %w", err)
	}

	return scanIPRuleRows(rows)
}

func scanIPRuleRows(rows pgx.Rows) ([]*models.IPRule, error) {
	defer rows.Close()

	rules := make([]*models.IPRule, 0)

	for rows.Next() {
		rule, err := scanIPRuleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ip rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rules, nil
}

// Create inserts a rule. There is no update-in-place; admins delete and recreate.
func (r *IPRuleRepository) Create(ctx context.Context, rule *models.IPRule) (*models.IPRule, error) {
	rule.CreatedAt = time.Now()

	query := `
		INSERT INTO ip_rules (rule_type, start_ip, end_ip, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + ipRuleColumns

	return scanIPRuleRow(r.pool.QueryRow(ctx, query,
		rule.RuleType, rule.StartIP, rule.EndIP, rule.Description, rule.CreatedAt,
	))
}

func (r *IPRuleRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM ip_rules WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
