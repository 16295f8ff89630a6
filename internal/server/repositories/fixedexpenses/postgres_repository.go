// Package fixedexpenses persists recurring monthly expenses.
package fixedexpenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

const fixedColumns = `id, title, amount, category, day_of_month, is_active, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]models.FixedExpense, error) {
	query :=
		`SELECT ` + fixedColumns + ` FROM fixed_expenses
		 WHERE user_id = $1
		 ORDER BY day_of_month ASC, id ASC`

	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]models.FixedExpense, error) {
	query :=
		`SELECT ` + fixedColumns + ` FROM fixed_expenses
		 WHERE user_id = $1 AND is_active = TRUE
		 ORDER BY day_of_month ASC, id ASC`

	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, fe *models.FixedExpense) (*models.FixedExpense, error) {
	query :=
		`INSERT INTO fixed_expenses (user_id, title, amount, category, day_of_month)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + fixedColumns

	return scanOne(r.db.QueryRowContext(ctx, query, userID, fe.Title, fe.Amount, fe.Category, fe.DayOfMonth))
}

func (r *PostgresRepository) SetActive(ctx context.Context, userID, id int64, active bool) (*models.FixedExpense, error) {
	query :=
		`UPDATE fixed_expenses
		 SET is_active = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING ` + fixedColumns

	return scanOne(r.db.QueryRowContext(ctx, query, active, id, userID))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fixed_expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.FixedExpense{}
	for rows.Next() {
		var fe models.FixedExpense
		if err := rows.Scan(&fe.ID, &fe.Title, &fe.Amount, &fe.Category, &fe.DayOfMonth, &fe.IsActive, &fe.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, fe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func scanOne(row *sql.Row) (*models.FixedExpense, error) {
	fe := &models.FixedExpense{}
	err := row.Scan(&fe.ID, &fe.Title, &fe.Amount, &fe.Category, &fe.DayOfMonth, &fe.IsActive, &fe.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fe, nil
}
