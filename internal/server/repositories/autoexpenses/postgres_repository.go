// Package autoexpenses tracks expenses generated from fixed expenses.
package autoexpenses

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, fixedExpenseID int64, year, month int) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM auto_created_expenses
		   WHERE fixed_expense_id = $1 AND year = $2 AND month = $3
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fixedExpenseID, year, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Record(ctx context.Context, userID, fixedExpenseID, expenseID int64, year, month int) error {
	query :=
		`INSERT INTO auto_created_expenses (user_id, fixed_expense_id, expense_id, year, month)
		 VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, userID, fixedExpenseID, expenseID, year, month); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
