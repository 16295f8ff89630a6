// Package transactions persists incomes and expenses.
package transactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// table and column set per ledger; incomes have no category.
func layout(kind models.TransactionKind) (table, columns string, err error) {
	switch kind {
	case models.Income:
		return "incomes", "id, amount, '' AS category, description, date", nil
	case models.Expense:
		return "expenses", "id, amount, category, description, date", nil
	default:
		return "", "", fmt.Errorf("unsupported transaction kind %v", kind)
	}
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, kind models.TransactionKind, filter models.TransactionFilter) ([]models.Transaction, error) {
	table, columns, err := layout(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + columns + ` FROM ` + table + ` WHERE user_id = $1`
	args := []any{userID}
	if filter.HasMonth() {
		query += ` AND EXTRACT(YEAR FROM date) = $2 AND EXTRACT(MONTH FROM date) = $3`
		args = append(args, filter.Year, filter.Month)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Transaction{}
	for rows.Next() {
		tr := models.Transaction{Kind: kind}
		if err := rows.Scan(&tr.ID, &tr.Amount, &tr.Category, &tr.Description, &tr.Date); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, tr *models.Transaction) (*models.Transaction, error) {
	var row *sql.Row
	switch tr.Kind {
	case models.Income:
		query :=
			`INSERT INTO incomes (user_id, amount, description, date)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, amount, '' AS category, description, date`
		row = r.db.QueryRowContext(ctx, query, userID, tr.Amount, tr.Description, tr.Date.String())
	case models.Expense:
		query :=
			`INSERT INTO expenses (user_id, amount, category, description, date)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, amount, category, description, date`
		row = r.db.QueryRowContext(ctx, query, userID, tr.Amount, tr.Category, tr.Description, tr.Date.String())
	default:
		return nil, fmt.Errorf("unsupported transaction kind %v", tr.Kind)
	}

	out := &models.Transaction{Kind: tr.Kind}
	if err := row.Scan(&out.ID, &out.Amount, &out.Category, &out.Description, &out.Date); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int64, kind models.TransactionKind, id int64) error {
	table, _, err := layout(kind)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, id, userID)
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
