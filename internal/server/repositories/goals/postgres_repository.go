// Package goals persists savings goals ("planning") and their deposits.
package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

const goalColumns = `id, title, target_amount, saved_amount, target_date, category, is_completed, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]models.SavingsGoal, error) {
	query :=
		`SELECT ` + goalColumns + ` FROM planning
		 WHERE user_id = $1
		 ORDER BY is_completed ASC, target_date ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, g *models.SavingsGoal) (*models.SavingsGoal, error) {
	query :=
		`INSERT INTO planning (user_id, title, target_amount, category, target_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + goalColumns

	var targetDate sql.NullString
	if g.TargetDate != nil {
		targetDate = sql.NullString{String: g.TargetDate.String(), Valid: true}
	}

	return one(r.db.QueryRowContext(ctx, query, userID, g.Title, g.TargetAmount, g.Category, targetDate))
}

func (r *PostgresRepository) AddSaved(ctx context.Context, userID, id int64, amount float64) (*models.SavingsGoal, error) {
	query :=
		`UPDATE planning
		 SET saved_amount = saved_amount + $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND user_id = $3
		 RETURNING ` + goalColumns

	return one(r.db.QueryRowContext(ctx, query, amount, id, userID))
}

func (r *PostgresRepository) SetCompleted(ctx context.Context, userID, id int64, completed bool) (*models.SavingsGoal, error) {
	query :=
		`UPDATE planning
		 SET is_completed = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND user_id = $3
		 RETURNING ` + goalColumns

	return one(r.db.QueryRowContext(ctx, query, completed, id, userID))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planning WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *PostgresRepository) AddDeposit(ctx context.Context, goalID int64, amount float64, comment string) error {
	query :=
		`INSERT INTO planning_deposits (planning_id, amount, comment)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, goalID, amount, comment); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Deposits(ctx context.Context, userID, goalID int64) ([]models.Deposit, error) {
	query :=
		`SELECT pd.id, pd.amount, COALESCE(pd.comment, ''), pd.created_at
		 FROM planning_deposits pd
		 JOIN planning p ON pd.planning_id = p.id
		 WHERE p.user_id = $1 AND pd.planning_id = $2
		 ORDER BY pd.created_at DESC, pd.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	deposits := []models.Deposit{}
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(&d.ID, &d.Amount, &d.Comment, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return deposits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (*models.SavingsGoal, error) {
	g := &models.SavingsGoal{}
	var target *timex.Date
	if err := s.Scan(&g.ID, &g.Title, &g.TargetAmount, &g.SavedAmount, &target, &g.Category, &g.IsCompleted, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.TargetDate = target
	return g, nil
}

func one(row *sql.Row) (*models.SavingsGoal, error) {
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}
