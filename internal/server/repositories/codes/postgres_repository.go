// Package codes persists one-time email verification codes.
package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) error {
	query :=
		`INSERT INTO verification_codes (email, code, expires_at, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (email) DO UPDATE
		 SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`

	if _, err := r.db.ExecContext(ctx, query, email, code, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, email string) (*models.VerificationCode, error) {
	query :=
		`SELECT email, code, expires_at, created_at FROM verification_codes
		 WHERE email = $1`

	return scan(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) Consume(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	query :=
		`DELETE FROM verification_codes
		 WHERE email = $1 AND code = $2
		 RETURNING email, code, expires_at, created_at`

	return scan(r.db.QueryRowContext(ctx, query, email, code))
}

func scan(row *sql.Row) (*models.VerificationCode, error) {
	c := &models.VerificationCode{}
	if err := row.Scan(&c.Email, &c.Code, &c.ExpiresAt, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
