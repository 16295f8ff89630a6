package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

const userColumns = `id, COALESCE(google_id, ''), email, name, avatar_url, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertByExternalID(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (google_id, email, name, avatar_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (google_id) DO UPDATE
		 SET email = EXCLUDED.email, name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query,
		nullIfEmpty(user.ExternalID), user.Email, user.Name, user.AvatarURL))
}

func (r *PostgresRepository) LinkExternalID(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET google_id = $1, name = $2, avatar_url = $3
		 WHERE email = $4 AND (google_id IS NULL OR google_id = '')
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query,
		user.ExternalID, user.Name, user.AvatarURL, user.Email))
}

func (r *PostgresRepository) Create(ctx context.Context, email, name string) (*models.User, error) {
	query :=
		`INSERT INTO users (email, name)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, email, name))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE email = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
