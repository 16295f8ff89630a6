package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/fintrack/internal/shared"
)

// Directory reconciles external identities and emailed-code sign-ins into a
// single user table keyed by normalized email.
type Directory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDirectory(db *sql.DB, rm repomanager.RepositoryManager) *Directory {
	return &Directory{db: db, repomanager: rm}
}

// UpsertByExternalID creates the user for externalID or overwrites its email,
// name and avatar with the supplied values.
//
// When the email already belongs to a user without an external id, that row
// is linked to externalID. When it belongs to a user with a different
// external id, common.ErrAccountConflict is returned.
func (d *Directory) UpsertByExternalID(ctx context.Context, externalID, email, name, avatar string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	email = shared.NormalizeEmail(email)
	if externalID == "" || email == "" {
		return nil, common.ErrInvalidRequest
	}

	in := &models.User{ExternalID: externalID, Email: email, Name: name, AvatarURL: avatar}
	repo := d.repomanager.Users(d.db)

	user, err := repo.UpsertByExternalID(ctx, in)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}

	user, err = repo.LinkExternalID(ctx, in)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorAlreadyExists):
		return nil, common.ErrAccountConflict
	default:
		return nil, fmt.Errorf("error linking user: %w", err)
	}
}

// FindOrCreateByEmail returns the user with the given email, creating one
// named after the email's local part when none exists.
func (d *Directory) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.findOrCreateByEmail(ctx, d.repomanager.Users(d.db), email)
}

func (d *Directory) findOrCreateByEmail(ctx context.Context, repo users.Repository, email string) (*models.User, error) {
	email = shared.NormalizeEmail(email)
	if email == "" {
		return nil, common.ErrInvalidEmail
	}

	user, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	user, err = repo.Create(ctx, email, shared.EmailLocalPart(email))
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// FindByID returns common.ErrorNotFound when no user has the id.
func (d *Directory) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := d.repomanager.Users(d.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// usersOn returns the users repository bound to tx.
func (d *Directory) usersOn(tx dbx.DBTX) users.Repository {
	return d.repomanager.Users(tx)
}
