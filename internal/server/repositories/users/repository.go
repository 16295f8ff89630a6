package users

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository persists users. Emails are expected to be normalized by the
// caller.
type Repository interface {
	// UpsertByExternalID inserts the user or, when ExternalID already
	// exists, overwrites its email, name and avatar.
	UpsertByExternalID(ctx context.Context, user *models.User) (*models.User, error)
	// LinkExternalID attaches ExternalID to the existing row with the same
	// email when that row has none yet.
	LinkExternalID(ctx context.Context, user *models.User) (*models.User, error)
	// Create inserts a user without an external id. An existing row with
	// the same email is returned unchanged.
	Create(ctx context.Context, email, name string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}
