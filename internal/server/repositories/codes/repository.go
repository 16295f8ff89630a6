package codes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository stores at most one outstanding verification code per email.
type Repository interface {
	// Upsert writes the code for email, replacing any previous one.
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) error
	Find(ctx context.Context, email string) (*models.VerificationCode, error)
	// Consume deletes the row only if it still holds code and returns it.
	// A concurrent consumer observes common.ErrorNotFound.
	Consume(ctx context.Context, email, code string) (*models.VerificationCode, error)
}
