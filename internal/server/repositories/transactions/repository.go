package transactions

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository reads and writes the income and expense ledgers. Every call is
// scoped to one user.
type Repository interface {
	List(ctx context.Context, userID int64, kind models.TransactionKind, filter models.TransactionFilter) ([]models.Transaction, error)
	Create(ctx context.Context, userID int64, tr *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, userID int64, kind models.TransactionKind, id int64) error
}
