package fixedexpenses

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository stores a user's recurring monthly expenses.
type Repository interface {
	List(ctx context.Context, userID int64) ([]models.FixedExpense, error)
	ListActive(ctx context.Context, userID int64) ([]models.FixedExpense, error)
	Create(ctx context.Context, userID int64, fe *models.FixedExpense) (*models.FixedExpense, error)
	SetActive(ctx context.Context, userID, id int64, active bool) (*models.FixedExpense, error)
	Delete(ctx context.Context, userID, id int64) error
}
