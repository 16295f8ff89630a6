package goals

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository stores savings goals and their deposit history.
type Repository interface {
	List(ctx context.Context, userID int64) ([]models.SavingsGoal, error)
	Create(ctx context.Context, userID int64, g *models.SavingsGoal) (*models.SavingsGoal, error)
	// AddSaved increments saved_amount and returns the updated goal.
	AddSaved(ctx context.Context, userID, id int64, amount float64) (*models.SavingsGoal, error)
	SetCompleted(ctx context.Context, userID, id int64, completed bool) (*models.SavingsGoal, error)
	Delete(ctx context.Context, userID, id int64) error
	AddDeposit(ctx context.Context, goalID int64, amount float64, comment string) error
	// Deposits lists the deposits of a goal owned by userID, newest first.
	Deposits(ctx context.Context, userID, goalID int64) ([]models.Deposit, error)
}
