package autoexpenses

import "context"

// Repository records which fixed expenses were already materialized for a
// month.
type Repository interface {
	Exists(ctx context.Context, fixedExpenseID int64, year, month int) (bool, error)
	Record(ctx context.Context, userID, fixedExpenseID, expenseID int64, year, month int) error
}
