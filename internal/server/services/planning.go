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
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// FixedExpenseInput carries a new recurring expense.
type FixedExpenseInput struct {
	Title      string
	Amount     float64
	Category   string
	DayOfMonth int
}

// GoalInput carries a new savings goal.
type GoalInput struct {
	Title        string
	TargetAmount float64
	Category     string
	TargetDate   *timex.Date
}

// GoalUpdate describes a change to a savings goal. AddAmount takes
// precedence over IsCompleted.
type GoalUpdate struct {
	AddAmount   *float64
	Comment     string
	IsCompleted *bool
}

// PlanningService manages fixed expenses and savings goals.
type PlanningService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPlanningService(db *sql.DB, rm repomanager.RepositoryManager) *PlanningService {
	return &PlanningService{db: db, repomanager: rm}
}

func (s *PlanningService) ListFixed(ctx context.Context, userID int64) ([]models.FixedExpense, error) {
	items, err := s.repomanager.FixedExpenses(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing fixed expenses: %w", err)
	}
	return items, nil
}

func (s *PlanningService) ListGoals(ctx context.Context, userID int64) ([]models.SavingsGoal, error) {
	items, err := s.repomanager.Goals(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing goals: %w", err)
	}
	return items, nil
}

func (s *PlanningService) CreateFixed(ctx context.Context, userID int64, in FixedExpenseInput) (*models.FixedExpense, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Amount == 0 || in.Category == "" || in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		return nil, common.ErrMissingFields
	}

	fe := &models.FixedExpense{
		Title:      in.Title,
		Amount:     in.Amount,
		Category:   in.Category,
		DayOfMonth: in.DayOfMonth,
	}
	created, err := s.repomanager.FixedExpenses(s.db).Create(ctx, userID, fe)
	if err != nil {
		return nil, fmt.Errorf("error creating fixed expense: %w", err)
	}
	return created, nil
}

func (s *PlanningService) CreateGoal(ctx context.Context, userID int64, in GoalInput) (*models.SavingsGoal, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.TargetAmount == 0 || in.Category == "" {
		return nil, common.ErrMissingFields
	}

	g := &models.SavingsGoal{
		Title:        in.Title,
		TargetAmount: in.TargetAmount,
		Category:     in.Category,
		TargetDate:   in.TargetDate,
	}
	created, err := s.repomanager.Goals(s.db).Create(ctx, userID, g)
	if err != nil {
		return nil, fmt.Errorf("error creating goal: %w", err)
	}
	return created, nil
}

// SetFixedActive toggles a fixed expense. A nil active is
// common.ErrNoFieldsToUpdate.
func (s *PlanningService) SetFixedActive(ctx context.Context, userID, id int64, active *bool) (*models.FixedExpense, error) {
	if active == nil {
		return nil, common.ErrNoFieldsToUpdate
	}
	fe, err := s.repomanager.FixedExpenses(s.db).SetActive(ctx, userID, id, *active)
	if err != nil {
		return nil, itemError("error updating fixed expense", err)
	}
	return fe, nil
}

// UpdateGoal applies upd to the goal. Adding an amount increments the saved
// total and records a deposit in one transaction; the goal is checked for
// ownership before the deposit is written.
func (s *PlanningService) UpdateGoal(ctx context.Context, userID, id int64, upd GoalUpdate) (*models.SavingsGoal, error) {
	switch {
	case upd.AddAmount != nil:
		var goal *models.SavingsGoal
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repomanager.Goals(tx)

			var err error
			goal, err = repo.AddSaved(ctx, userID, id, *upd.AddAmount)
			if err != nil {
				return err
			}
			return repo.AddDeposit(ctx, id, *upd.AddAmount, upd.Comment)
		})
		if err != nil {
			return nil, itemError("error adding deposit", err)
		}
		return goal, nil

	case upd.IsCompleted != nil:
		goal, err := s.repomanager.Goals(s.db).SetCompleted(ctx, userID, id, *upd.IsCompleted)
		if err != nil {
			return nil, itemError("error updating goal", err)
		}
		return goal, nil

	default:
		return nil, common.ErrNoFieldsToUpdate
	}
}

func (s *PlanningService) Deposits(ctx context.Context, userID, goalID int64) ([]models.Deposit, error) {
	deposits, err := s.repomanager.Goals(s.db).Deposits(ctx, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("error listing deposits: %w", err)
	}
	return deposits, nil
}

// Delete removes a fixed expense or a goal owned by userID.
func (s *PlanningService) Delete(ctx context.Context, userID int64, kind models.ResourceKind, id int64) error {
	var err error
	switch kind {
	case models.Fixed:
		err = s.repomanager.FixedExpenses(s.db).Delete(ctx, userID, id)
	case models.Planning:
		err = s.repomanager.Goals(s.db).Delete(ctx, userID, id)
	default:
		return common.ErrInvalidType
	}
	if err != nil {
		return itemError("error deleting "+kind.String(), err)
	}
	return nil
}

func itemError(msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrItemNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
