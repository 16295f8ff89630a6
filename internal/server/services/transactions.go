package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// DefaultCategory is assigned to expenses created without one.
const DefaultCategory = "other"

// TransactionInput carries a new income or expense. A nil Date means today.
type TransactionInput struct {
	Kind        models.TransactionKind
	Amount      float64
	Description string
	Category    string
	Date        *timex.Date
}

type TransactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewTransactionService(db *sql.DB, rm repomanager.RepositoryManager) *TransactionService {
	return &TransactionService{db: db, repomanager: rm, now: time.Now}
}

func (s *TransactionService) List(ctx context.Context, userID int64, kind models.TransactionKind, filter models.TransactionFilter) ([]models.Transaction, error) {
	items, err := s.repomanager.Transactions(s.db).List(ctx, userID, kind, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", kind, err)
	}
	return items, nil
}

// Create validates in and stores it. A zero amount is rejected with
// common.ErrMissingFields.
func (s *TransactionService) Create(ctx context.Context, userID int64, in TransactionInput) (*models.Transaction, error) {
	if in.Amount == 0 {
		return nil, common.ErrMissingFields
	}

	tr := &models.Transaction{
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: in.Description,
	}

	switch in.Kind {
	case models.Income:
	case models.Expense:
		tr.Category = strings.TrimSpace(in.Category)
		if tr.Category == "" {
			tr.Category = DefaultCategory
		}
	default:
		return nil, common.ErrInvalidType
	}

	if in.Date != nil {
		tr.Date = *in.Date
	} else {
		tr.Date = timex.NewDate(s.now())
	}

	created, err := s.repomanager.Transactions(s.db).Create(ctx, userID, tr)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", in.Kind, err)
	}
	return created, nil
}

// Delete returns common.ErrTransactionNotFound when the record does not
// exist or belongs to another user.
func (s *TransactionService) Delete(ctx context.Context, userID int64, kind models.TransactionKind, id int64) error {
	err := s.repomanager.Transactions(s.db).Delete(ctx, userID, kind, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTransactionNotFound
		}
		return fmt.Errorf("error deleting %s: %w", kind, err)
	}
	return nil
}
