package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

const (
	autoPaymentSuffix = " (auto-payment)"
	skipReasonCreated = "Already created for this month"
)

// AutoExpenseService turns active fixed expenses into real expenses once
// per month.
type AutoExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewAutoExpenseService(db *sql.DB, rm repomanager.RepositoryManager, l logging.Logger) *AutoExpenseService {
	return &AutoExpenseService{db: db, repomanager: rm, logger: l.With("module", "autoexpenses"), now: time.Now}
}

// Generate creates the month's expenses for every active fixed expense not
// yet materialized for (year, month). Zero year or month default to the
// current ones. The whole run is one transaction.
func (s *AutoExpenseService) Generate(ctx context.Context, userID int64, year, month int) (*models.AutoExpenseReport, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, common.ErrInvalidRequest
	}

	report := &models.AutoExpenseReport{
		Created: []models.AutoCreated{},
		Skipped: []models.AutoSkipped{},
		Year:    year,
		Month:   month,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fixed, err := s.repomanager.FixedExpenses(tx).ListActive(ctx, userID)
		if err != nil {
			return err
		}

		for _, fe := range fixed {
			exists, err := s.repomanager.AutoExpenses(tx).Exists(ctx, fe.ID, year, month)
			if err != nil {
				return err
			}
			if exists {
				report.Skipped = append(report.Skipped, models.AutoSkipped{
					FixedExpenseID: fe.ID,
					Title:          fe.Title,
					Reason:         skipReasonCreated,
				})
				continue
			}

			tr := &models.Transaction{
				Kind:        models.Expense,
				Amount:      fe.Amount,
				Category:    fe.Category,
				Description: fe.Title + autoPaymentSuffix,
				Date:        expenseDate(year, month, fe.DayOfMonth, now),
			}
			created, err := s.repomanager.Transactions(tx).Create(ctx, userID, tr)
			if err != nil {
				return err
			}
			if err := s.repomanager.AutoExpenses(tx).Record(ctx, userID, fe.ID, created.ID, year, month); err != nil {
				return err
			}

			report.Created = append(report.Created, models.AutoCreated{
				Transaction:       *created,
				FixedExpenseID:    fe.ID,
				FixedExpenseTitle: fe.Title,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error generating auto expenses: %w", err)
	}

	report.Total = len(report.Created)
	s.logger.Info(ctx, "auto expenses generated", "user_id", userID, "year", year, "month", month,
		"created", len(report.Created), "skipped", len(report.Skipped))
	return report, nil
}

// expenseDate uses dayOfMonth unless it lies after today's day of month, in
// which case today's day is used. The day is clamped to the month's length.
func expenseDate(year, month, dayOfMonth int, now time.Time) timex.Date {
	day := dayOfMonth
	if day > now.Day() {
		day = now.Day()
	}
	if last := timex.LastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}
	return timex.NewDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}
