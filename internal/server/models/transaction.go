package models

import (
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// TransactionKind selects between the income and expense ledgers.
type TransactionKind int

const (
	Income TransactionKind = iota + 1
	Expense
)

// ParseTransactionKind maps the wire value onto a TransactionKind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch s {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q", s)
	}
}

func (k TransactionKind) String() string {
	switch k {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return fmt.Sprintf("TransactionKind(%d)", int(k))
	}
}

// Transaction is a single income or expense record. Incomes carry no
// category.
type Transaction struct {
	ID          int64           `json:"id"`
	Kind        TransactionKind `json:"-"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description"`
	Date        timex.Date      `json:"date"`
}

// TransactionFilter narrows a listing to one calendar month when both Year
// and Month are set.
type TransactionFilter struct {
	Year  int
	Month int
}

// HasMonth reports whether the filter selects a month.
func (f TransactionFilter) HasMonth() bool {
	return f.Year > 0 && f.Month > 0
}
