package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// ResourceKind selects between recurring expenses and savings goals.
type ResourceKind int

const (
	Fixed ResourceKind = iota + 1
	Planning
)

// ParseResourceKind maps the wire value onto a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch s {
	case "fixed":
		return Fixed, nil
	case "planning":
		return Planning, nil
	default:
		return 0, fmt.Errorf("unknown resource type %q", s)
	}
}

func (k ResourceKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Planning:
		return "planning"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// FixedExpense is a recurring monthly payment.
type FixedExpense struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Amount     float64   `json:"amount"`
	Category   string    `json:"category"`
	DayOfMonth int       `json:"dayOfMonth"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SavingsGoal is a planning target the user saves towards.
type SavingsGoal struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	TargetAmount float64     `json:"targetAmount"`
	SavedAmount  float64     `json:"savedAmount"`
	TargetDate   *timex.Date `json:"targetDate"`
	Category     string      `json:"category"`
	IsCompleted  bool        `json:"isCompleted"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Deposit is one contribution to a SavingsGoal.
type Deposit struct {
	ID        int64     `json:"id"`
	Amount    float64   `json:"amount"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
