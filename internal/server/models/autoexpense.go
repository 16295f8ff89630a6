package models

// AutoCreated is an expense generated from a fixed expense.
type AutoCreated struct {
	Transaction
	FixedExpenseID    int64  `json:"fixedExpenseId"`
	FixedExpenseTitle string `json:"fixedExpenseTitle"`
}

// AutoSkipped is a fixed expense that already has an expense for the month.
type AutoSkipped struct {
	FixedExpenseID int64  `json:"fixedExpenseId"`
	Title          string `json:"title"`
	Reason         string `json:"reason"`
}

// AutoExpenseReport summarizes one generation run for a month.
type AutoExpenseReport struct {
	Created []AutoCreated `json:"created"`
	Skipped []AutoSkipped `json:"skipped"`
	Total   int           `json:"total"`
	Year    int           `json:"year"`
	Month   int           `json:"month"`
}
