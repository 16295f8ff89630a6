package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionKind(t *testing.T) {
	k, err := ParseTransactionKind("income")
	require.NoError(t, err)
	assert.Equal(t, Income, k)
	assert.Equal(t, "income", k.String())

	k, err = ParseTransactionKind("expense")
	require.NoError(t, err)
	assert.Equal(t, Expense, k)

	_, err = ParseTransactionKind("Expense")
	require.Error(t, err)
	_, err = ParseTransactionKind("")
	require.Error(t, err)
}

func TestParseResourceKind(t *testing.T) {
	k, err := ParseResourceKind("fixed")
	require.NoError(t, err)
	assert.Equal(t, Fixed, k)

	k, err = ParseResourceKind("planning")
	require.NoError(t, err)
	assert.Equal(t, "planning", k.String())

	_, err = ParseResourceKind("goals")
	require.Error(t, err)
}

func TestVerificationCode_Expired(t *testing.T) {
	exp := time.Date(2025, 1, 1, 10, 10, 0, 0, time.UTC)
	c := &VerificationCode{ExpiresAt: exp}

	assert.False(t, c.Expired(exp.Add(-time.Second)))
	assert.False(t, c.Expired(exp))
	assert.True(t, c.Expired(exp.Add(time.Nanosecond)))
}

func TestAutoCreated_FlattensTransaction(t *testing.T) {
	d, err := timex.ParseDate("2025-02-28")
	require.NoError(t, err)

	b, err := json.Marshal(AutoCreated{
		Transaction:       Transaction{ID: 5, Kind: Expense, Amount: 12.5, Category: "home", Description: "Rent (auto-payment)", Date: d},
		FixedExpenseID:    3,
		FixedExpenseTitle: "Rent",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"amount":12.5,"category":"home","description":"Rent (auto-payment)","date":"2025-02-28","fixedExpenseId":3,"fixedExpenseTitle":"Rent"}`, string(b))
}

func TestIncome_OmitsCategory(t *testing.T) {
	d, err := timex.ParseDate("2025-01-15")
	require.NoError(t, err)

	b, err := json.Marshal(Transaction{ID: 1, Kind: Income, Amount: 1000, Description: "salary", Date: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"amount":1000,"description":"salary","date":"2025-01-15"}`, string(b))
}
