package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/autoexpenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/codes"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/fixedexpenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/goals"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or an open
// transaction, so services can choose per operation.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Codes(db dbx.DBTX) codes.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	FixedExpenses(db dbx.DBTX) fixedexpenses.Repository
	Goals(db dbx.DBTX) goals.Repository
	AutoExpenses(db dbx.DBTX) autoexpenses.Repository
}
