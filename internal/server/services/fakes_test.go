package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/autoexpenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/codes"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/fixedexpenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/goals"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func discardLogger(t *testing.T) logging.Logger {
	t.Helper()
	l, err := logging.New(logging.Options{Level: "error"}, io.Discard)
	require.NoError(t, err)
	return l
}

// memStore is an in-memory stand-in for the database shared by every fake
// repository. Transactions are not isolated; sqlmock asserts their
// boundaries.
type memStore struct {
	mu sync.Mutex

	users    []*models.User
	codes    map[string]models.VerificationCode
	ledger   map[models.TransactionKind][]ownedTransaction
	fixed    []ownedFixed
	goals    []ownedGoal
	deposits map[int64][]models.Deposit
	auto     map[[3]int64]int64

	nextID int64

	// errs forces a method, keyed by "<repo>.<Method>", to fail.
	errs map[string]error
}

type ownedTransaction struct {
	userID int64
	models.Transaction
}

type ownedFixed struct {
	userID int64
	models.FixedExpense
}

type ownedGoal struct {
	userID int64
	models.SavingsGoal
}

func newMemStore() *memStore {
	return &memStore{
		codes:    map[string]models.VerificationCode{},
		ledger:   map[models.TransactionKind][]ownedTransaction{},
		deposits: map[int64][]models.Deposit{},
		auto:     map[[3]int64]int64{},
		errs:     map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(name string) error {
	return s.errs[name]
}

type fakeRepoManager struct {
	store *memStore
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &fakeUsers{m.store} }
func (m *fakeRepoManager) Codes(dbx.DBTX) codes.Repository              { return &fakeCodes{m.store} }
func (m *fakeRepoManager) Transactions(dbx.DBTX) transactions.Repository {
	return &fakeTransactions{m.store}
}
func (m *fakeRepoManager) FixedExpenses(dbx.DBTX) fixedexpenses.Repository {
	return &fakeFixed{m.store}
}
func (m *fakeRepoManager) Goals(dbx.DBTX) goals.Repository { return &fakeGoals{m.store} }
func (m *fakeRepoManager) AutoExpenses(dbx.DBTX) autoexpenses.Repository {
	return &fakeAuto{m.store}
}

// --- users ---

type fakeUsers struct{ s *memStore }

func (f *fakeUsers) byEmail(email string) *models.User {
	for _, u := range f.s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) UpsertByExternalID(_ context.Context, in *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("users.UpsertByExternalID"); err != nil {
		return nil, err
	}

	owner := f.byEmail(in.Email)
	for _, u := range f.s.users {
		if u.ExternalID == in.ExternalID {
			if owner != nil && owner != u {
				return nil, common.ErrorAlreadyExists
			}
			u.Email, u.Name, u.AvatarURL = in.Email, in.Name, in.AvatarURL
			cp := *u
			return &cp, nil
		}
	}
	if owner != nil {
		return nil, common.ErrorAlreadyExists
	}

	u := &models.User{ID: f.s.id(), ExternalID: in.ExternalID, Email: in.Email, Name: in.Name, AvatarURL: in.AvatarURL}
	f.s.users = append(f.s.users, u)
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) LinkExternalID(_ context.Context, in *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	u := f.byEmail(in.Email)
	if u == nil || u.ExternalID != "" {
		return nil, common.ErrorNotFound
	}
	u.ExternalID, u.Name, u.AvatarURL = in.ExternalID, in.Name, in.AvatarURL
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, email, name string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("users.Create"); err != nil {
		return nil, err
	}

	if u := f.byEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	u := &models.User{ID: f.s.id(), Email: email, Name: name}
	f.s.users = append(f.s.users, u)
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u := f.byEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("users.FindByID"); err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- codes ---

type fakeCodes struct{ s *memStore }

func (f *fakeCodes) Upsert(_ context.Context, email, code string, expiresAt time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("codes.Upsert"); err != nil {
		return err
	}
	f.s.codes[email] = models.VerificationCode{Email: email, Code: code, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeCodes) Find(_ context.Context, email string) (*models.VerificationCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	vc, ok := f.s.codes[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &vc, nil
}

func (f *fakeCodes) Consume(_ context.Context, email, code string) (*models.VerificationCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	vc, ok := f.s.codes[email]
	if !ok || vc.Code != code {
		return nil, common.ErrorNotFound
	}
	delete(f.s.codes, email)
	return &vc, nil
}

// --- transactions ---

type fakeTransactions struct{ s *memStore }

func (f *fakeTransactions) List(_ context.Context, userID int64, kind models.TransactionKind, filter models.TransactionFilter) ([]models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range f.s.ledger[kind] {
		if t.userID != userID {
			continue
		}
		if filter.HasMonth() && (t.Date.Year() != filter.Year || int(t.Date.Month()) != filter.Month) {
			continue
		}
		out = append(out, t.Transaction)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (f *fakeTransactions) Create(_ context.Context, userID int64, tr *models.Transaction) (*models.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("transactions.Create"); err != nil {
		return nil, err
	}
	cp := *tr
	cp.ID = f.s.id()
	f.s.ledger[tr.Kind] = append(f.s.ledger[tr.Kind], ownedTransaction{userID: userID, Transaction: cp})
	return &cp, nil
}

func (f *fakeTransactions) Delete(_ context.Context, userID int64, kind models.TransactionKind, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := f.s.ledger[kind]
	for i, t := range items {
		if t.ID == id && t.userID == userID {
			f.s.ledger[kind] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- fixed expenses ---

type fakeFixed struct{ s *memStore }

func (f *fakeFixed) list(userID int64, activeOnly bool) []models.FixedExpense {
	out := []models.FixedExpense{}
	for _, fe := range f.s.fixed {
		if fe.userID == userID && (!activeOnly || fe.IsActive) {
			out = append(out, fe.FixedExpense)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayOfMonth < out[j].DayOfMonth })
	return out
}

func (f *fakeFixed) List(_ context.Context, userID int64) ([]models.FixedExpense, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(userID, false), nil
}

func (f *fakeFixed) ListActive(_ context.Context, userID int64) ([]models.FixedExpense, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(userID, true), nil
}

func (f *fakeFixed) Create(_ context.Context, userID int64, fe *models.FixedExpense) (*models.FixedExpense, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *fe
	cp.ID = f.s.id()
	cp.IsActive = true
	f.s.fixed = append(f.s.fixed, ownedFixed{userID: userID, FixedExpense: cp})
	return &cp, nil
}

func (f *fakeFixed) SetActive(_ context.Context, userID, id int64, active bool) (*models.FixedExpense, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.fixed {
		if f.s.fixed[i].ID == id && f.s.fixed[i].userID == userID {
			f.s.fixed[i].IsActive = active
			cp := f.s.fixed[i].FixedExpense
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFixed) Delete(_ context.Context, userID, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i, fe := range f.s.fixed {
		if fe.ID == id && fe.userID == userID {
			f.s.fixed = append(f.s.fixed[:i], f.s.fixed[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- goals ---

type fakeGoals struct{ s *memStore }

func (f *fakeGoals) find(userID, id int64) *ownedGoal {
	for i := range f.s.goals {
		if f.s.goals[i].ID == id && f.s.goals[i].userID == userID {
			return &f.s.goals[i]
		}
	}
	return nil
}

func (f *fakeGoals) List(_ context.Context, userID int64) ([]models.SavingsGoal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.SavingsGoal{}
	for _, g := range f.s.goals {
		if g.userID == userID {
			out = append(out, g.SavingsGoal)
		}
	}
	return out, nil
}

func (f *fakeGoals) Create(_ context.Context, userID int64, g *models.SavingsGoal) (*models.SavingsGoal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *g
	cp.ID = f.s.id()
	f.s.goals = append(f.s.goals, ownedGoal{userID: userID, SavingsGoal: cp})
	return &cp, nil
}

func (f *fakeGoals) AddSaved(_ context.Context, userID, id int64, amount float64) (*models.SavingsGoal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	g := f.find(userID, id)
	if g == nil {
		return nil, common.ErrorNotFound
	}
	g.SavedAmount += amount
	cp := g.SavingsGoal
	return &cp, nil
}

func (f *fakeGoals) SetCompleted(_ context.Context, userID, id int64, completed bool) (*models.SavingsGoal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	g := f.find(userID, id)
	if g == nil {
		return nil, common.ErrorNotFound
	}
	g.IsCompleted = completed
	cp := g.SavingsGoal
	return &cp, nil
}

func (f *fakeGoals) Delete(_ context.Context, userID, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i, g := range f.s.goals {
		if g.ID == id && g.userID == userID {
			f.s.goals = append(f.s.goals[:i], f.s.goals[i+1:]...)
			delete(f.s.deposits, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeGoals) AddDeposit(_ context.Context, goalID int64, amount float64, comment string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("goals.AddDeposit"); err != nil {
		return err
	}
	d := models.Deposit{ID: f.s.id(), Amount: amount, Comment: comment}
	f.s.deposits[goalID] = append([]models.Deposit{d}, f.s.deposits[goalID]...)
	return nil
}

func (f *fakeGoals) Deposits(_ context.Context, userID, goalID int64) ([]models.Deposit, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.find(userID, goalID) == nil {
		return []models.Deposit{}, nil
	}
	return append([]models.Deposit{}, f.s.deposits[goalID]...), nil
}

// --- auto expenses ---

type fakeAuto struct{ s *memStore }

func (f *fakeAuto) Exists(_ context.Context, fixedExpenseID int64, year, month int) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.auto[[3]int64{fixedExpenseID, int64(year), int64(month)}]
	return ok, nil
}

func (f *fakeAuto) Record(_ context.Context, _, fixedExpenseID, expenseID int64, year, month int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.auto[[3]int64{fixedExpenseID, int64(year), int64(month)}] = expenseID
	return nil
}
