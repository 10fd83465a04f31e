package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/storage"

	"github.com/stretchr/testify/require"
)

var (
	october = core.NewDate(2024, 10, 1)
	asOf    = core.NewDate(2024, 10, 31)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) kinds() []core.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

var errInjected = errors.New("injected failure after last statement")

// failingStore runs every unit of work for real and then fails it, so the
// transaction is rolled back after all of its statements succeeded.
type failingStore struct {
	*storage.SQLiteRepository
}

func (f failingStore) WithTx(ctx context.Context, fn func(q *storage.Queries) error) error {
	return f.SQLiteRepository.WithTx(ctx, func(q *storage.Queries) error {
		if err := fn(q); err != nil {
			return err
		}
		return errInjected
	})
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	repo     *storage.SQLiteRepository
	reserved core.ReservedCategories
	pub      *recordingPublisher
	ledger   *Ledger
	user     core.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	reserved, err := repo.LoadReservedCategories(ctx)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	user, err := repo.Queries().CreateUser(ctx, storage.CreateUserParams{FirstName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	return &fixture{
		t:        t,
		ctx:      ctx,
		repo:     repo,
		reserved: reserved,
		pub:      pub,
		ledger: NewLedger(repo, reserved, Options{
			Publisher:   pub,
			BudgetCache: cache.NewLRUCache[BudgetKey, core.Budget](16, time.Minute),
		}),
		user: user,
	}
}

// failing returns a ledger over the same database whose units of work
// always roll back.
func (f *fixture) failing() *Ledger {
	return NewLedger(failingStore{f.repo}, f.reserved, Options{})
}

func (f *fixture) otherUser() core.User {
	f.t.Helper()
	u, err := f.repo.Queries().CreateUser(f.ctx, storage.CreateUserParams{FirstName: "Bob", Email: "bob@example.com"})
	require.NoError(f.t, err)
	return u
}

func (f *fixture) income(name string) core.IncomeCategory {
	f.t.Helper()
	c, err := f.ledger.Categories.CreateIncomeCategory(f.ctx, f.user.ID, name, 1)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) expense(name string) core.ExpenseCategory {
	f.t.Helper()
	c, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, name)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) cashIn(incomeID int64, amount string, date core.Date) core.CashIn {
	f.t.Helper()
	c, err := f.ledger.Transactions.AddCashIn(f.ctx, AddCashInInput{
		UserID:   f.user.ID,
		Amount:   core.MustMoney(amount),
		Date:     date,
		IncomeID: incomeID,
		AsOf:     asOf,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) cashOut(expenseID int64, amount string, date core.Date) core.CashOut {
	f.t.Helper()
	c, err := f.ledger.Transactions.AddCashOut(f.ctx, AddCashOutInput{
		UserID:    f.user.ID,
		Amount:    core.MustMoney(amount),
		Date:      date,
		ExpenseID: expenseID,
		AsOf:      asOf,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) credit(amount string) core.Credit {
	f.t.Helper()
	c, err := f.ledger.Obligations.CreateCredit(f.ctx, CreateCreditInput{
		UserID:    f.user.ID,
		Debtor:    "bob",
		Amount:    core.MustMoney(amount),
		DateTaken: october,
		AsOf:      asOf,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) debt(amount string) core.Debt {
	f.t.Helper()
	d, err := f.ledger.Obligations.CreateDebt(f.ctx, CreateDebtInput{
		UserID:    f.user.ID,
		Creditor:  "bank",
		Amount:    core.MustMoney(amount),
		DateTaken: october,
		AsOf:      asOf,
	})
	require.NoError(f.t, err)
	return d
}

func (f *fixture) budgetLine(year, month int, expenseID int64, expected string) (core.Budget, core.BudgetExpense) {
	f.t.Helper()
	b, err := f.ledger.Budgets.CreateBudget(f.ctx, f.user.ID, year, month)
	require.NoError(f.t, err)
	be, err := f.ledger.Budgets.AddBudgetExpense(f.ctx, b.ID, expenseID, core.MustMoney(expected))
	require.NoError(f.t, err)
	return b, be
}

func (f *fixture) spent(id int64) string {
	f.t.Helper()
	be, err := f.repo.Queries().GetBudgetExpense(f.ctx, id)
	require.NoError(f.t, err)
	return be.SpentAmount.StringFixed(2)
}

func (f *fixture) creditRow(id int64) core.Credit {
	f.t.Helper()
	c, err := f.repo.Queries().GetCredit(f.ctx, id, f.user.ID)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) debtRow(id int64) core.Debt {
	f.t.Helper()
	d, err := f.repo.Queries().GetDebt(f.ctx, id, f.user.ID)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) settledCreditIncome() int64 {
	return f.reserved.ID(core.ReservedSettledCredit)
}

func (f *fixture) settledDebtExpense() int64 {
	return f.reserved.ID(core.ReservedSettledDebt)
}

func ptr[T any](v T) *T { return &v }
