package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/sheets"
	"ledger/internal/sheets/memory"
	"ledger/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx    context.Context
	repo   *storage.SQLiteRepository
	ledger *services.Ledger
	user   core.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	reserved, err := repo.LoadReservedCategories(ctx)
	require.NoError(t, err)

	user, err := repo.Queries().CreateUser(ctx, storage.CreateUserParams{FirstName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	return &fixture{
		ctx:    ctx,
		repo:   repo,
		ledger: services.NewLedger(repo, reserved, services.Options{}),
		user:   user,
	}
}

type failingSink struct{}

func (failingSink) Append(context.Context, sheets.Row) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestExportWorker_ExportsTransactionEvents(t *testing.T) {
	f := newFixture(t)
	food, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, "food")
	require.NoError(t, err)

	sink := memory.New()
	w := NewExportWorker(sink, f.repo.Queries(), 16, time.Minute)

	out := core.CashOut{
		ID:          7,
		UserID:      f.user.ID,
		ExpenseID:   food.ID,
		Amount:      core.MustMoney("12.50"),
		Date:        core.NewDate(2024, 10, 3),
		Description: "market",
	}
	msg := amqp.NewLedgerEventMessage(core.CashOutEvent(core.EventCashOutCreated, out))
	require.NoError(t, w.HandleMessage(f.ctx, msg))

	rows, err := sink.List(f.ctx, sheets.FlowCashOut, 2024, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, int64(7), rows[0].EntityID)
	assert.Equal(t, "12.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "created", rows[0].Action())

	// the second export of the same category is served from the name cache
	f.repo.Close()
	require.NoError(t, w.HandleEvent(f.ctx, core.CashOutEvent(core.EventCashOutDeleted, out)))
	assert.Len(t, sink.Rows(), 2)
	assert.Equal(t, "Food", sink.Rows()[1].Category)
}

func TestExportWorker_SkipsAndDrops(t *testing.T) {
	f := newFixture(t)
	sink := memory.New()
	w := NewExportWorker(sink, f.repo.Queries(), 16, time.Minute)

	require.NoError(t, w.HandleEvent(f.ctx, core.Event{Kind: core.EventCreditSettled, EntityID: 1}))
	require.NoError(t, w.HandleEvent(f.ctx, core.Event{Kind: core.EventBudgetChanged, EntityID: 1}))
	assert.Empty(t, sink.Rows(), "only transaction events are exported")

	require.NoError(t, w.HandleMessage(f.ctx, &amqp.LedgerEventMessage{ID: "bad"}), "undecodable messages are dropped")

	in := core.CashIn{ID: 3, UserID: f.user.ID, IncomeID: 9999, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 10, 1)}
	require.NoError(t, w.HandleEvent(f.ctx, core.CashInEvent(core.EventCashInCreated, in)))
	require.Len(t, sink.Rows(), 1)
	assert.Empty(t, sink.Rows()[0].Category, "unknown categories fall back to the id")
}

func TestExportWorker_SinkErrors(t *testing.T) {
	w := NewExportWorker(failingSink{}, nil, 1, time.Minute)
	e := core.Event{Kind: core.EventCashInCreated, EntityID: 1, Date: core.NewDate(2024, 10, 1)}

	err := w.HandleEvent(context.Background(), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	disabled := NewExportWorker(nil, nil, 1, time.Minute)
	assert.NoError(t, disabled.HandleEvent(context.Background(), e))
}

type failingAuditor struct{}

func (failingAuditor) AuditUser(context.Context, int64) (map[int64][]core.Drift, error) {
	return nil, errors.New("database is locked")
}

func TestAuditLoop_RunOnce(t *testing.T) {
	f := newFixture(t)
	food, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, "food")
	require.NoError(t, err)
	b, err := f.ledger.Budgets.CreateBudget(f.ctx, f.user.ID, 2024, 10)
	require.NoError(t, err)
	_, err = f.ledger.Budgets.AddBudgetExpense(f.ctx, b.ID, food.ID, core.MustMoney("100"))
	require.NoError(t, err)

	asOf := core.NewDate(2024, 10, 31)
	out, err := f.ledger.Transactions.AddCashOut(f.ctx, services.AddCashOutInput{
		UserID:    f.user.ID,
		Amount:    core.MustMoney("40"),
		Date:      core.NewDate(2024, 10, 2),
		ExpenseID: food.ID,
		AsOf:      asOf,
	})
	require.NoError(t, err)

	loop := NewAuditLoop(f.repo.Queries(), f.ledger.Budgets, AuditLoopConfig{})
	res := loop.RunOnce(f.ctx)
	assert.Equal(t, AuditResult{Users: 1}, res)

	// moving the cash out to September without a diff leaves the counter behind
	zero := core.Zero
	_, err = f.ledger.Transactions.EditCashOut(f.ctx, services.EditCashOutInput{
		ID:         out.ID,
		UserID:     f.user.ID,
		Amount:     core.MustMoney("40"),
		Date:       core.NewDate(2024, 9, 2),
		ExpenseID:  food.ID,
		AmountDiff: &zero,
		AsOf:       asOf,
	})
	require.NoError(t, err)

	res = loop.RunOnce(f.ctx)
	assert.Equal(t, AuditResult{Users: 1, Budgets: 1, Drifts: 1}, res)

	failing := NewAuditLoop(f.repo.Queries(), failingAuditor{}, AuditLoopConfig{})
	assert.Equal(t, AuditResult{Users: 1, Failed: 1}, failing.RunOnce(f.ctx))
}

type countingAuditor struct {
	calls chan int64
}

func (a countingAuditor) AuditUser(_ context.Context, userID int64) (map[int64][]core.Drift, error) {
	a.calls <- userID
	return nil, nil
}

type staticUsers []core.User

func (u staticUsers) ListUsers(context.Context) ([]core.User, error) {
	return u, nil
}

func TestAuditLoop_Lifecycle(t *testing.T) {
	ctx := context.Background()
	auditor := countingAuditor{calls: make(chan int64, 8)}
	loop := NewAuditLoop(staticUsers{{ID: 42}}, auditor, AuditLoopConfig{Interval: time.Hour})

	require.NoError(t, loop.Start(ctx))
	assert.True(t, loop.IsRunning())
	assert.Error(t, loop.Start(ctx), "already running")

	select {
	case id := <-auditor.calls:
		assert.Equal(t, int64(42), id, "audits immediately on start")
	case <-time.After(5 * time.Second):
		t.Fatal("audit did not run on start")
	}

	require.NoError(t, loop.Stop(ctx))
	assert.False(t, loop.IsRunning())
	assert.NoError(t, loop.Stop(ctx), "stopping twice is a no-op")
}

func TestAuditLoop_RunReturnsOnCancel(t *testing.T) {
	auditor := countingAuditor{calls: make(chan int64, 8)}
	loop := NewAuditLoop(staticUsers{{ID: 1}}, auditor, AuditLoopConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	<-auditor.calls
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, loop.IsRunning())
}

func TestAuditLoop_SkipsSystemUser(t *testing.T) {
	auditor := countingAuditor{calls: make(chan int64, 8)}
	loop := NewAuditLoop(staticUsers{{ID: core.SystemUserID}, {ID: 7}}, auditor, DefaultAuditLoopConfig())

	res := loop.RunOnce(context.Background())
	assert.Equal(t, AuditResult{Users: 1}, res)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, int64(7), <-auditor.calls)
}
