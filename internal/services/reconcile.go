package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// Counter maintenance. The spent counters of BudgetExpense rows and the
// paid balances of Credit and Debt rows change only through the functions
// in this file, always on the Queries of the caller's unit of work.

// BudgetKey identifies a user's budget month.
type BudgetKey struct {
	UserID int64
	Year   int
	Month  int
}

func budgetKeyFor(userID int64, d core.Date) BudgetKey {
	return BudgetKey{UserID: userID, Year: d.Year(), Month: d.Month()}
}

// budgetIndex resolves budget months to budgets. Budgets are never deleted
// or moved, so found budgets can be cached; misses are not cached.
type budgetIndex struct {
	cache cache.Cache[BudgetKey, core.Budget]
}

func newBudgetIndex(c cache.Cache[BudgetKey, core.Budget]) *budgetIndex {
	return &budgetIndex{cache: c}
}

func (bi *budgetIndex) lookup(ctx context.Context, q *storage.Queries, key BudgetKey) (core.Budget, bool, error) {
	if bi.cache != nil {
		if b, ok := bi.cache.Get(key); ok {
			return b, true, nil
		}
	}
	b, err := q.GetBudgetByMonth(ctx, key.UserID, key.Year, key.Month)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, storeError("get budget", err)
	}
	bi.remember(b)
	return b, true, nil
}

func (bi *budgetIndex) remember(b core.Budget) {
	if bi.cache != nil {
		bi.cache.Set(BudgetKey{UserID: b.UserID, Year: b.Year, Month: b.Month}, b)
	}
}

// applyBudgetDelta routes a signed spent change for expenseID in the month
// of date to the matching BudgetExpense. Without a budget for that month, or
// without a line for the expense, nothing happens.
func (d *deps) applyBudgetDelta(ctx context.Context, q *storage.Queries, userID, expenseID int64, date core.Date, delta core.Money) error {
	if delta.IsZero() {
		return nil
	}
	budget, ok, err := d.budgets.lookup(ctx, q, budgetKeyFor(userID, date))
	if err != nil || !ok {
		return err
	}
	be, err := q.GetBudgetExpenseFor(ctx, budget.ID, expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeError("get budget expense", err)
	}
	before := be.SpentAmount
	be.ApplyDelta(delta)
	return writeSpent(ctx, q, be, before)
}

// seedSpent seeds an unseeded BudgetExpense with a backfilled sum. Lines
// that already hold a value are left alone.
func seedSpent(ctx context.Context, q *storage.Queries, be core.BudgetExpense, sum core.Money) (core.BudgetExpense, error) {
	if be.State() != core.Unseeded {
		return be, nil
	}
	before := be.SpentAmount
	be.UpdateSpentAmount(sum)
	if err := writeSpent(ctx, q, be, before); err != nil {
		return core.BudgetExpense{}, err
	}
	return be, nil
}

func writeSpent(ctx context.Context, q *storage.Queries, be core.BudgetExpense, before core.Money) error {
	if be.SpentAmount.Equal(before) {
		return nil
	}
	if err := q.UpdateBudgetExpenseSpent(ctx, be.ID, be.SpentAmount); err != nil {
		return storeError("update spent amount", err)
	}
	slog.DebugContext(ctx, "Budget spent updated",
		"budget_expense_id", be.ID,
		"expense_id", be.ExpenseID,
		"from", before.String(),
		"to", be.SpentAmount.String())
	return nil
}

// settleCredit applies one payment to a credit under policy and appends its
// receipt. notFound is returned when the credit does not exist for userID.
func settleCredit(ctx context.Context, q *storage.Queries, userID, creditID int64, pay core.Money, date core.Date, policy core.PaymentPolicy, notFound *core.Error) (core.Credit, error) {
	credit, err := q.GetCredit(ctx, creditID, userID)
	if err != nil {
		return core.Credit{}, orNotFound(err, notFound, "get credit")
	}
	if err := credit.ApplyPayment(pay, policy); err != nil {
		return core.Credit{}, err
	}
	n, err := q.UpdateCreditPaid(ctx, credit)
	if err != nil {
		return core.Credit{}, storeError("update credit", err)
	}
	if n == 0 {
		return core.Credit{}, core.ErrConcurrentUpdate
	}
	credit.Version++

	if _, err := q.CreateDebtorPayment(ctx, core.DebtorPayment{CreditID: credit.ID, Amount: pay, Date: date}); err != nil {
		return core.Credit{}, storeError("create debtor payment", err)
	}
	return credit, nil
}

// settleDebt mirrors settleCredit for debts.
func settleDebt(ctx context.Context, q *storage.Queries, userID, debtID int64, pay core.Money, date core.Date, policy core.PaymentPolicy, notFound *core.Error) (core.Debt, error) {
	debt, err := q.GetDebt(ctx, debtID, userID)
	if err != nil {
		return core.Debt{}, orNotFound(err, notFound, "get debt")
	}
	if err := debt.ApplyPayment(pay, policy); err != nil {
		return core.Debt{}, err
	}
	n, err := q.UpdateDebtPaid(ctx, debt)
	if err != nil {
		return core.Debt{}, storeError("update debt", err)
	}
	if n == 0 {
		return core.Debt{}, core.ErrConcurrentUpdate
	}
	debt.Version++

	if _, err := q.CreateCreditorPayment(ctx, core.CreditorPayment{DebtID: debt.ID, Amount: pay, Date: date}); err != nil {
		return core.Debt{}, storeError("create creditor payment", err)
	}
	return debt, nil
}

// recordCashOut inserts a cash out and books it against the budget of its
// month. Every cash out, whatever operation creates it, goes through here.
func (d *deps) recordCashOut(ctx context.Context, q *storage.Queries, c core.CashOut) (core.CashOut, error) {
	out, err := q.CreateCashOut(ctx, c)
	if err != nil {
		return core.CashOut{}, storeError("create cash out", err)
	}
	if err := d.applyBudgetDelta(ctx, q, out.UserID, out.ExpenseID, out.Date, out.Amount); err != nil {
		return core.CashOut{}, err
	}
	return out, nil
}

func recordCashIn(ctx context.Context, q *storage.Queries, c core.CashIn) (core.CashIn, error) {
	out, err := q.CreateCashIn(ctx, c)
	if err != nil {
		return core.CashIn{}, storeError("create cash in", err)
	}
	return out, nil
}
