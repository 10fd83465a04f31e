package services

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// BudgetService manages monthly budgets and their per-expense lines.
type BudgetService struct {
	*deps
}

type budgetInput struct {
	UserID int64 `validate:"gt=0"`
	Year   int   `validate:"gte=1,lte=9999"`
	Month  int   `validate:"gte=1,lte=12"`
}

// CreateBudget opens a budget for one month. At most one budget exists per
// user and month.
func (s *BudgetService) CreateBudget(ctx context.Context, userID int64, year, month int) (core.Budget, error) {
	if err := validateInput(budgetInput{UserID: userID, Year: year, Month: month}); err != nil {
		return core.Budget{}, err
	}

	b, err := s.store.Queries().CreateBudget(ctx, userID, year, month)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return core.Budget{}, core.ErrDuplicateBudget
		}
		return core.Budget{}, storeError("create budget", err)
	}
	s.budgets.remember(b)

	slog.InfoContext(ctx, "Budget created", "user_id", userID, "id", b.ID, "year", year, "month", core.MonthName(month))
	s.publish(ctx, budgetEvent(b))
	return b, nil
}

// AddBudgetExpense attaches an expected amount for one expense category to
// a budget, starting unseeded.
func (s *BudgetService) AddBudgetExpense(ctx context.Context, budgetID, expenseID int64, expected core.Money) (core.BudgetExpense, error) {
	if err := core.ValidateAmount(expected); err != nil {
		return core.BudgetExpense{}, err
	}

	var (
		budget core.Budget
		be     core.BudgetExpense
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		budget, err = q.GetBudget(ctx, budgetID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get budget")
		}
		if _, err := expenseFor(ctx, q, budget.UserID, expenseID); err != nil {
			return err
		}
		be, err = q.CreateBudgetExpense(ctx, budgetID, expenseID, expected)
		if err != nil {
			if storage.IsUniqueViolation(err) {
				return core.ErrDuplicateBudgetExpense
			}
			return storeError("create budget expense", err)
		}
		return nil
	})
	if err != nil {
		return core.BudgetExpense{}, err
	}

	slog.InfoContext(ctx, "Budget expense added",
		"budget_id", budgetID,
		"expense_id", expenseID,
		"expected", expected.String())
	s.publish(ctx, budgetEvent(budget))
	return be, nil
}

// EditBudgetExpense changes the expected amount of a line. The spent
// counter is untouched.
func (s *BudgetService) EditBudgetExpense(ctx context.Context, id int64, expected core.Money) (core.BudgetExpense, error) {
	if err := core.ValidateAmount(expected); err != nil {
		return core.BudgetExpense{}, err
	}

	var be core.BudgetExpense
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		n, err := q.UpdateBudgetExpenseExpected(ctx, id, expected)
		if err != nil {
			return storeError("update budget expense", err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		be, err = q.GetBudgetExpense(ctx, id)
		return orNotFound(err, core.ErrNotFound, "get budget expense")
	})
	if err != nil {
		return core.BudgetExpense{}, err
	}
	return be, nil
}

func (s *BudgetService) DeleteBudgetExpense(ctx context.Context, id int64) error {
	n, err := s.store.Queries().DeleteBudgetExpense(ctx, id)
	if err != nil {
		return storeError("delete budget expense", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Budget expense deleted", "id", id)
	return nil
}

// GetBudget finds the user's budget for a month.
func (s *BudgetService) GetBudget(ctx context.Context, userID int64, year, month int) (core.Budget, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.Budget{}, err
	}
	b, ok, err := s.budgets.lookup(ctx, s.store.Queries(), BudgetKey{UserID: userID, Year: year, Month: month})
	if err != nil {
		return core.Budget{}, err
	}
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

// ListBudgets returns every budget of the user, newest month first, with
// expected and spent totals.
func (s *BudgetService) ListBudgets(ctx context.Context, userID int64) ([]core.BudgetTotals, error) {
	q := s.store.Queries()
	budgets, err := q.ListBudgets(ctx, userID)
	if err != nil {
		return nil, storeError("list budgets", err)
	}

	out := make([]core.BudgetTotals, 0, len(budgets))
	for _, b := range budgets {
		lines, err := q.ListBudgetLines(ctx, b.ID)
		if err != nil {
			return nil, storeError("list budget lines", err)
		}
		out = append(out, totalsOf(b, lines))
	}
	return out, nil
}

// ReconcileOnView backfills every unseeded line of a budget from the cash
// outs already recorded in the budget's month, then returns the summary.
// Running it again is a no-op for lines that hold a value.
func (s *BudgetService) ReconcileOnView(ctx context.Context, budgetID int64) (core.BudgetSummary, error) {
	var (
		budget core.Budget
		lines  []core.BudgetLine
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		budget, err = q.GetBudget(ctx, budgetID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get budget")
		}
		lines, err = q.ListBudgetLines(ctx, budgetID)
		if err != nil {
			return storeError("list budget lines", err)
		}

		period := budget.Period()
		for i := range lines {
			if lines[i].State() != core.Unseeded {
				continue
			}
			amounts, err := q.ListCashOutAmounts(ctx, budget.UserID, lines[i].ExpenseID, period.Start, period.End)
			if err != nil {
				return storeError("list cash out amounts", err)
			}
			seeded, err := seedSpent(ctx, q, lines[i].BudgetExpense, core.Sum(amounts...))
			if err != nil {
				return err
			}
			lines[i].BudgetExpense = seeded
		}
		return nil
	})
	if err != nil {
		return core.BudgetSummary{}, err
	}

	return summaryOf(budget, lines), nil
}

// BudgetSummary returns a budget with its lines and totals without
// backfilling.
func (s *BudgetService) BudgetSummary(ctx context.Context, budgetID int64) (core.BudgetSummary, error) {
	q := s.store.Queries()
	budget, err := q.GetBudget(ctx, budgetID)
	if err != nil {
		return core.BudgetSummary{}, orNotFound(err, core.ErrNotFound, "get budget")
	}
	lines, err := q.ListBudgetLines(ctx, budgetID)
	if err != nil {
		return core.BudgetSummary{}, storeError("list budget lines", err)
	}
	return summaryOf(budget, lines), nil
}

// AuditDrift compares each line's spent counter with the sum of the cash
// outs it should track and returns the lines that disagree. Unseeded lines
// are skipped because a zero counter means "not yet backfilled".
func (s *BudgetService) AuditDrift(ctx context.Context, budgetID int64) ([]core.Drift, error) {
	q := s.store.Queries()
	budget, err := q.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, orNotFound(err, core.ErrNotFound, "get budget")
	}
	lines, err := q.ListBudgetLines(ctx, budgetID)
	if err != nil {
		return nil, storeError("list budget lines", err)
	}

	period := budget.Period()
	var drifts []core.Drift
	for _, l := range lines {
		if l.State() == core.Unseeded {
			continue
		}
		amounts, err := q.ListCashOutAmounts(ctx, budget.UserID, l.ExpenseID, period.Start, period.End)
		if err != nil {
			return nil, storeError("list cash out amounts", err)
		}
		derived := core.Sum(amounts...)
		if !core.Round2(l.SpentAmount).Equal(derived) {
			drifts = append(drifts, core.Drift{
				BudgetExpenseID: l.ID,
				ExpenseID:       l.ExpenseID,
				SpentAmount:     l.SpentAmount,
				DerivedAmount:   derived,
			})
		}
	}

	if len(drifts) > 0 {
		slog.WarnContext(ctx, "Budget drift detected", "budget_id", budgetID, "lines", len(drifts))
	}
	return drifts, nil
}

// AuditUser runs AuditDrift over every budget of a user, keyed by budget id.
func (s *BudgetService) AuditUser(ctx context.Context, userID int64) (map[int64][]core.Drift, error) {
	budgets, err := s.store.Queries().ListBudgets(ctx, userID)
	if err != nil {
		return nil, storeError("list budgets", err)
	}
	out := make(map[int64][]core.Drift)
	for _, b := range budgets {
		drifts, err := s.AuditDrift(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if len(drifts) > 0 {
			out[b.ID] = drifts
		}
	}
	return out, nil
}

func totalsOf(b core.Budget, lines []core.BudgetLine) core.BudgetTotals {
	expected := make([]core.Money, 0, len(lines))
	spent := make([]core.Money, 0, len(lines))
	for _, l := range lines {
		expected = append(expected, l.ExpectedAmount)
		spent = append(spent, l.SpentAmount)
	}
	return core.BudgetTotals{
		Budget:        b,
		TotalExpected: core.Sum(expected...),
		TotalSpent:    core.Sum(spent...),
	}
}

func summaryOf(b core.Budget, lines []core.BudgetLine) core.BudgetSummary {
	for i := range lines {
		lines[i].SpentPercent = lines[i].BudgetExpense.SpentPercent()
	}
	totals := totalsOf(b, lines)
	return core.BudgetSummary{
		BudgetTotals: totals,
		Lines:        lines,
		SpentPercent: core.Percent(totals.TotalSpent, totals.TotalExpected),
	}
}

func budgetEvent(b core.Budget) core.Event {
	return core.Event{
		Kind:     core.EventBudgetChanged,
		UserID:   b.UserID,
		EntityID: b.ID,
		Date:     core.NewDate(b.Year, b.Month, 1),
		Occurred: time.Now().UTC(),
	}
}
