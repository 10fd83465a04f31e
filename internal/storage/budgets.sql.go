package storage

import (
	"context"

	"ledger/internal/core"
)

const createBudget = `-- name: CreateBudget :one
INSERT INTO budgets (user_id, year, month) VALUES (?, ?, ?)
RETURNING id, user_id, year, month`

func (q *Queries) CreateBudget(ctx context.Context, userID int64, year, month int) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, createBudget, userID, year, month))
}

const getBudget = `-- name: GetBudget :one
SELECT id, user_id, year, month FROM budgets WHERE id = ?`

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
}

const getBudgetByMonth = `-- name: GetBudgetByMonth :one
SELECT id, user_id, year, month FROM budgets WHERE user_id = ? AND year = ? AND month = ?`

func (q *Queries) GetBudgetByMonth(ctx context.Context, userID int64, year, month int) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudgetByMonth, userID, year, month))
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, user_id, year, month FROM budgets WHERE user_id = ? ORDER BY year DESC, month DESC`

func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBudget)
}

func scanBudget(s scanner) (core.Budget, error) {
	var b core.Budget
	err := s.Scan(&b.ID, &b.UserID, &b.Year, &b.Month)
	return b, err
}

const budgetExpenseColumns = `id, budget_id, expense_id, expected_amount, spent_amount`

const createBudgetExpense = `-- name: CreateBudgetExpense :one
INSERT INTO budget_expenses (budget_id, expense_id, expected_amount, spent_amount)
VALUES (?, ?, ?, '0')
RETURNING ` + budgetExpenseColumns

func (q *Queries) CreateBudgetExpense(ctx context.Context, budgetID, expenseID int64, expected core.Money) (core.BudgetExpense, error) {
	return scanBudgetExpense(q.db.QueryRowContext(ctx, createBudgetExpense, budgetID, expenseID, expected))
}

const getBudgetExpense = `-- name: GetBudgetExpense :one
SELECT ` + budgetExpenseColumns + ` FROM budget_expenses WHERE id = ?`

func (q *Queries) GetBudgetExpense(ctx context.Context, id int64) (core.BudgetExpense, error) {
	return scanBudgetExpense(q.db.QueryRowContext(ctx, getBudgetExpense, id))
}

const getBudgetExpenseFor = `-- name: GetBudgetExpenseFor :one
SELECT ` + budgetExpenseColumns + ` FROM budget_expenses WHERE budget_id = ? AND expense_id = ?`

func (q *Queries) GetBudgetExpenseFor(ctx context.Context, budgetID, expenseID int64) (core.BudgetExpense, error) {
	return scanBudgetExpense(q.db.QueryRowContext(ctx, getBudgetExpenseFor, budgetID, expenseID))
}

const listBudgetLines = `-- name: ListBudgetLines :many
SELECT be.id, be.budget_id, be.expense_id, be.expected_amount, be.spent_amount, e.name
FROM budget_expenses be
JOIN expenses e ON e.id = be.expense_id
WHERE be.budget_id = ?
ORDER BY e.name`

func (q *Queries) ListBudgetLines(ctx context.Context, budgetID int64) ([]core.BudgetLine, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetLines, budgetID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.BudgetLine, error) {
		var l core.BudgetLine
		err := s.Scan(&l.ID, &l.BudgetID, &l.ExpenseID, &l.ExpectedAmount, &l.SpentAmount, &l.ExpenseName)
		return l, err
	})
}

const updateBudgetExpenseSpent = `-- name: UpdateBudgetExpenseSpent :exec
UPDATE budget_expenses SET spent_amount = ? WHERE id = ?`

func (q *Queries) UpdateBudgetExpenseSpent(ctx context.Context, id int64, spent core.Money) error {
	_, err := q.db.ExecContext(ctx, updateBudgetExpenseSpent, spent, id)
	return err
}

const updateBudgetExpenseExpected = `-- name: UpdateBudgetExpenseExpected :execrows
UPDATE budget_expenses SET expected_amount = ? WHERE id = ?`

func (q *Queries) UpdateBudgetExpenseExpected(ctx context.Context, id int64, expected core.Money) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudgetExpenseExpected, expected, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudgetExpense = `-- name: DeleteBudgetExpense :execrows
DELETE FROM budget_expenses WHERE id = ?`

func (q *Queries) DeleteBudgetExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudgetExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBudgetExpense(s scanner) (core.BudgetExpense, error) {
	var be core.BudgetExpense
	err := s.Scan(&be.ID, &be.BudgetID, &be.ExpenseID, &be.ExpectedAmount, &be.SpentAmount)
	return be, err
}
