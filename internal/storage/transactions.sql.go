package storage

import (
	"context"
	"database/sql"

	"ledger/internal/core"
)

const cashInColumns = `id, user_id, income_id, amount, date, description, settled_credit_id`

const createCashIn = `-- name: CreateCashIn :one
INSERT INTO cash_ins (user_id, income_id, amount, date, description, settled_credit_id)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + cashInColumns

func (q *Queries) CreateCashIn(ctx context.Context, c core.CashIn) (core.CashIn, error) {
	row := q.db.QueryRowContext(ctx, createCashIn,
		c.UserID, c.IncomeID, c.Amount, c.Date, c.Description, nullID(c.SettledCreditID))
	return scanCashIn(row)
}

const getCashIn = `-- name: GetCashIn :one
SELECT ` + cashInColumns + ` FROM cash_ins WHERE id = ? AND user_id = ?`

func (q *Queries) GetCashIn(ctx context.Context, id, userID int64) (core.CashIn, error) {
	return scanCashIn(q.db.QueryRowContext(ctx, getCashIn, id, userID))
}

const updateCashIn = `-- name: UpdateCashIn :one
UPDATE cash_ins SET description = ?, amount = ?, date = ?, income_id = ?
WHERE id = ? AND user_id = ?
RETURNING ` + cashInColumns

func (q *Queries) UpdateCashIn(ctx context.Context, c core.CashIn) (core.CashIn, error) {
	row := q.db.QueryRowContext(ctx, updateCashIn,
		c.Description, c.Amount, c.Date, c.IncomeID, c.ID, c.UserID)
	return scanCashIn(row)
}

const deleteCashIn = `-- name: DeleteCashIn :execrows
DELETE FROM cash_ins WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteCashIn(ctx context.Context, id, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCashIn, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listCashInsByIncome = `-- name: ListCashInsByIncome :many
SELECT ` + cashInColumns + ` FROM cash_ins
WHERE user_id = ? AND income_id = ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListCashInsByIncome(ctx context.Context, userID, incomeID int64) ([]core.CashIn, error) {
	rows, err := q.db.QueryContext(ctx, listCashInsByIncome, userID, incomeID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCashIn)
}

func scanCashIn(s scanner) (core.CashIn, error) {
	var (
		c       core.CashIn
		settled sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.IncomeID, &c.Amount, &c.Date, &c.Description, &settled)
	c.SettledCreditID = idPtr(settled)
	return c, err
}

const listIncomeLinesBetween = `-- name: ListIncomeLinesBetween :many
SELECT ci.id, ci.income_id, ci.amount, ci.date, i.name, ci.description, COALESCE(it.name, '')
FROM cash_ins ci
JOIN incomes i ON i.id = ci.income_id
LEFT JOIN income_types it ON it.id = i.income_type_id
WHERE ci.user_id = ? AND ci.date BETWEEN ? AND ?
ORDER BY ci.date DESC, ci.id DESC`

func (q *Queries) ListIncomeLinesBetween(ctx context.Context, userID int64, start, end core.Date) ([]core.IncomeLine, error) {
	rows, err := q.db.QueryContext(ctx, listIncomeLinesBetween, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.IncomeLine, error) {
		var l core.IncomeLine
		err := s.Scan(&l.ID, &l.IncomeID, &l.Amount, &l.Date, &l.Name, &l.Description, &l.IncomeType)
		return l, err
	})
}

const cashOutColumns = `id, user_id, expense_id, amount, date, description, settled_debt_id`

const createCashOut = `-- name: CreateCashOut :one
INSERT INTO cash_outs (user_id, expense_id, amount, date, description, settled_debt_id)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + cashOutColumns

func (q *Queries) CreateCashOut(ctx context.Context, c core.CashOut) (core.CashOut, error) {
	row := q.db.QueryRowContext(ctx, createCashOut,
		c.UserID, c.ExpenseID, c.Amount, c.Date, c.Description, nullID(c.SettledDebtID))
	return scanCashOut(row)
}

const getCashOut = `-- name: GetCashOut :one
SELECT ` + cashOutColumns + ` FROM cash_outs WHERE id = ? AND user_id = ?`

func (q *Queries) GetCashOut(ctx context.Context, id, userID int64) (core.CashOut, error) {
	return scanCashOut(q.db.QueryRowContext(ctx, getCashOut, id, userID))
}

const updateCashOut = `-- name: UpdateCashOut :one
UPDATE cash_outs SET description = ?, amount = ?, date = ?, expense_id = ?
WHERE id = ? AND user_id = ?
RETURNING ` + cashOutColumns

func (q *Queries) UpdateCashOut(ctx context.Context, c core.CashOut) (core.CashOut, error) {
	row := q.db.QueryRowContext(ctx, updateCashOut,
		c.Description, c.Amount, c.Date, c.ExpenseID, c.ID, c.UserID)
	return scanCashOut(row)
}

const deleteCashOut = `-- name: DeleteCashOut :execrows
DELETE FROM cash_outs WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteCashOut(ctx context.Context, id, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCashOut, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanCashOut(s scanner) (core.CashOut, error) {
	var (
		c       core.CashOut
		settled sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.ExpenseID, &c.Amount, &c.Date, &c.Description, &settled)
	c.SettledDebtID = idPtr(settled)
	return c, err
}

const listExpenseLinesBetween = `-- name: ListExpenseLinesBetween :many
SELECT co.id, co.expense_id, co.amount, co.date, e.name, co.description
FROM cash_outs co
JOIN expenses e ON e.id = co.expense_id
WHERE co.user_id = ? AND co.date BETWEEN ? AND ?
ORDER BY co.date DESC, co.id DESC`

func (q *Queries) ListExpenseLinesBetween(ctx context.Context, userID int64, start, end core.Date) ([]core.ExpenseLine, error) {
	rows, err := q.db.QueryContext(ctx, listExpenseLinesBetween, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.ExpenseLine, error) {
		var l core.ExpenseLine
		err := s.Scan(&l.ID, &l.ExpenseID, &l.Amount, &l.Date, &l.Name, &l.Description)
		return l, err
	})
}

const listCashOutAmounts = `-- name: ListCashOutAmounts :many
SELECT amount FROM cash_outs
WHERE user_id = ? AND expense_id = ? AND date BETWEEN ? AND ?`

// ListCashOutAmounts returns the raw amounts of one expense category's cash
// outs in a date range. Amounts are summed by the caller with decimal
// arithmetic, never by SQLite.
func (q *Queries) ListCashOutAmounts(ctx context.Context, userID, expenseID int64, start, end core.Date) ([]core.Money, error) {
	rows, err := q.db.QueryContext(ctx, listCashOutAmounts, userID, expenseID, start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.Money, error) {
		var m core.Money
		err := s.Scan(&m)
		return m, err
	})
}
