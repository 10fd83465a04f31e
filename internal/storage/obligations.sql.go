package storage

import (
	"context"

	"ledger/internal/core"
)

const creditColumns = `id, user_id, debtor, amount, date_taken, date_due, description, amount_paid, is_paid, version`

const createCredit = `-- name: CreateCredit :one
INSERT INTO credits (user_id, debtor, amount, date_taken, date_due, description)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + creditColumns

func (q *Queries) CreateCredit(ctx context.Context, c core.Credit) (core.Credit, error) {
	row := q.db.QueryRowContext(ctx, createCredit,
		c.UserID, c.Debtor, c.Amount, c.DateTaken, c.DateDue, c.Description)
	return scanCredit(row)
}

const getCredit = `-- name: GetCredit :one
SELECT ` + creditColumns + ` FROM credits WHERE id = ? AND user_id = ?`

func (q *Queries) GetCredit(ctx context.Context, id, userID int64) (core.Credit, error) {
	return scanCredit(q.db.QueryRowContext(ctx, getCredit, id, userID))
}

const listCredits = `-- name: ListCredits :many
SELECT ` + creditColumns + ` FROM credits WHERE user_id = ? ORDER BY date_taken DESC, id DESC`

func (q *Queries) ListCredits(ctx context.Context, userID int64) ([]core.Credit, error) {
	rows, err := q.db.QueryContext(ctx, listCredits, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCredit)
}

const updateCreditPaid = `-- name: UpdateCreditPaid :execrows
UPDATE credits SET amount_paid = ?, is_paid = ?, version = version + 1
WHERE id = ? AND version = ?`

// UpdateCreditPaid writes a new paid balance if the row is still at the
// version it was read at. Zero rows affected means a concurrent writer won.
func (q *Queries) UpdateCreditPaid(ctx context.Context, c core.Credit) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCreditPaid, c.AmountPaid, c.IsPaid, c.ID, c.Version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanCredit(s scanner) (core.Credit, error) {
	var c core.Credit
	err := s.Scan(&c.ID, &c.UserID, &c.Debtor, &c.Amount, &c.DateTaken, &c.DateDue,
		&c.Description, &c.AmountPaid, &c.IsPaid, &c.Version)
	return c, err
}

const debtColumns = `id, user_id, creditor, amount, date_taken, date_due, description, amount_paid, is_paid, version`

const createDebt = `-- name: CreateDebt :one
INSERT INTO debts (user_id, creditor, amount, date_taken, date_due, description)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + debtColumns

func (q *Queries) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	row := q.db.QueryRowContext(ctx, createDebt,
		d.UserID, d.Creditor, d.Amount, d.DateTaken, d.DateDue, d.Description)
	return scanDebt(row)
}

const getDebt = `-- name: GetDebt :one
SELECT ` + debtColumns + ` FROM debts WHERE id = ? AND user_id = ?`

func (q *Queries) GetDebt(ctx context.Context, id, userID int64) (core.Debt, error) {
	return scanDebt(q.db.QueryRowContext(ctx, getDebt, id, userID))
}

const listDebts = `-- name: ListDebts :many
SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? ORDER BY date_taken DESC, id DESC`

func (q *Queries) ListDebts(ctx context.Context, userID int64) ([]core.Debt, error) {
	rows, err := q.db.QueryContext(ctx, listDebts, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDebt)
}

const updateDebtPaid = `-- name: UpdateDebtPaid :execrows
UPDATE debts SET amount_paid = ?, is_paid = ?, version = version + 1
WHERE id = ? AND version = ?`

func (q *Queries) UpdateDebtPaid(ctx context.Context, d core.Debt) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateDebtPaid, d.AmountPaid, d.IsPaid, d.ID, d.Version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDebt(s scanner) (core.Debt, error) {
	var d core.Debt
	err := s.Scan(&d.ID, &d.UserID, &d.Creditor, &d.Amount, &d.DateTaken, &d.DateDue,
		&d.Description, &d.AmountPaid, &d.IsPaid, &d.Version)
	return d, err
}

const createDebtorPayment = `-- name: CreateDebtorPayment :one
INSERT INTO debtor_payments (credit_id, amount, date) VALUES (?, ?, ?)
RETURNING id, credit_id, amount, date`

func (q *Queries) CreateDebtorPayment(ctx context.Context, p core.DebtorPayment) (core.DebtorPayment, error) {
	var out core.DebtorPayment
	err := q.db.QueryRowContext(ctx, createDebtorPayment, p.CreditID, p.Amount, p.Date).
		Scan(&out.ID, &out.CreditID, &out.Amount, &out.Date)
	return out, err
}

const listDebtorPayments = `-- name: ListDebtorPayments :many
SELECT id, credit_id, amount, date FROM debtor_payments WHERE credit_id = ? ORDER BY date, id`

func (q *Queries) ListDebtorPayments(ctx context.Context, creditID int64) ([]core.DebtorPayment, error) {
	rows, err := q.db.QueryContext(ctx, listDebtorPayments, creditID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.DebtorPayment, error) {
		var p core.DebtorPayment
		err := s.Scan(&p.ID, &p.CreditID, &p.Amount, &p.Date)
		return p, err
	})
}

const createCreditorPayment = `-- name: CreateCreditorPayment :one
INSERT INTO creditor_payments (debt_id, amount, date) VALUES (?, ?, ?)
RETURNING id, debt_id, amount, date`

func (q *Queries) CreateCreditorPayment(ctx context.Context, p core.CreditorPayment) (core.CreditorPayment, error) {
	var out core.CreditorPayment
	err := q.db.QueryRowContext(ctx, createCreditorPayment, p.DebtID, p.Amount, p.Date).
		Scan(&out.ID, &out.DebtID, &out.Amount, &out.Date)
	return out, err
}

const listCreditorPayments = `-- name: ListCreditorPayments :many
SELECT id, debt_id, amount, date FROM creditor_payments WHERE debt_id = ? ORDER BY date, id`

func (q *Queries) ListCreditorPayments(ctx context.Context, debtID int64) ([]core.CreditorPayment, error) {
	rows, err := q.db.QueryContext(ctx, listCreditorPayments, debtID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.CreditorPayment, error) {
		var p core.CreditorPayment
		err := s.Scan(&p.ID, &p.DebtID, &p.Amount, &p.Date)
		return p, err
	})
}
