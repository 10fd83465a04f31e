package storage

import (
	"context"
	"database/sql"

	"ledger/internal/core"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (first_name, last_name, email) VALUES (?, ?, ?)
RETURNING id, first_name, last_name, email`

type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (core.User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.FirstName, arg.LastName, arg.Email)
	return scanUser(row)
}

const getUser = `-- name: GetUser :one
SELECT id, first_name, last_name, email FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const listUsers = `-- name: ListUsers :many
SELECT id, first_name, last_name, email FROM users WHERE id <> 0 ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func scanUser(s scanner) (core.User, error) {
	var u core.User
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
	return u, err
}

const listIncomeTypes = `-- name: ListIncomeTypes :many
SELECT id, name FROM income_types ORDER BY id`

func (q *Queries) ListIncomeTypes(ctx context.Context) ([]core.IncomeType, error) {
	rows, err := q.db.QueryContext(ctx, listIncomeTypes)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (core.IncomeType, error) {
		var t core.IncomeType
		err := s.Scan(&t.ID, &t.Name)
		return t, err
	})
}

const getIncomeType = `-- name: GetIncomeType :one
SELECT id, name FROM income_types WHERE id = ?`

func (q *Queries) GetIncomeType(ctx context.Context, id int64) (core.IncomeType, error) {
	var t core.IncomeType
	err := q.db.QueryRowContext(ctx, getIncomeType, id).Scan(&t.ID, &t.Name)
	return t, err
}

const createIncome = `-- name: CreateIncome :one
INSERT INTO incomes (user_id, name, income_type_id) VALUES (?, ?, ?)
RETURNING id, user_id, name, income_type_id`

func (q *Queries) CreateIncome(ctx context.Context, userID int64, name string, incomeTypeID int64) (core.IncomeCategory, error) {
	row := q.db.QueryRowContext(ctx, createIncome, userID, name, incomeTypeID)
	return scanIncome(row)
}

const getIncome = `-- name: GetIncome :one
SELECT id, user_id, name, income_type_id FROM incomes WHERE id = ?`

func (q *Queries) GetIncome(ctx context.Context, id int64) (core.IncomeCategory, error) {
	return scanIncome(q.db.QueryRowContext(ctx, getIncome, id))
}

const getIncomeByName = `-- name: GetIncomeByName :one
SELECT id, user_id, name, income_type_id FROM incomes WHERE user_id = ? AND name = ?`

func (q *Queries) GetIncomeByName(ctx context.Context, userID int64, name string) (core.IncomeCategory, error) {
	return scanIncome(q.db.QueryRowContext(ctx, getIncomeByName, userID, name))
}

const listIncomesByUser = `-- name: ListIncomesByUser :many
SELECT id, user_id, name, income_type_id FROM incomes WHERE user_id = ? ORDER BY name`

func (q *Queries) ListIncomesByUser(ctx context.Context, userID int64) ([]core.IncomeCategory, error) {
	rows, err := q.db.QueryContext(ctx, listIncomesByUser, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanIncome)
}

func scanIncome(s scanner) (core.IncomeCategory, error) {
	var (
		c      core.IncomeCategory
		typeID sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &typeID)
	c.IncomeTypeID = typeID.Int64
	return c, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (user_id, name) VALUES (?, ?)
RETURNING id, user_id, name`

func (q *Queries) CreateExpense(ctx context.Context, userID int64, name string) (core.ExpenseCategory, error) {
	return scanExpense(q.db.QueryRowContext(ctx, createExpense, userID, name))
}

const getExpense = `-- name: GetExpense :one
SELECT id, user_id, name FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.ExpenseCategory, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const getExpenseByName = `-- name: GetExpenseByName :one
SELECT id, user_id, name FROM expenses WHERE user_id = ? AND name = ?`

func (q *Queries) GetExpenseByName(ctx context.Context, userID int64, name string) (core.ExpenseCategory, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpenseByName, userID, name))
}

const listExpensesByUser = `-- name: ListExpensesByUser :many
SELECT id, user_id, name FROM expenses WHERE user_id = ? ORDER BY name`

func (q *Queries) ListExpensesByUser(ctx context.Context, userID int64) ([]core.ExpenseCategory, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByUser, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExpense)
}

func scanExpense(s scanner) (core.ExpenseCategory, error) {
	var c core.ExpenseCategory
	err := s.Scan(&c.ID, &c.UserID, &c.Name)
	return c, err
}
