package services

import (
	"context"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// CategoryService manages income and expense categories.
type CategoryService struct {
	*deps
}

type incomeCategoryInput struct {
	UserID int64  `validate:"gt=0"`
	Name   string `validate:"notblank"`
}

// Expense names are length-bounded; income names are not.
type expenseCategoryInput struct {
	UserID int64  `validate:"gt=0"`
	Name   string `validate:"notblank,max=100"`
}

// CreateIncomeCategory title-cases name and stores it under userID.
func (s *CategoryService) CreateIncomeCategory(ctx context.Context, userID int64, name string, incomeTypeID int64) (core.IncomeCategory, error) {
	normalized := core.NormalizeName(name)
	if err := validateInput(incomeCategoryInput{UserID: userID, Name: normalized}); err != nil {
		return core.IncomeCategory{}, err
	}

	q := s.store.Queries()
	if _, err := q.GetIncomeType(ctx, incomeTypeID); err != nil {
		return core.IncomeCategory{}, orNotFound(err, core.ErrNotFound, "get income type")
	}

	c, err := q.CreateIncome(ctx, userID, normalized, incomeTypeID)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return core.IncomeCategory{}, core.ErrDuplicateCategory
		}
		return core.IncomeCategory{}, storeError("create income category", err)
	}

	slog.InfoContext(ctx, "Income category created", "user_id", userID, "id", c.ID, "name", c.Name)
	return c, nil
}

// CreateExpenseCategory title-cases name and stores it under userID.
func (s *CategoryService) CreateExpenseCategory(ctx context.Context, userID int64, name string) (core.ExpenseCategory, error) {
	normalized := core.NormalizeName(name)
	if err := validateInput(expenseCategoryInput{UserID: userID, Name: normalized}); err != nil {
		return core.ExpenseCategory{}, err
	}

	c, err := s.store.Queries().CreateExpense(ctx, userID, normalized)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return core.ExpenseCategory{}, core.ErrDuplicateCategory
		}
		return core.ExpenseCategory{}, storeError("create expense category", err)
	}

	slog.InfoContext(ctx, "Expense category created", "user_id", userID, "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *CategoryService) ListIncomeTypes(ctx context.Context) ([]core.IncomeType, error) {
	types, err := s.store.Queries().ListIncomeTypes(ctx)
	if err != nil {
		return nil, storeError("list income types", err)
	}
	return types, nil
}

// ListIncomeCategories returns the user's own income categories.
func (s *CategoryService) ListIncomeCategories(ctx context.Context, userID int64) ([]core.IncomeCategory, error) {
	cats, err := s.store.Queries().ListIncomesByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list income categories", err)
	}
	return cats, nil
}

// ListExpenseCategories returns the user's own expense categories.
func (s *CategoryService) ListExpenseCategories(ctx context.Context, userID int64) ([]core.ExpenseCategory, error) {
	cats, err := s.store.Queries().ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list expense categories", err)
	}
	return cats, nil
}

// incomeFor loads an income category visible to userID: one of theirs or
// a reserved one.
func incomeFor(ctx context.Context, q *storage.Queries, userID, id int64) (core.IncomeCategory, error) {
	c, err := q.GetIncome(ctx, id)
	if err != nil {
		return core.IncomeCategory{}, orNotFound(err, core.ErrNotFound, "get income category")
	}
	if c.UserID != userID && c.UserID != core.SystemUserID {
		return core.IncomeCategory{}, core.ErrNotFound
	}
	return c, nil
}

func expenseFor(ctx context.Context, q *storage.Queries, userID, id int64) (core.ExpenseCategory, error) {
	c, err := q.GetExpense(ctx, id)
	if err != nil {
		return core.ExpenseCategory{}, orNotFound(err, core.ErrNotFound, "get expense category")
	}
	if c.UserID != userID && c.UserID != core.SystemUserID {
		return core.ExpenseCategory{}, core.ErrNotFound
	}
	return c, nil
}
