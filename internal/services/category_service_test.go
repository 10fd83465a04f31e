package services

import (
	"strings"
	"testing"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExpenseCategory_DuplicateIgnoresCaseAndSpace(t *testing.T) {
	f := newFixture(t)

	first, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, "Rent ")
	require.NoError(t, err)
	assert.Equal(t, "Rent", first.Name)

	_, err = f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, "rent")
	assert.ErrorIs(t, err, core.ErrDuplicateCategory)
	assert.Equal(t, core.KindConflict, core.KindOf(err))
}

func TestCreateIncomeCategory_DuplicateIgnoresCaseAndSpace(t *testing.T) {
	f := newFixture(t)

	c := f.income("  side hustle")
	assert.Equal(t, "Side Hustle", c.Name)
	assert.Equal(t, int64(1), c.IncomeTypeID)

	_, err := f.ledger.Categories.CreateIncomeCategory(f.ctx, f.user.ID, "SIDE HUSTLE", 2)
	assert.ErrorIs(t, err, core.ErrDuplicateCategory)
}

func TestCreateCategory_SameNameForDifferentUsers(t *testing.T) {
	f := newFixture(t)
	other := f.otherUser()

	f.expense("Rent")
	c, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, other.ID, "rent")
	require.NoError(t, err)
	assert.Equal(t, other.ID, c.UserID)
}

func TestCreateCategory_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", core.ErrEmptyName},
		{"whitespace only", "   \t", core.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, core.KindValidation, core.KindOf(err))

			_, err = f.ledger.Categories.CreateIncomeCategory(f.ctx, f.user.ID, tt.input, 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, strings.Repeat("a", 100))
	assert.NoError(t, err)
	_, err = f.ledger.Categories.CreateExpenseCategory(f.ctx, f.user.ID, strings.Repeat("b", 101))
	assert.ErrorIs(t, err, core.ErrNameTooLong)
}

func TestCreateIncomeCategory_NoLengthLimit(t *testing.T) {
	f := newFixture(t)

	c, err := f.ledger.Categories.CreateIncomeCategory(f.ctx, f.user.ID, strings.Repeat("a", 101), 1)
	require.NoError(t, err)
	assert.Len(t, c.Name, 101)
}

func TestCreateIncomeCategory_UnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Categories.CreateIncomeCategory(f.ctx, f.user.ID, "Salary", 99)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	f.income("salary")
	f.expense("rent")
	f.expense("food")

	types, err := f.ledger.Categories.ListIncomeTypes(f.ctx)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	incomes, err := f.ledger.Categories.ListIncomeCategories(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, "Salary", incomes[0].Name)

	expenses, err := f.ledger.Categories.ListExpenseCategories(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Food", expenses[0].Name)
	assert.Equal(t, "Rent", expenses[1].Name)
}
