package core

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValidate(t *testing.T) {
	assert.NoError(t, NewDate(2025, 1, 1).Validate())
	assert.NoError(t, NewDate(2025, 12, 31).Validate())
	assert.ErrorIs(t, Date{}.Validate(), ErrInvalidDate)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-10-05 ")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 10, 5), d)
	assert.Equal(t, "2024-10-05", d.String())
	assert.Equal(t, 10, d.Month())

	for _, in := range []string{"", "05/10/2024", "2024-13-01", "2024-02-30"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2024, 2, 10)
	assert.Equal(t, NewDate(2024, 2, 1), d.FirstOfMonth())
	assert.Equal(t, NewDate(2024, 2, 29), d.LastOfMonth())
	assert.Equal(t, NewDate(2024, 3, 1), d.AddDays(20))
	assert.Equal(t, NewDate(2024, 2, 9), d.AddDays(-1))
	assert.Equal(t, "", Date{}.String())
	assert.True(t, Date{}.IsEmpty())
	assert.Equal(t, NewDate(2024, 2, 10), DateOf(time.Date(2024, 2, 10, 23, 59, 0, 0, time.UTC)))
}

func TestDateScanValue(t *testing.T) {
	v, err := NewDate(2024, 10, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	tests := []struct {
		name string
		src  any
		want Date
	}{
		{"text", "2024-10-01", NewDate(2024, 10, 1)},
		{"timestamp text", "2024-10-01T00:00:00Z", NewDate(2024, 10, 1)},
		{"bytes", []byte("2024-10-02"), NewDate(2024, 10, 2)},
		{"time", time.Date(2024, 10, 3, 12, 0, 0, 0, time.UTC), NewDate(2024, 10, 3)},
		{"null", nil, Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.ErrorIs(t, d.Scan("garbage"), ErrInvalidDate)
}

func TestDateRange(t *testing.T) {
	asOf := NewDate(2024, 10, 15)
	r := DefaultRange(asOf)
	assert.Equal(t, NewDate(2024, 10, 1), r.Start)
	assert.Equal(t, asOf, r.End)
	assert.True(t, r.Valid())
	assert.True(t, r.Contains(NewDate(2024, 10, 1)))
	assert.True(t, r.Contains(asOf))
	assert.False(t, r.Contains(NewDate(2024, 10, 16)))
	assert.False(t, r.Contains(NewDate(2024, 9, 30)))

	assert.False(t, DateRange{Start: asOf, End: NewDate(2024, 10, 1)}.Valid())
	assert.False(t, DateRange{End: asOf}.Valid())
}

func TestValidateNotFuture(t *testing.T) {
	asOf := NewDate(2024, 10, 15)
	assert.NoError(t, ValidateNotFuture(asOf, asOf))
	assert.ErrorIs(t, ValidateNotFuture(asOf.AddDays(1), asOf), ErrFutureDate)
	assert.ErrorIs(t, ValidateNotFuture(Date{}, asOf), ErrInvalidDate)
	assert.NoError(t, ValidateNotFuture(NewDate(2999, 1, 1), Date{}), "zero asOf skips the check")
}

func TestValidateAmounts(t *testing.T) {
	assert.NoError(t, ValidateAmount(Zero))
	assert.ErrorIs(t, ValidateAmount(MustMoney("-0.01")), ErrInvalidAmount)
	assert.NoError(t, ValidatePositiveAmount(MustMoney("0.01")))
	assert.ErrorIs(t, ValidatePositiveAmount(Zero), ErrInvalidAmount)
}

func TestTransactionValidate(t *testing.T) {
	ok := CashOut{Amount: MustMoney("10"), Date: NewDate(2024, 10, 1), Description: "groceries"}
	assert.NoError(t, ok.Validate())

	zero := ok
	zero.Amount = Zero
	assert.ErrorIs(t, zero.Validate(), ErrInvalidAmount)

	long := ok
	long.Description = strings.Repeat("x", MaxDescriptionLength+1)
	assert.ErrorIs(t, long.Validate(), ErrDescriptionTooLong)

	in := CashIn{Amount: MustMoney("10")}
	assert.ErrorIs(t, in.Validate(), ErrInvalidDate)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Rent", NormalizeName("rent "))
	assert.Equal(t, "Rent", NormalizeName("Rent"))
	assert.Equal(t, "Eating Out", NormalizeName("  eating OUT"))
	assert.Equal(t, "", NormalizeName("   "))

	name, err := ValidateName(" food")
	require.NoError(t, err)
	assert.Equal(t, "Food", name)

	_, err = ValidateName(" ")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = ValidateName(strings.Repeat("a", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("add cash out: %w", ErrFutureDate)
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "future_date", CodeOf(wrapped))
	assert.Equal(t, KindConflict, KindOf(ErrOverpayment))
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindIntegrity, KindOf(ErrIntegrity))

	plain := fmt.Errorf("disk full")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, "internal_error", CodeOf(plain))
}

func TestReservedCategories(t *testing.T) {
	ids := map[ReservedCategory]int64{
		ReservedDebt:          1,
		ReservedSettledCredit: 2,
		ReservedCredit:        1,
		ReservedSettledDebt:   2,
	}
	rc, err := NewReservedCategories(ids)
	require.NoError(t, err)

	role, ok := rc.IncomeRole(1)
	require.True(t, ok)
	assert.Equal(t, ReservedDebt, role)
	role, ok = rc.ExpenseRole(1)
	require.True(t, ok)
	assert.Equal(t, ReservedCredit, role, "income and expense ids live in separate tables")

	_, ok = rc.IncomeRole(3)
	assert.False(t, ok)
	assert.Equal(t, int64(2), rc.ID(ReservedSettledDebt))

	assert.Equal(t, FlowIncome, ReservedSettledCredit.Flow())
	assert.Equal(t, FlowExpense, ReservedSettledDebt.Flow())
	assert.Equal(t, "Settled Credit", ReservedSettledCredit.String())

	delete(ids, ReservedCredit)
	_, err = NewReservedCategories(ids)
	assert.ErrorContains(t, err, `"Credit"`)
}

func TestEvents(t *testing.T) {
	c := CashOut{ID: 7, UserID: 1, ExpenseID: 3, Amount: MustMoney("9.99"), Date: NewDate(2024, 10, 1)}
	e := CashOutEvent(EventCashOutCreated, c)
	assert.Equal(t, int64(7), e.EntityID)
	assert.Equal(t, int64(3), e.CategoryID)
	assert.False(t, e.Occurred.IsZero())
	assert.True(t, e.Kind.IsCashOut())
	assert.False(t, e.Kind.IsCashIn())

	in := CashInEvent(EventCashInDeleted, CashIn{ID: 2, IncomeID: 5})
	assert.Equal(t, int64(5), in.CategoryID)
	assert.True(t, in.Kind.IsCashIn())
	assert.False(t, EventCreditSettled.IsCashIn())
	assert.False(t, EventDebtSettled.IsCashOut())
}
