package services

import (
	"testing"

	"ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCredit_BooksCashOut(t *testing.T) {
	f := newFixture(t)

	credit, err := f.ledger.Obligations.CreateCredit(f.ctx, CreateCreditInput{
		UserID:      f.user.ID,
		Debtor:      "  bob  ",
		Amount:      core.MustMoney("500"),
		DateTaken:   october,
		DateDue:     core.NewDate(2024, 12, 31),
		Description: "car repair",
		AsOf:        asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", credit.Debtor)
	assert.False(t, credit.IsPaid)
	assert.True(t, credit.AmountPaid.IsZero())

	_, lines, err := f.ledger.Reports.TotalExpensesBetween(f.ctx, f.user.ID, core.DefaultRange(asOf))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, f.reserved.ID(core.ReservedCredit), lines[0].ExpenseID)
	assert.Equal(t, "500.00", lines[0].Amount.StringFixed(2))

	assert.Equal(t, []core.EventKind{core.EventCreditCreated, core.EventCashOutCreated}, f.pub.kinds())
}

func TestCreateDebt_BooksCashIn(t *testing.T) {
	f := newFixture(t)
	debt := f.debt("1200")
	assert.Equal(t, "Bank", debt.Creditor)

	_, lines, err := f.ledger.Reports.TotalIncomeBetween(f.ctx, f.user.ID, core.DefaultRange(asOf))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, f.reserved.ID(core.ReservedDebt), lines[0].IncomeID)
	assert.Equal(t, "1200.00", lines[0].Amount.StringFixed(2))
}

func TestCreateObligation_Validation(t *testing.T) {
	f := newFixture(t)

	base := CreateCreditInput{UserID: f.user.ID, Debtor: "bob", Amount: core.MustMoney("10"), DateTaken: october, AsOf: asOf}
	tests := []struct {
		name    string
		mutate  func(*CreateCreditInput)
		wantErr error
	}{
		{"blank debtor", func(in *CreateCreditInput) { in.Debtor = "  " }, core.ErrEmptyName},
		{"zero amount", func(in *CreateCreditInput) { in.Amount = core.Zero }, core.ErrInvalidAmount},
		{"due before taken", func(in *CreateCreditInput) { in.DateDue = october.AddDays(-1) }, core.ErrInvalidDate},
		{"taken in the future", func(in *CreateCreditInput) { in.DateTaken = asOf.AddDays(1) }, core.ErrFutureDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := f.ledger.Obligations.CreateCredit(f.ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.ledger.Obligations.CreateDebt(f.ctx, CreateDebtInput{
		UserID: f.user.ID, Creditor: "", Amount: core.MustMoney("10"), DateTaken: october, AsOf: asOf,
	})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	list, err := f.ledger.Obligations.ListCredits(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Credits)
}

func TestSettleCredit_FullPayment(t *testing.T) {
	f := newFixture(t)
	credit := f.credit("500")

	res, err := f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("500"), core.NewDate(2024, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, credit.ID, res.ObligationID)
	assert.Equal(t, "500.00", res.AmountPaid.StringFixed(2))
	assert.True(t, res.IsPaid)
	assert.Equal(t, "100.0%", core.FormatPercent(res.ProgressPercent))

	ins, err := f.ledger.Reports.TransactionsByCategory(f.ctx, f.user.ID, f.settledCreditIncome())
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, res.TransactionID, ins[0].ID)
	require.NotNil(t, ins[0].SettledCreditID)
	assert.Equal(t, credit.ID, *ins[0].SettledCreditID)
	assert.Equal(t, "settling Bob's credit", ins[0].Description)

	_, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("1"), core.NewDate(2024, 10, 21))
	assert.ErrorIs(t, err, core.ErrAlreadySettled)
}

func TestSettleCredit_PartialPayments(t *testing.T) {
	f := newFixture(t)
	credit := f.credit("300")

	res, err := f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("100"), october)
	require.NoError(t, err)
	assert.False(t, res.IsPaid)
	assert.Equal(t, "33.33%", core.FormatPercent(res.ProgressPercent))

	res, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("150"), october)
	require.NoError(t, err)
	assert.False(t, res.IsPaid)
	assert.Equal(t, "83.33%", core.FormatPercent(res.ProgressPercent))

	res, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("50"), october)
	require.NoError(t, err)
	assert.True(t, res.IsPaid)
	assert.Equal(t, "100.0%", core.FormatPercent(res.ProgressPercent))

	receipts, err := f.ledger.Obligations.CreditReceipts(f.ctx, f.user.ID, credit.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 3)
}

func TestSettle_PaymentAboveOutstandingIsBooked(t *testing.T) {
	f := newFixture(t)
	credit := f.credit("500")

	res, err := f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("600"), october)
	require.NoError(t, err)
	assert.True(t, res.IsPaid)
	assert.Equal(t, "600.00", res.AmountPaid.StringFixed(2))
	assert.Equal(t, "120.0%", core.FormatPercent(res.ProgressPercent))

	row := f.creditRow(credit.ID)
	assert.True(t, row.IsPaid)
	assert.Equal(t, "600.00", row.AmountPaid.StringFixed(2))

	ins, err := f.ledger.Reports.TransactionsByCategory(f.ctx, f.user.ID, f.settledCreditIncome())
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, "600.00", ins[0].Amount.StringFixed(2))

	_, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("1"), october)
	assert.ErrorIs(t, err, core.ErrAlreadySettled)

	debt := f.debt("100")
	dres, err := f.ledger.Obligations.SettleDebt(f.ctx, f.user.ID, debt.ID, core.MustMoney("130"), october)
	require.NoError(t, err)
	assert.True(t, dres.IsPaid)
	assert.Equal(t, "130.0%", core.FormatPercent(dres.ProgressPercent))
	assert.True(t, f.debtRow(debt.ID).IsPaid)
}

func TestSettleCredit_Errors(t *testing.T) {
	f := newFixture(t)
	credit := f.credit("100")
	other := f.otherUser()

	_, err := f.ledger.Obligations.SettleCredit(f.ctx, other.ID, credit.ID, core.MustMoney("10"), october)
	assert.ErrorIs(t, err, core.ErrNotFoundOrUnauthorized)

	_, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, 9999, core.MustMoney("10"), october)
	assert.ErrorIs(t, err, core.ErrNotFoundOrUnauthorized)

	_, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("-10"), october)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("10"), core.Date{})
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	assert.True(t, f.creditRow(credit.ID).AmountPaid.IsZero())
}

func TestSettleCredit_IsAtomic(t *testing.T) {
	f := newFixture(t)
	credit := f.credit("500")

	_, err := f.failing().Obligations.SettleCredit(f.ctx, f.user.ID, credit.ID, core.MustMoney("500"), october)
	require.ErrorIs(t, err, errInjected)

	row := f.creditRow(credit.ID)
	assert.False(t, row.IsPaid)
	assert.True(t, row.AmountPaid.IsZero())

	ins, err := f.ledger.Reports.TransactionsByCategory(f.ctx, f.user.ID, f.settledCreditIncome())
	require.NoError(t, err)
	assert.Empty(t, ins)
}

func TestSettleDebt(t *testing.T) {
	f := newFixture(t)
	debt := f.debt("1000")

	res, err := f.ledger.Obligations.SettleDebt(f.ctx, f.user.ID, debt.ID, core.MustMoney("250"), core.NewDate(2024, 10, 9))
	require.NoError(t, err)
	assert.False(t, res.IsPaid)
	assert.Equal(t, "25.0%", core.FormatPercent(res.ProgressPercent))

	_, lines, err := f.ledger.Reports.TotalExpensesBetween(f.ctx, f.user.ID, core.DefaultRange(asOf))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, f.settledDebtExpense(), lines[0].ExpenseID)
	assert.Equal(t, "settling Bank's debt", lines[0].Description)

	receipts, err := f.ledger.Obligations.DebtReceipts(f.ctx, f.user.ID, debt.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "2024-10-09", receipts[0].Date.String())

	_, err = f.ledger.Obligations.DebtReceipts(f.ctx, f.otherUser().ID, debt.ID)
	assert.ErrorIs(t, err, core.ErrNotFoundOrUnauthorized)
}

func TestSettleDebt_BooksAgainstBudget(t *testing.T) {
	f := newFixture(t)
	debt := f.debt("1000")
	_, line := f.budgetLine(2024, 10, f.settledDebtExpense(), "400")

	_, err := f.ledger.Obligations.SettleDebt(f.ctx, f.user.ID, debt.ID, core.MustMoney("250"), october)
	require.NoError(t, err)
	assert.Equal(t, "250.00", f.spent(line.ID))
}

func TestListObligations(t *testing.T) {
	f := newFixture(t)
	first := f.credit("100")
	f.credit("50.255")
	f.debt("20")

	_, err := f.ledger.Obligations.SettleCredit(f.ctx, f.user.ID, first.ID, core.MustMoney("40"), october)
	require.NoError(t, err)

	credits, err := f.ledger.Obligations.ListCredits(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, credits.Credits, 2)
	assert.Equal(t, "150.26", credits.TotalAmount.StringFixed(2))
	assert.Equal(t, "40.00", credits.TotalPaid.StringFixed(2))

	debts, err := f.ledger.Obligations.ListDebts(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, debts.Debts, 1)
	assert.Equal(t, "20.00", debts.TotalAmount.StringFixed(2))

	none, err := f.ledger.Obligations.ListCredits(f.ctx, f.otherUser().ID)
	require.NoError(t, err)
	assert.Empty(t, none.Credits)
	assert.True(t, none.TotalAmount.IsZero())

	got, err := f.ledger.Obligations.GetCredit(f.ctx, f.user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "40", got.AmountPaid.String())
}
