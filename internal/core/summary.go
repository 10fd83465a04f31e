package core

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// DefaultRange is the first of asOf's month through asOf.
func DefaultRange(asOf Date) DateRange {
	return DateRange{Start: asOf.FirstOfMonth(), End: asOf}
}

// Valid reports whether the range is non-empty.
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start.Time)
}

// Contains reports whether d falls in the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	ID     int64
	Name   string
	Amount Money
}

// IncomeLine is one CashIn row as reported by the income totals.
type IncomeLine struct {
	ID          int64
	IncomeID    int64
	Amount      Money
	Date        Date
	Name        string
	Description string
	IncomeType  string
}

// ExpenseLine is one CashOut row as reported by the expense totals.
type ExpenseLine struct {
	ID          int64
	ExpenseID   int64
	Amount      Money
	Date        Date
	Name        string
	Description string
}

// BudgetTotals summarizes one budget.
type BudgetTotals struct {
	Budget        Budget
	TotalExpected Money
	TotalSpent    Money
}

// BudgetLine is one BudgetExpense with its category name.
type BudgetLine struct {
	BudgetExpense
	ExpenseName  string
	SpentPercent Money
}

// BudgetSummary is a budget with its lines and totals.
type BudgetSummary struct {
	BudgetTotals
	Lines        []BudgetLine
	SpentPercent Money
}

// Drift is a BudgetExpense whose counter disagrees with the derived sum of
// matching cash outs.
type Drift struct {
	BudgetExpenseID int64
	ExpenseID       int64
	SpentAmount     Money
	DerivedAmount   Money
}

// Difference is counter minus derived sum.
func (d Drift) Difference() Money {
	return d.SpentAmount.Sub(d.DerivedAmount)
}

// ObligationTotals sums a user's credits or debts.
type ObligationTotals struct {
	TotalAmount Money
	TotalPaid   Money
}
