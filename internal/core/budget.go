package core

import "time"

type (
	// Budget is one user's plan for a calendar month (Month is 1-12).
	Budget struct {
		ID     int64
		UserID int64
		Year   int
		Month  int
	}

	// BudgetExpense allocates an expected amount to one expense category
	// under a budget. SpentAmount is a running counter.
	BudgetExpense struct {
		ID             int64
		BudgetID       int64
		ExpenseID      int64
		ExpectedAmount Money
		SpentAmount    Money
	}

	// SpentState is where a BudgetExpense is in its seed/accumulate cycle.
	SpentState int
)

const (
	// Unseeded: spent is zero, the next positive update seeds it.
	Unseeded SpentState = iota
	// Accumulating: spent is non-zero, updates add to it.
	Accumulating
)

// ValidateMonth checks a 1-12 month number.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// MonthName formats a 1-12 month number for display.
func MonthName(month int) string {
	if ValidateMonth(month) != nil {
		return ""
	}
	return time.Month(month).String()
}

func (b Budget) Validate() error {
	if b.Year < 1 {
		return ErrInvalidDate
	}
	return ValidateMonth(b.Month)
}

// Period returns the first and last day of the budget's month.
func (b Budget) Period() DateRange {
	first := NewDate(b.Year, b.Month, 1)
	return DateRange{Start: first, End: first.LastOfMonth()}
}

// Contains reports whether d falls in the budget's month.
func (b Budget) Contains(d Date) bool {
	return d.Year() == b.Year && d.Month() == b.Month
}

func (be BudgetExpense) State() SpentState {
	if be.SpentAmount.IsZero() {
		return Unseeded
	}
	return Accumulating
}

// UpdateSpentAmount seeds an unseeded counter with delta and otherwise
// accumulates it. The rule is the same for new cash outs, backfill sums
// and positive edit differences.
func (be *BudgetExpense) UpdateSpentAmount(delta Money) {
	if be.State() == Unseeded {
		be.SpentAmount = delta
		return
	}
	be.SpentAmount = be.SpentAmount.Add(delta)
}

// SubtractSpent removes amount from the counter. The counter may go
// negative when a mutation path was skipped earlier; AuditDrift reports it.
func (be *BudgetExpense) SubtractSpent(amount Money) {
	be.SpentAmount = be.SpentAmount.Sub(amount.Abs())
}

// ApplyDelta routes a signed change: negative deltas subtract, positive
// deltas seed or accumulate, zero is a no-op.
func (be *BudgetExpense) ApplyDelta(delta Money) {
	switch delta.Sign() {
	case -1:
		be.SubtractSpent(delta)
	case 1:
		be.UpdateSpentAmount(delta)
	}
}

// SpentPercent is the spent share of the expected amount.
func (be BudgetExpense) SpentPercent() Money {
	return Percent(be.SpentAmount, be.ExpectedAmount)
}
