package services

import (
	"context"
	"sort"

	"ledger/internal/core"
)

// ReportService answers read-only questions over a date range. Missing
// data yields zero totals and empty breakdowns, never an error.
type ReportService struct {
	*deps
}

// WeeksPerMonth is the number of buckets in WeeklyCashOut.
const WeeksPerMonth = 4

// TotalIncomeBetween sums the user's cash ins in r and returns the rows
// behind the total.
func (s *ReportService) TotalIncomeBetween(ctx context.Context, userID int64, r core.DateRange) (core.Money, []core.IncomeLine, error) {
	if !r.Valid() {
		return core.Round2(core.Zero), []core.IncomeLine{}, nil
	}
	lines, err := s.store.Queries().ListIncomeLinesBetween(ctx, userID, r.Start, r.End)
	if err != nil {
		return core.Zero, nil, storeError("list income lines", err)
	}
	if lines == nil {
		lines = []core.IncomeLine{}
	}
	amounts := make([]core.Money, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amount
	}
	return core.Sum(amounts...), lines, nil
}

// TotalExpensesBetween sums the user's cash outs in r.
func (s *ReportService) TotalExpensesBetween(ctx context.Context, userID int64, r core.DateRange) (core.Money, []core.ExpenseLine, error) {
	if !r.Valid() {
		return core.Round2(core.Zero), []core.ExpenseLine{}, nil
	}
	lines, err := s.store.Queries().ListExpenseLinesBetween(ctx, userID, r.Start, r.End)
	if err != nil {
		return core.Zero, nil, storeError("list expense lines", err)
	}
	if lines == nil {
		lines = []core.ExpenseLine{}
	}
	amounts := make([]core.Money, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amount
	}
	return core.Sum(amounts...), lines, nil
}

// IncomeTotalsByCategory sums cash ins per income category. Every category
// of the user appears, with zero when nothing was recorded; reserved
// categories appear only when used.
func (s *ReportService) IncomeTotalsByCategory(ctx context.Context, userID int64, r core.DateRange) ([]core.CategoryAmount, error) {
	cats, err := s.store.Queries().ListIncomesByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list income categories", err)
	}
	_, lines, err := s.TotalIncomeBetween(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	acc := newCategoryTotals()
	for _, c := range cats {
		acc.add(c.ID, c.Name, core.Zero)
	}
	for _, l := range lines {
		acc.add(l.IncomeID, l.Name, l.Amount)
	}
	return acc.result(), nil
}

// ExpenseTotalsByCategory sums cash outs per expense category, zero-filled
// like IncomeTotalsByCategory.
func (s *ReportService) ExpenseTotalsByCategory(ctx context.Context, userID int64, r core.DateRange) ([]core.CategoryAmount, error) {
	cats, err := s.store.Queries().ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list expense categories", err)
	}
	_, lines, err := s.TotalExpensesBetween(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	acc := newCategoryTotals()
	for _, c := range cats {
		acc.add(c.ID, c.Name, core.Zero)
	}
	for _, l := range lines {
		acc.add(l.ExpenseID, l.Name, l.Amount)
	}
	return acc.result(), nil
}

// ExpensePercentageOfIncome gives each expense category's spending in r as
// a percentage of the income in r, keyed by category name, along with the
// percentage for all expenses. Both are empty and zero when there is no
// income or no expense in r.
func (s *ReportService) ExpensePercentageOfIncome(ctx context.Context, userID int64, r core.DateRange) (map[string]core.Money, core.Money, error) {
	empty := map[string]core.Money{}
	income, _, err := s.TotalIncomeBetween(ctx, userID, r)
	if err != nil {
		return nil, core.Zero, err
	}
	expenses, lines, err := s.TotalExpensesBetween(ctx, userID, r)
	if err != nil {
		return nil, core.Zero, err
	}
	if income.IsZero() || len(lines) == 0 {
		return empty, core.Round2(core.Zero), nil
	}

	byName := make(map[string][]core.Money)
	for _, l := range lines {
		byName[l.Name] = append(byName[l.Name], l.Amount)
	}
	out := make(map[string]core.Money, len(byName))
	for name, amounts := range byName {
		out[name] = core.Percent(core.Sum(amounts...), income)
	}
	return out, core.Percent(expenses, income), nil
}

// SavingsBetween returns income minus expenses in r and that amount as a
// percentage of income (zero without income).
func (s *ReportService) SavingsBetween(ctx context.Context, userID int64, r core.DateRange) (core.Money, core.Money, error) {
	income, _, err := s.TotalIncomeBetween(ctx, userID, r)
	if err != nil {
		return core.Zero, core.Zero, err
	}
	expenses, _, err := s.TotalExpensesBetween(ctx, userID, r)
	if err != nil {
		return core.Zero, core.Zero, err
	}
	savings := core.Round2(income.Sub(expenses))
	return savings, core.Percent(savings, income), nil
}

// WeeklyCashOut splits the cash outs of asOf's month into four weeks
// counted from the first of the month. The fourth week runs to the end of
// the month. Days after asOf are not counted.
func (s *ReportService) WeeklyCashOut(ctx context.Context, userID int64, asOf core.Date) ([WeeksPerMonth]core.Money, error) {
	var weeks [WeeksPerMonth]core.Money
	for i := range weeks {
		weeks[i] = core.Round2(core.Zero)
	}

	first := asOf.FirstOfMonth()
	_, lines, err := s.TotalExpensesBetween(ctx, userID, core.DateRange{Start: first, End: asOf})
	if err != nil {
		return weeks, err
	}

	buckets := make([][]core.Money, WeeksPerMonth)
	for _, l := range lines {
		w := (l.Date.Day() - 1) / 7
		if w >= WeeksPerMonth {
			w = WeeksPerMonth - 1
		}
		buckets[w] = append(buckets[w], l.Amount)
	}
	for i, b := range buckets {
		weeks[i] = core.Sum(b...)
	}
	return weeks, nil
}

// TransactionsByCategory lists the user's cash ins of one income category,
// newest first.
func (s *ReportService) TransactionsByCategory(ctx context.Context, userID, incomeID int64) ([]core.CashIn, error) {
	rows, err := s.store.Queries().ListCashInsByIncome(ctx, userID, incomeID)
	if err != nil {
		return nil, storeError("list cash ins", err)
	}
	return rows, nil
}

// categoryTotals accumulates raw amounts per category and rounds once.
type categoryTotals struct {
	order   []int64
	names   map[int64]string
	amounts map[int64][]core.Money
}

func newCategoryTotals() *categoryTotals {
	return &categoryTotals{
		names:   make(map[int64]string),
		amounts: make(map[int64][]core.Money),
	}
}

func (c *categoryTotals) add(id int64, name string, amount core.Money) {
	if _, ok := c.names[id]; !ok {
		c.order = append(c.order, id)
		c.names[id] = name
	}
	c.amounts[id] = append(c.amounts[id], amount)
}

func (c *categoryTotals) result() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, core.CategoryAmount{ID: id, Name: c.names[id], Amount: core.Sum(c.amounts[id]...)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
