package core

import "fmt"

// SystemUserID owns the reserved categories.
const SystemUserID int64 = 0

// Flow tells whether a category classifies inflows or outflows.
type Flow string

const (
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
)

// ReservedCategory is one of the four built-in categories the ledger
// attaches to obligation bookkeeping.
type ReservedCategory int

const (
	// ReservedDebt books money borrowed from a creditor as income.
	ReservedDebt ReservedCategory = iota + 1
	// ReservedSettledCredit books money recovered from a debtor as income.
	ReservedSettledCredit
	// ReservedCredit books money lent to a debtor as an expense.
	ReservedCredit
	// ReservedSettledDebt books money repaid to a creditor as an expense.
	ReservedSettledDebt
)

// AllReserved lists every reserved category.
func AllReserved() []ReservedCategory {
	return []ReservedCategory{ReservedDebt, ReservedSettledCredit, ReservedCredit, ReservedSettledDebt}
}

// Name is the seeded category name.
func (r ReservedCategory) Name() string {
	switch r {
	case ReservedDebt:
		return "Debt"
	case ReservedSettledCredit:
		return "Settled Credit"
	case ReservedCredit:
		return "Credit"
	case ReservedSettledDebt:
		return "Settled Debt"
	default:
		return fmt.Sprintf("reserved(%d)", int(r))
	}
}

func (r ReservedCategory) Flow() Flow {
	switch r {
	case ReservedDebt, ReservedSettledCredit:
		return FlowIncome
	default:
		return FlowExpense
	}
}

func (r ReservedCategory) String() string { return r.Name() }

// ReservedCategories maps reserved roles to the category ids the store
// assigned them. Resolved once at startup.
type ReservedCategories struct {
	ids     map[ReservedCategory]int64
	income  map[int64]ReservedCategory
	expense map[int64]ReservedCategory
}

// NewReservedCategories validates that every role has an id.
func NewReservedCategories(ids map[ReservedCategory]int64) (ReservedCategories, error) {
	rc := ReservedCategories{
		ids:     make(map[ReservedCategory]int64, len(ids)),
		income:  make(map[int64]ReservedCategory),
		expense: make(map[int64]ReservedCategory),
	}
	for _, r := range AllReserved() {
		id, ok := ids[r]
		if !ok {
			return ReservedCategories{}, fmt.Errorf("reserved category %q is not seeded", r.Name())
		}
		rc.ids[r] = id
		if r.Flow() == FlowIncome {
			rc.income[id] = r
		} else {
			rc.expense[id] = r
		}
	}
	return rc, nil
}

// ID returns the category id of a reserved role.
func (rc ReservedCategories) ID(r ReservedCategory) int64 {
	return rc.ids[r]
}

// IncomeRole reports which reserved role an income category id plays.
func (rc ReservedCategories) IncomeRole(id int64) (ReservedCategory, bool) {
	r, ok := rc.income[id]
	return r, ok
}

// ExpenseRole reports which reserved role an expense category id plays.
func (rc ReservedCategories) ExpenseRole(id int64) (ReservedCategory, bool) {
	r, ok := rc.expense[id]
	return r, ok
}
