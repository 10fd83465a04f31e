package core

import "time"

// EventKind names a committed ledger change.
type EventKind string

const (
	EventCashInCreated  EventKind = "cash_in.created"
	EventCashInUpdated  EventKind = "cash_in.updated"
	EventCashInDeleted  EventKind = "cash_in.deleted"
	EventCashOutCreated EventKind = "cash_out.created"
	EventCashOutUpdated EventKind = "cash_out.updated"
	EventCashOutDeleted EventKind = "cash_out.deleted"
	EventCreditCreated  EventKind = "credit.created"
	EventCreditSettled  EventKind = "credit.settled"
	EventDebtCreated    EventKind = "debt.created"
	EventDebtSettled    EventKind = "debt.settled"
	EventBudgetChanged  EventKind = "budget.changed"
)

// Event describes a ledger change after it has been committed. EntityID is
// the id of the row the kind names; CategoryID is the income or expense
// category of a transaction, or zero.
type Event struct {
	Kind        EventKind
	UserID      int64
	EntityID    int64
	CategoryID  int64
	Amount      Money
	Date        Date
	Description string
	Occurred    time.Time
}

// IsCashIn reports whether the event concerns a CashIn row.
func (k EventKind) IsCashIn() bool {
	return k == EventCashInCreated || k == EventCashInUpdated || k == EventCashInDeleted
}

// IsCashOut reports whether the event concerns a CashOut row.
func (k EventKind) IsCashOut() bool {
	return k == EventCashOutCreated || k == EventCashOutUpdated || k == EventCashOutDeleted
}

func CashInEvent(kind EventKind, c CashIn) Event {
	return Event{
		Kind:        kind,
		UserID:      c.UserID,
		EntityID:    c.ID,
		CategoryID:  c.IncomeID,
		Amount:      c.Amount,
		Date:        c.Date,
		Description: c.Description,
		Occurred:    time.Now().UTC(),
	}
}

func CashOutEvent(kind EventKind, c CashOut) Event {
	return Event{
		Kind:        kind,
		UserID:      c.UserID,
		EntityID:    c.ID,
		CategoryID:  c.ExpenseID,
		Amount:      c.Amount,
		Date:        c.Date,
		Description: c.Description,
		Occurred:    time.Now().UTC(),
	}
}
