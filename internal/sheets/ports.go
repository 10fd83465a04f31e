package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Flow names the side of the ledger an exported row belongs to.
type Flow string

const (
	FlowCashIn  Flow = "cash_in"
	FlowCashOut Flow = "cash_out"
)

// Row is one exported transaction change. Deletions are exported as rows
// too, so a sheet is an append-only journal of the ledger.
type Row struct {
	Flow        Flow
	Kind        core.EventKind
	EntityID    int64
	UserID      int64
	CategoryID  int64
	Category    string
	Date        core.Date
	Description string
	Amount      core.Money
}

// Action is the verb shown in the sheet for the row's event kind.
func (r Row) Action() string {
	k := string(r.Kind)
	if i := strings.LastIndexByte(k, '.'); i >= 0 {
		return k[i+1:]
	}
	return k
}

func (r Row) Validate() error {
	if r.Flow != FlowCashIn && r.Flow != FlowCashOut {
		return fmt.Errorf("invalid flow %q", r.Flow)
	}
	if r.EntityID <= 0 {
		return errors.New("row without entity id")
	}
	if r.Kind != core.EventCashInDeleted && r.Kind != core.EventCashOutDeleted && r.Date.IsZero() {
		return errors.New("row without date")
	}
	return nil
}

// RowFromEvent maps a transaction event to a row. Events that do not concern
// a CashIn or CashOut report false.
func RowFromEvent(e core.Event) (Row, bool) {
	var flow Flow
	switch {
	case e.Kind.IsCashIn():
		flow = FlowCashIn
	case e.Kind.IsCashOut():
		flow = FlowCashOut
	default:
		return Row{}, false
	}
	return Row{
		Flow:        flow,
		Kind:        e.Kind,
		EntityID:    e.EntityID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
	}, true
}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
	}

	// TransactionLister returns the exported rows of one flow for a month.
	TransactionLister interface {
		List(ctx context.Context, flow Flow, year int, month int) ([]Row, error)
	}
)
