package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// TransactionService records, edits and deletes CashIn and CashOut rows,
// keeping settlement balances and budget counters in step.
type TransactionService struct {
	*deps
}

type AddCashInInput struct {
	UserID          int64 `validate:"gt=0"`
	Amount          core.Money
	Date            core.Date
	IncomeID        int64  `validate:"gt=0"`
	Description     string `validate:"max=100"`
	SettledCreditID *int64 `validate:"omitempty,gt=0"`
	// AsOf is the caller's current date; zero means today.
	AsOf core.Date
}

type AddCashOutInput struct {
	UserID        int64 `validate:"gt=0"`
	Amount        core.Money
	Date          core.Date
	ExpenseID     int64  `validate:"gt=0"`
	Description   string `validate:"max=100"`
	SettledDebtID *int64 `validate:"omitempty,gt=0"`
	// AsOf only bounds Date against the future (zero means today). The
	// cash out books against the budget of Date's month, not AsOf's.
	AsOf core.Date
}

type EditCashInInput struct {
	ID          int64 `validate:"gt=0"`
	UserID      int64 `validate:"gt=0"`
	Description string `validate:"max=100"`
	Amount      core.Money
	Date        core.Date
	CategoryID  int64 `validate:"gt=0"`
	AsOf        core.Date
}

type EditCashOutInput struct {
	ID          int64 `validate:"gt=0"`
	UserID      int64 `validate:"gt=0"`
	Description string `validate:"max=100"`
	Amount      core.Money
	Date        core.Date
	ExpenseID   int64 `validate:"gt=0"`
	// AmountDiff is new minus old amount as computed by the caller. When nil
	// it is computed from the stored row.
	AmountDiff *core.Money
	AsOf       core.Date
}

func validateNew(in any, amount core.Money, date, asOf core.Date) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := core.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	return core.ValidateNotFuture(date, asOfOrToday(asOf))
}

func validateEdit(in any, amount core.Money, date, asOf core.Date) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return err
	}
	return core.ValidateNotFuture(date, asOfOrToday(asOf))
}

// AddCashIn records an inflow. A cash in under the reserved Settled Credit
// category must name the credit it pays and is applied to that credit's
// balance in the same unit of work.
func (s *TransactionService) AddCashIn(ctx context.Context, in AddCashInInput) (core.CashIn, error) {
	if err := validateNew(in, in.Amount, in.Date, in.AsOf); err != nil {
		return core.CashIn{}, err
	}

	var (
		created core.CashIn
		settled *core.Credit
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		cat, err := incomeFor(ctx, q, in.UserID, in.IncomeID)
		if err != nil {
			return err
		}

		row := core.CashIn{
			UserID:      in.UserID,
			IncomeID:    cat.ID,
			Amount:      in.Amount,
			Date:        in.Date,
			Description: in.Description,
		}

		if role, ok := s.reserved.IncomeRole(cat.ID); ok {
			if role != core.ReservedSettledCredit {
				return fmt.Errorf("%w: category %q is booked when a debt is created", core.ErrValidation, role.Name())
			}
			if in.SettledCreditID == nil {
				return core.ErrMissingSettlementTarget
			}
			credit, err := settleCredit(ctx, q, in.UserID, *in.SettledCreditID, in.Amount, in.Date, core.RejectOverpayment, core.ErrSettlementTargetNotFound)
			if err != nil {
				return err
			}
			settled = &credit
			row.SettledCreditID = &credit.ID
		}

		created, err = recordCashIn(ctx, q, row)
		return err
	})
	if err != nil {
		return core.CashIn{}, err
	}

	slog.InfoContext(ctx, "Cash in recorded",
		"user_id", created.UserID,
		"id", created.ID,
		"income_id", created.IncomeID,
		"amount", created.Amount.String())

	events := []core.Event{core.CashInEvent(core.EventCashInCreated, created)}
	if settled != nil {
		events = append(events, creditSettledEvent(*settled, created))
	}
	s.publish(ctx, events...)
	return created, nil
}

// AddCashOut records an outflow, applying it to a debt when the category is
// the reserved Settled Debt, and books it against the month's budget.
func (s *TransactionService) AddCashOut(ctx context.Context, in AddCashOutInput) (core.CashOut, error) {
	if err := validateNew(in, in.Amount, in.Date, in.AsOf); err != nil {
		return core.CashOut{}, err
	}

	var (
		created core.CashOut
		settled *core.Debt
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		cat, err := expenseFor(ctx, q, in.UserID, in.ExpenseID)
		if err != nil {
			return err
		}

		row := core.CashOut{
			UserID:      in.UserID,
			ExpenseID:   cat.ID,
			Amount:      in.Amount,
			Date:        in.Date,
			Description: in.Description,
		}

		if role, ok := s.reserved.ExpenseRole(cat.ID); ok {
			if role != core.ReservedSettledDebt {
				return fmt.Errorf("%w: category %q is booked when a credit is created", core.ErrValidation, role.Name())
			}
			if in.SettledDebtID == nil {
				return core.ErrMissingSettlementTarget
			}
			debt, err := settleDebt(ctx, q, in.UserID, *in.SettledDebtID, in.Amount, in.Date, core.RejectOverpayment, core.ErrSettlementTargetNotFound)
			if err != nil {
				return err
			}
			settled = &debt
			row.SettledDebtID = &debt.ID
		}

		created, err = s.recordCashOut(ctx, q, row)
		return err
	})
	if err != nil {
		return core.CashOut{}, err
	}

	slog.InfoContext(ctx, "Cash out recorded",
		"user_id", created.UserID,
		"id", created.ID,
		"expense_id", created.ExpenseID,
		"amount", created.Amount.String())

	events := []core.Event{core.CashOutEvent(core.EventCashOutCreated, created)}
	if settled != nil {
		events = append(events, debtSettledEvent(*settled, created))
	}
	s.publish(ctx, events...)
	return created, nil
}

// EditCashIn updates the display fields of a cash in. A settlement already
// applied to a credit is left as it was.
func (s *TransactionService) EditCashIn(ctx context.Context, in EditCashInInput) (core.CashIn, error) {
	if err := validateEdit(in, in.Amount, in.Date, in.AsOf); err != nil {
		return core.CashIn{}, err
	}

	var updated core.CashIn
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		row, err := q.GetCashIn(ctx, in.ID, in.UserID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get cash in")
		}
		if _, err := incomeFor(ctx, q, in.UserID, in.CategoryID); err != nil {
			return err
		}

		row.Description = in.Description
		row.Amount = in.Amount
		row.Date = in.Date
		row.IncomeID = in.CategoryID

		updated, err = q.UpdateCashIn(ctx, row)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "update cash in")
		}
		return nil
	})
	if err != nil {
		return core.CashIn{}, err
	}

	slog.InfoContext(ctx, "Cash in updated", "user_id", updated.UserID, "id", updated.ID)
	s.publish(ctx, core.CashInEvent(core.EventCashInUpdated, updated))
	return updated, nil
}

// EditCashOut updates a cash out and adjusts the budget line of
// in.ExpenseID in the month of in.Date by the amount difference.
func (s *TransactionService) EditCashOut(ctx context.Context, in EditCashOutInput) (core.CashOut, error) {
	if err := validateEdit(in, in.Amount, in.Date, in.AsOf); err != nil {
		return core.CashOut{}, err
	}

	var updated core.CashOut
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		row, err := q.GetCashOut(ctx, in.ID, in.UserID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get cash out")
		}
		if _, err := expenseFor(ctx, q, in.UserID, in.ExpenseID); err != nil {
			return err
		}

		diff := in.Amount.Sub(row.Amount)
		if in.AmountDiff != nil {
			diff = *in.AmountDiff
		}

		row.Description = in.Description
		row.Amount = in.Amount
		row.Date = in.Date
		row.ExpenseID = in.ExpenseID

		updated, err = q.UpdateCashOut(ctx, row)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "update cash out")
		}
		return s.applyBudgetDelta(ctx, q, in.UserID, in.ExpenseID, in.Date, diff)
	})
	if err != nil {
		return core.CashOut{}, err
	}

	slog.InfoContext(ctx, "Cash out updated", "user_id", updated.UserID, "id", updated.ID)
	s.publish(ctx, core.CashOutEvent(core.EventCashOutUpdated, updated))
	return updated, nil
}

// DeleteCashIn removes a cash in. Settlement balances are not reversed.
func (s *TransactionService) DeleteCashIn(ctx context.Context, userID, id int64) error {
	var deleted core.CashIn
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		row, err := q.GetCashIn(ctx, id, userID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get cash in")
		}
		n, err := q.DeleteCashIn(ctx, id, userID)
		if err != nil {
			return storeError("delete cash in", err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		deleted = row
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Cash in deleted", "user_id", userID, "id", id)
	s.publish(ctx, core.CashInEvent(core.EventCashInDeleted, deleted))
	return nil
}

// DeleteCashOut removes a cash out after taking its amount off the budget
// line of its month.
func (s *TransactionService) DeleteCashOut(ctx context.Context, userID, id int64) error {
	var deleted core.CashOut
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		row, err := q.GetCashOut(ctx, id, userID)
		if err != nil {
			return orNotFound(err, core.ErrNotFound, "get cash out")
		}
		if err := s.applyBudgetDelta(ctx, q, userID, row.ExpenseID, row.Date, row.Amount.Neg()); err != nil {
			return err
		}
		n, err := q.DeleteCashOut(ctx, id, userID)
		if err != nil {
			return storeError("delete cash out", err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		deleted = row
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Cash out deleted", "user_id", userID, "id", id)
	s.publish(ctx, core.CashOutEvent(core.EventCashOutDeleted, deleted))
	return nil
}

func creditSettledEvent(c core.Credit, in core.CashIn) core.Event {
	e := core.CashInEvent(core.EventCreditSettled, in)
	e.EntityID = c.ID
	return e
}

func debtSettledEvent(d core.Debt, out core.CashOut) core.Event {
	e := core.CashOutEvent(core.EventDebtSettled, out)
	e.EntityID = d.ID
	return e
}
