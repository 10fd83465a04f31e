package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// ObligationService manages credits (money lent) and debts (money
// borrowed) and their settlement.
type ObligationService struct {
	*deps
}

type CreateCreditInput struct {
	UserID      int64  `validate:"gt=0"`
	Debtor      string `validate:"notblank,max=100"`
	Amount      core.Money
	DateTaken   core.Date
	DateDue     core.Date
	Description string `validate:"max=100"`
	AsOf        core.Date
}

type CreateDebtInput struct {
	UserID      int64  `validate:"gt=0"`
	Creditor    string `validate:"notblank,max=100"`
	Amount      core.Money
	DateTaken   core.Date
	DateDue     core.Date
	Description string `validate:"max=100"`
	AsOf        core.Date
}

// CreditList is a user's credits with their totals.
type CreditList struct {
	Credits []core.Credit
	core.ObligationTotals
}

type DebtList struct {
	Debts []core.Debt
	core.ObligationTotals
}

// CreateCredit records money lent to a debtor. The money leaving the
// user's hands is booked as a cash out in the reserved Credit category in
// the same unit of work.
func (s *ObligationService) CreateCredit(ctx context.Context, in CreateCreditInput) (core.Credit, error) {
	in.Debtor = core.NormalizeName(in.Debtor)
	if err := validateInput(in); err != nil {
		return core.Credit{}, err
	}
	credit := core.Credit{
		UserID:      in.UserID,
		Debtor:      in.Debtor,
		Amount:      in.Amount,
		DateTaken:   in.DateTaken,
		DateDue:     in.DateDue,
		Description: in.Description,
	}
	if err := credit.Validate(); err != nil {
		return core.Credit{}, err
	}
	if err := core.ValidateNotFuture(in.DateTaken, asOfOrToday(in.AsOf)); err != nil {
		return core.Credit{}, err
	}

	var lent core.CashOut
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		credit, err = q.CreateCredit(ctx, credit)
		if err != nil {
			return storeError("create credit", err)
		}
		lent, err = s.recordCashOut(ctx, q, core.CashOut{
			UserID:      credit.UserID,
			ExpenseID:   s.reserved.ID(core.ReservedCredit),
			Amount:      credit.Amount,
			Date:        credit.DateTaken,
			Description: credit.Description,
		})
		return err
	})
	if err != nil {
		return core.Credit{}, err
	}

	slog.InfoContext(ctx, "Credit created",
		"user_id", credit.UserID,
		"id", credit.ID,
		"debtor", credit.Debtor,
		"amount", credit.Amount.String())

	created := core.CashOutEvent(core.EventCreditCreated, lent)
	created.EntityID = credit.ID
	s.publish(ctx, created, core.CashOutEvent(core.EventCashOutCreated, lent))
	return credit, nil
}

// CreateDebt records money borrowed from a creditor, booked as a cash in in
// the reserved Debt category.
func (s *ObligationService) CreateDebt(ctx context.Context, in CreateDebtInput) (core.Debt, error) {
	in.Creditor = core.NormalizeName(in.Creditor)
	if err := validateInput(in); err != nil {
		return core.Debt{}, err
	}
	debt := core.Debt{
		UserID:      in.UserID,
		Creditor:    in.Creditor,
		Amount:      in.Amount,
		DateTaken:   in.DateTaken,
		DateDue:     in.DateDue,
		Description: in.Description,
	}
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}
	if err := core.ValidateNotFuture(in.DateTaken, asOfOrToday(in.AsOf)); err != nil {
		return core.Debt{}, err
	}

	var borrowed core.CashIn
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		debt, err = q.CreateDebt(ctx, debt)
		if err != nil {
			return storeError("create debt", err)
		}
		borrowed, err = recordCashIn(ctx, q, core.CashIn{
			UserID:      debt.UserID,
			IncomeID:    s.reserved.ID(core.ReservedDebt),
			Amount:      debt.Amount,
			Date:        debt.DateTaken,
			Description: debt.Description,
		})
		return err
	})
	if err != nil {
		return core.Debt{}, err
	}

	slog.InfoContext(ctx, "Debt created",
		"user_id", debt.UserID,
		"id", debt.ID,
		"creditor", debt.Creditor,
		"amount", debt.Amount.String())

	created := core.CashInEvent(core.EventDebtCreated, borrowed)
	created.EntityID = debt.ID
	s.publish(ctx, created, core.CashInEvent(core.EventCashInCreated, borrowed))
	return debt, nil
}

// SettleCredit records a payment received from a debtor: a receipt, the
// new paid balance and a cash in under the reserved Settled Credit
// category, all or nothing. The whole amount is booked even when it exceeds
// what is still owed.
func (s *ObligationService) SettleCredit(ctx context.Context, userID, creditID int64, amount core.Money, datePaid core.Date) (core.SettlementResult, error) {
	if err := validateSettlement(amount, datePaid); err != nil {
		return core.SettlementResult{}, err
	}

	var (
		credit core.Credit
		cashIn core.CashIn
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		credit, err = settleCredit(ctx, q, userID, creditID, amount, datePaid, core.AllowOverpayment, core.ErrNotFoundOrUnauthorized)
		if err != nil {
			return err
		}
		cashIn, err = recordCashIn(ctx, q, core.CashIn{
			UserID:          userID,
			IncomeID:        s.reserved.ID(core.ReservedSettledCredit),
			Amount:          amount,
			Date:            datePaid,
			Description:     fmt.Sprintf("settling %s's credit", credit.Debtor),
			SettledCreditID: &credit.ID,
		})
		return err
	})
	if err != nil {
		return core.SettlementResult{}, err
	}

	slog.InfoContext(ctx, "Credit settled",
		"user_id", userID,
		"credit_id", credit.ID,
		"amount", amount.String(),
		"amount_paid", credit.AmountPaid.String(),
		"is_paid", credit.IsPaid)

	s.publish(ctx, creditSettledEvent(credit, cashIn), core.CashInEvent(core.EventCashInCreated, cashIn))
	return core.SettlementResult{
		ObligationID:    credit.ID,
		AmountPaid:      credit.AmountPaid,
		ProgressPercent: credit.Progress(),
		IsPaid:          credit.IsPaid,
		TransactionID:   cashIn.ID,
	}, nil
}

// SettleDebt records a repayment to a creditor and the matching cash out
// under the reserved Settled Debt category.
func (s *ObligationService) SettleDebt(ctx context.Context, userID, debtID int64, amount core.Money, datePaid core.Date) (core.SettlementResult, error) {
	if err := validateSettlement(amount, datePaid); err != nil {
		return core.SettlementResult{}, err
	}

	var (
		debt    core.Debt
		cashOut core.CashOut
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		debt, err = settleDebt(ctx, q, userID, debtID, amount, datePaid, core.AllowOverpayment, core.ErrNotFoundOrUnauthorized)
		if err != nil {
			return err
		}
		cashOut, err = s.recordCashOut(ctx, q, core.CashOut{
			UserID:        userID,
			ExpenseID:     s.reserved.ID(core.ReservedSettledDebt),
			Amount:        amount,
			Date:          datePaid,
			Description:   fmt.Sprintf("settling %s's debt", debt.Creditor),
			SettledDebtID: &debt.ID,
		})
		return err
	})
	if err != nil {
		return core.SettlementResult{}, err
	}

	slog.InfoContext(ctx, "Debt settled",
		"user_id", userID,
		"debt_id", debt.ID,
		"amount", amount.String(),
		"amount_paid", debt.AmountPaid.String(),
		"is_paid", debt.IsPaid)

	s.publish(ctx, debtSettledEvent(debt, cashOut), core.CashOutEvent(core.EventCashOutCreated, cashOut))
	return core.SettlementResult{
		ObligationID:    debt.ID,
		AmountPaid:      debt.AmountPaid,
		ProgressPercent: debt.Progress(),
		IsPaid:          debt.IsPaid,
		TransactionID:   cashOut.ID,
	}, nil
}

func validateSettlement(amount core.Money, datePaid core.Date) error {
	if err := core.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	return datePaid.Validate()
}

// ListCredits returns the user's credits, newest first, with totals.
func (s *ObligationService) ListCredits(ctx context.Context, userID int64) (CreditList, error) {
	credits, err := s.store.Queries().ListCredits(ctx, userID)
	if err != nil {
		return CreditList{}, storeError("list credits", err)
	}
	amounts := make([]core.Money, 0, len(credits))
	paid := make([]core.Money, 0, len(credits))
	for _, c := range credits {
		amounts = append(amounts, c.Amount)
		paid = append(paid, c.AmountPaid)
	}
	return CreditList{
		Credits:          credits,
		ObligationTotals: core.ObligationTotals{TotalAmount: core.Sum(amounts...), TotalPaid: core.Sum(paid...)},
	}, nil
}

func (s *ObligationService) ListDebts(ctx context.Context, userID int64) (DebtList, error) {
	debts, err := s.store.Queries().ListDebts(ctx, userID)
	if err != nil {
		return DebtList{}, storeError("list debts", err)
	}
	amounts := make([]core.Money, 0, len(debts))
	paid := make([]core.Money, 0, len(debts))
	for _, d := range debts {
		amounts = append(amounts, d.Amount)
		paid = append(paid, d.AmountPaid)
	}
	return DebtList{
		Debts:            debts,
		ObligationTotals: core.ObligationTotals{TotalAmount: core.Sum(amounts...), TotalPaid: core.Sum(paid...)},
	}, nil
}

func (s *ObligationService) GetCredit(ctx context.Context, userID, creditID int64) (core.Credit, error) {
	c, err := s.store.Queries().GetCredit(ctx, creditID, userID)
	if err != nil {
		return core.Credit{}, orNotFound(err, core.ErrNotFoundOrUnauthorized, "get credit")
	}
	return c, nil
}

func (s *ObligationService) GetDebt(ctx context.Context, userID, debtID int64) (core.Debt, error) {
	d, err := s.store.Queries().GetDebt(ctx, debtID, userID)
	if err != nil {
		return core.Debt{}, orNotFound(err, core.ErrNotFoundOrUnauthorized, "get debt")
	}
	return d, nil
}

// CreditReceipts lists the payments received on one credit.
func (s *ObligationService) CreditReceipts(ctx context.Context, userID, creditID int64) ([]core.DebtorPayment, error) {
	q := s.store.Queries()
	if _, err := q.GetCredit(ctx, creditID, userID); err != nil {
		return nil, orNotFound(err, core.ErrNotFoundOrUnauthorized, "get credit")
	}
	receipts, err := q.ListDebtorPayments(ctx, creditID)
	if err != nil {
		return nil, storeError("list debtor payments", err)
	}
	return receipts, nil
}

// DebtReceipts lists the repayments made on one debt.
func (s *ObligationService) DebtReceipts(ctx context.Context, userID, debtID int64) ([]core.CreditorPayment, error) {
	q := s.store.Queries()
	if _, err := q.GetDebt(ctx, debtID, userID); err != nil {
		return nil, orNotFound(err, core.ErrNotFoundOrUnauthorized, "get debt")
	}
	receipts, err := q.ListCreditorPayments(ctx, debtID)
	if err != nil {
		return nil, storeError("list creditor payments", err)
	}
	return receipts, nil
}
