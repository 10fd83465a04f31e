package core

type (
	// Credit is money owed to the user by a debtor.
	Credit struct {
		ID          int64
		UserID      int64
		Debtor      string
		Amount      Money
		DateTaken   Date
		DateDue     Date // zero when no due date
		Description string
		AmountPaid  Money
		IsPaid      bool
		Version     int64
	}

	// Debt is money the user owes a creditor.
	Debt struct {
		ID          int64
		UserID      int64
		Creditor    string
		Amount      Money
		DateTaken   Date
		DateDue     Date
		Description string
		AmountPaid  Money
		IsPaid      bool
		Version     int64
	}

	// DebtorPayment is the receipt of one partial settlement of a Credit.
	DebtorPayment struct {
		ID       int64
		CreditID int64
		Amount   Money
		Date     Date
	}

	// CreditorPayment is the receipt of one partial settlement of a Debt.
	CreditorPayment struct {
		ID     int64
		DebtID int64
		Amount Money
		Date   Date
	}

	// SettlementResult reports an obligation's balance after a payment.
	SettlementResult struct {
		ObligationID    int64
		AmountPaid      Money
		ProgressPercent Money
		IsPaid          bool
		TransactionID   int64
	}
)

// PaymentPolicy decides whether a payment may exceed the outstanding amount.
type PaymentPolicy int

const (
	// RejectOverpayment fails payments larger than what is still owed.
	// Transactions that name a settlement target use it.
	RejectOverpayment PaymentPolicy = iota
	// AllowOverpayment books the whole payment; progress may pass 100%.
	// Direct settlements use it.
	AllowOverpayment
)

// applyPayment is the single paid-balance transition. is_paid only ever
// moves from false to true.
func applyPayment(total, paid Money, isPaid bool, pay Money, policy PaymentPolicy) (Money, bool, error) {
	if isPaid {
		return paid, isPaid, ErrAlreadySettled
	}
	if !pay.IsPositive() {
		return paid, isPaid, ErrInvalidAmount
	}
	next := paid.Add(pay)
	if policy == RejectOverpayment && next.GreaterThan(total) {
		return paid, isPaid, ErrOverpayment
	}
	return next, next.GreaterThanOrEqual(total), nil
}

// ApplyPayment adds pay to the paid balance, flipping IsPaid once the full
// amount is covered.
func (c *Credit) ApplyPayment(pay Money, policy PaymentPolicy) error {
	paid, isPaid, err := applyPayment(c.Amount, c.AmountPaid, c.IsPaid, pay, policy)
	if err != nil {
		return err
	}
	c.AmountPaid, c.IsPaid = paid, isPaid
	return nil
}

// Progress is the paid share of the amount, in percent.
func (c Credit) Progress() Money {
	return Percent(c.AmountPaid, c.Amount)
}

// Outstanding is the amount still owed.
func (c Credit) Outstanding() Money {
	return c.Amount.Sub(c.AmountPaid)
}

func (c Credit) Validate() error {
	if NormalizeName(c.Debtor) == "" {
		return ErrEmptyName
	}
	return validateObligation(c.Amount, c.DateTaken, c.DateDue, c.Description)
}

func (d *Debt) ApplyPayment(pay Money, policy PaymentPolicy) error {
	paid, isPaid, err := applyPayment(d.Amount, d.AmountPaid, d.IsPaid, pay, policy)
	if err != nil {
		return err
	}
	d.AmountPaid, d.IsPaid = paid, isPaid
	return nil
}

func (d Debt) Progress() Money {
	return Percent(d.AmountPaid, d.Amount)
}

func (d Debt) Outstanding() Money {
	return d.Amount.Sub(d.AmountPaid)
}

func (d Debt) Validate() error {
	if NormalizeName(d.Creditor) == "" {
		return ErrEmptyName
	}
	return validateObligation(d.Amount, d.DateTaken, d.DateDue, d.Description)
}

func validateObligation(amount Money, taken, due Date, desc string) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if err := taken.Validate(); err != nil {
		return err
	}
	if !due.IsEmpty() && due.Before(taken.Time) {
		return ErrInvalidDate
	}
	return ValidateDescription(desc)
}
