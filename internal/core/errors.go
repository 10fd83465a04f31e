package core

import "errors"

// Kind classifies ledger errors into the categories callers map to
// responses: bad input, conflicts with existing state, missing entities and
// store integrity failures.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindIntegrity  Kind = "integrity"
	KindInternal   Kind = "internal"
)

// Error is a ledger error with a stable kind and code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	// Validation
	ErrInvalidDay              = newError(KindValidation, "invalid_day", "invalid day")
	ErrInvalidMonth            = newError(KindValidation, "invalid_month", "invalid month")
	ErrInvalidDate             = newError(KindValidation, "invalid_date", "invalid date")
	ErrFutureDate              = newError(KindValidation, "future_date", "date cannot be in the future")
	ErrInvalidAmount           = newError(KindValidation, "invalid_amount", "invalid amount")
	ErrEmptyName               = newError(KindValidation, "empty_name", "empty strings are not allowed")
	ErrNameTooLong             = newError(KindValidation, "name_too_long", "name too long (max 100 characters)")
	ErrDescriptionTooLong      = newError(KindValidation, "description_too_long", "description too long (max 100 characters)")
	ErrMissingSettlementTarget = newError(KindValidation, "missing_settlement_target", "settlement target is required for this category")
	ErrValidation              = newError(KindValidation, "validation_error", "validation failed")

	// Conflict
	ErrDuplicateCategory      = newError(KindConflict, "duplicate_category", "category already exists")
	ErrDuplicateBudget        = newError(KindConflict, "duplicate_budget", "budget already exists for this month")
	ErrDuplicateBudgetExpense = newError(KindConflict, "duplicate_budget_expense", "expense already budgeted")
	ErrAlreadySettled         = newError(KindConflict, "already_settled", "obligation is already paid")
	ErrOverpayment            = newError(KindConflict, "overpayment", "payment exceeds the outstanding amount")
	ErrConcurrentUpdate       = newError(KindConflict, "concurrent_update", "record was modified concurrently")

	// Not found
	ErrNotFound                 = newError(KindNotFound, "not_found", "not found")
	ErrSettlementTargetNotFound = newError(KindNotFound, "settlement_target_not_found", "settlement target not found")
	ErrNotFoundOrUnauthorized   = newError(KindNotFound, "not_found_or_unauthorized", "not found or unauthorized")

	// Integrity
	ErrIntegrity = newError(KindIntegrity, "integrity_failure", "store rejected the change")
)

// KindOf returns the kind of the first ledger error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of the first ledger error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
