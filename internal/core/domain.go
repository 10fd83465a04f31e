package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout = "2006-01-02"

	// MaxNameLength bounds category names at the input boundary.
	MaxNameLength = 100
	// MaxDescriptionLength bounds transaction descriptions.
	MaxDescriptionLength = 100
)

type (
	// Date is a calendar date with no time component, stored as UTC midnight.
	Date struct {
		time.Time
	}

	User struct {
		ID        int64
		FirstName string
		LastName  string
		Email     string
	}

	// IncomeType is the global income taxonomy shared by every user.
	IncomeType struct {
		ID   int64
		Name string
	}

	IncomeCategory struct {
		ID           int64
		UserID       int64
		Name         string
		IncomeTypeID int64
	}

	ExpenseCategory struct {
		ID     int64
		UserID int64
		Name   string
	}

	// CashIn is a realized inflow. SettledCreditID links it to the Credit it
	// paid off, if any.
	CashIn struct {
		ID              int64
		UserID          int64
		IncomeID        int64
		Amount          Money
		Date            Date
		Description     string
		SettledCreditID *int64
	}

	// CashOut is a realized outflow. SettledDebtID links it to the Debt it
	// paid off, if any.
	CashOut struct {
		ID            int64
		UserID        int64
		ExpenseID     int64
		Amount        Money
		Date          Date
		Description   string
		SettledDebtID *int64
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date in UTC.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Time.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// String returns the ISO-8601 form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// IsEmpty returns true if the date is zero (optional dates such as a due date).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddDays returns the date n days later (earlier when negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

// Value implements driver.Valuer; dates are stored as ISO text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateDescription enforces the description length limit.
func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateAmount rejects negative amounts. Zero is allowed for edits.
func ValidateAmount(m Money) error {
	if m.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePositiveAmount rejects zero and negative amounts.
func ValidatePositiveAmount(m Money) error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateNotFuture rejects dates after asOf.
func ValidateNotFuture(d, asOf Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if !asOf.IsZero() && d.After(asOf.Time) {
		return ErrFutureDate
	}
	return nil
}

func (c CashIn) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if err := ValidatePositiveAmount(c.Amount); err != nil {
		return err
	}
	return ValidateDescription(c.Description)
}

func (c CashOut) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if err := ValidatePositiveAmount(c.Amount); err != nil {
		return err
	}
	return ValidateDescription(c.Description)
}
