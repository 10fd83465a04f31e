// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point decimals. Rows keep the precision they were
// entered with; every aggregate is rounded half-up to two decimals.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount.
type Money = decimal.Decimal

var (
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// ParseAmount converts a decimal string into Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, rejects
// signs, exponents and grouping, and keeps every fractional digit given.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.345, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Zero, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return d, nil
}

// MustMoney parses s or panics. Intended for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Round2 rounds half-up (away from zero) to two decimals.
func Round2(m Money) Money {
	return m.Round(2)
}

// Sum adds amounts and rounds the result to two decimals.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round2(total)
}

// Percent returns part/whole*100 rounded to two decimals, or zero when
// whole is zero.
func Percent(part, whole Money) Money {
	if whole.IsZero() {
		return Round2(Zero)
	}
	return Round2(part.Div(whole).Mul(hundred))
}

// FormatPercent renders a percentage with at least one fractional digit,
// e.g. "100.0%" or "33.33%".
func FormatPercent(p Money) string {
	s := p.Round(2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
