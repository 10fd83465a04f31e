package core

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName trims surrounding whitespace and title-cases s, so that
// "rent " and "Rent" name the same category.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful; build one per call.
	return cases.Title(language.Und).String(s)
}

// ValidateName normalizes s and checks it is non-empty and within the
// length limit.
func ValidateName(s string) (string, error) {
	name := NormalizeName(s)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
