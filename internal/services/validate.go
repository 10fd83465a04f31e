package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"ledger/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// notblank: at least one non-space character
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
	})
	return v
}

// validateInput checks struct tags and maps the first failure to the
// matching ledger error.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "notblank" || fe.Tag() == "required":
		if isNameField(fe.Field()) {
			return core.ErrEmptyName
		}
		return fmt.Errorf("%w: %s is required", core.ErrValidation, fe.Field())
	case fe.Tag() == "max" && isNameField(fe.Field()):
		return core.ErrNameTooLong
	case fe.Tag() == "max" && fe.Field() == "Description":
		return core.ErrDescriptionTooLong
	case fe.Field() == "Month":
		return core.ErrInvalidMonth
	default:
		return fmt.Errorf("%w: %s is invalid", core.ErrValidation, fe.Field())
	}
}

func isNameField(field string) bool {
	switch field {
	case "Name", "Debtor", "Creditor":
		return true
	}
	return false
}
