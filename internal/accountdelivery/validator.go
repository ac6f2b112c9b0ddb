package accountdelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/go-teller/teller/internal/domain"
)

// ValidAccountNumber validates that a field holds a sixteen-digit account number.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	number, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	if len(number) != domain.AccountNumberLength {
		return false
	}

	for _, c := range number {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
