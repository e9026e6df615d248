package salaryerrors

import (
	"go-salary/internal/shared/apperror"
	"net/http"
)

var (
	ErrSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary record not found",
		http.StatusNotFound,
	)
	// Non-numeric ids cannot address a record, so they share the 404.
	ErrInvalidSalaryID = apperror.New(
		apperror.CodeNotFound,
		"Salary record not found",
		http.StatusNotFound,
	)
	ErrSalaryOutOfRange = apperror.New(
		apperror.CodeValidationFailed,
		"Salary amount is out of range",
		http.StatusUnprocessableEntity,
	)
)

// MoneyOutOfRange reports an amount that does not fit a numeric(15,2) column.
func MoneyOutOfRange(field, max string) *apperror.ValidationError {
	return &apperror.ValidationError{
		Message: "Salary amount is out of range",
		Fields: map[string][]string{
			field: {field + " must be " + max + " or less"},
		},
	}
}
