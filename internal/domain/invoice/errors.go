package invoice

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
)

// NewValidationError builds a field-level invoice validation error.
func NewValidationError(field, message string) error {
	return ierr.NewError("invalid invoice").
		WithHintf("%s %s", field, message).
		WithReportableDetails(map[string]any{
			"field": field,
		}).
		Mark(ierr.ErrValidation)
}
