package invoice

import (
	"errors"
	"fmt"
	"strings"
)

// Common invoice validation errors
var (
	// ErrMissingRequiredField is returned when an identifying field could not
	// be extracted from the document.
	ErrMissingRequiredField = errors.New("missing required invoice field")

	// ErrTotalsMismatch is returned when computed totals disagree with the
	// totals stated on the document.
	ErrTotalsMismatch = errors.New("invoice totals do not reconcile")
)

// ValidationError represents a problem with one extracted invoice value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel the error belongs to.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// Validate reports identifying fields that are missing. The pipeline records
// these as warnings and still files the invoice under placeholder names.
func (m Metadata) Validate() []error {
	var errs []error
	if strings.TrimSpace(m.InvoiceNo) == "" {
		errs = append(errs, NewValidationError("invoice_no", m.InvoiceNo, "not found", ErrMissingRequiredField))
	}
	if m.Degraded() {
		errs = append(errs, NewValidationError("invoice_date", m.InvoiceDate, "not parsed", ErrMissingRequiredField))
	}
	return errs
}

// Err describes the failed checks, or returns nil when all passed.
func (tc TotalsCheck) Err() error {
	failed := tc.Failed()
	if len(failed) == 0 {
		return nil
	}
	return NewValidationError("totals", strings.Join(failed, ","), "computed totals differ from stated totals", ErrTotalsMismatch)
}
