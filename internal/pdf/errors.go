package pdf

import (
	"errors"
	"fmt"
)

// Common PDF processing errors
var (
	// ErrPDFTooLarge is returned when the PDF exceeds the synchronous request limit
	// of the Google OCR services (20MB).
	ErrPDFTooLarge = errors.New("PDF file size exceeds the maximum limit (20MB)")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrOCRFailed is returned when a Google OCR service fails to process the document.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidConfiguration is returned when a text source is missing required settings.
	ErrInvalidConfiguration = errors.New("invalid text source configuration")

	// ErrEmptyDocument is returned when the PDF contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrInvalidRotation is returned for rotations that are not a multiple of 90 degrees.
	ErrInvalidRotation = errors.New("rotation must be a multiple of 90 degrees")

	// ErrNoPages is returned when a page selection is empty or out of range.
	ErrNoPages = errors.New("no pages selected")
)

// Error wraps errors with the operation and file involved.
type Error struct {
	// Op is the operation that failed (e.g., "PageTexts", "Merge").
	Op string

	// Path is the PDF being processed.
	Path string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("pdf: %s failed", e.Op)
	if e.Path != "" {
		msg += " for " + e.Path
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", msg, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error as an *Error if it isn't already one.
func WrapError(op, path string, err error, details string) error {
	if err == nil {
		return nil
	}

	var pdfErr *Error
	if errors.As(err, &pdfErr) {
		return err // Already wrapped
	}

	return &Error{Op: op, Path: path, Err: err, Details: details}
}
