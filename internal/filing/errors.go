package filing

import (
	"errors"
	"fmt"
)

// Common filing errors
var (
	// ErrIO matches every filesystem failure reported by this package.
	ErrIO = errors.New("filing I/O failure")

	// ErrTooManyDuplicates is returned when every numbered duplicate name up
	// to the resolver's limit is already taken.
	ErrTooManyDuplicates = errors.New("too many duplicates of filename")

	// ErrDestinationExists is returned by Move instead of overwriting a file.
	ErrDestinationExists = errors.New("destination file already exists")
)

// IOError wraps a filesystem failure with the path that caused it.
type IOError struct {
	// Op is the operation that failed (e.g., "stat", "move").
	Op string

	// Path is the file or folder involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("filing: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports ErrIO for every IOError, and otherwise defers to the wrapped error.
func (e *IOError) Is(target error) bool {
	return target == ErrIO || errors.Is(e.Err, target)
}

func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
