// Package register appends filing records to a running log of everything
// the tool has filed.
package register

import (
	"context"
	"errors"

	"invoicefiler/pkg/models"
)

// Sink receives the records of one run.
type Sink interface {
	Append(ctx context.Context, records []models.FilingRecord) error
}

// Multi writes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Append(ctx context.Context, records []models.FilingRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
