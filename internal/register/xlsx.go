package register

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"invoicefiler/internal/logger"
	"invoicefiler/pkg/models"
)

// DefaultSheet is the worksheet the register is kept on.
const DefaultSheet = "Register"

// XLSX keeps the register in a local workbook, creating it on first use.
type XLSX struct {
	Path  string
	Sheet string

	log zerolog.Logger
}

func NewXLSX(path string) *XLSX {
	return &XLSX{Path: path, Sheet: DefaultSheet, log: logger.WithComponent("register")}
}

// Append adds one row per record below the existing rows.
func (x *XLSX) Append(ctx context.Context, records []models.FilingRecord) error {
	const op = "XLSX.Append"

	if len(records) == 0 {
		return nil
	}

	f, err := x.open()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	rows, err := f.GetRows(x.sheet())
	if err != nil {
		return fmt.Errorf("%s: read rows: %w", op, err)
	}
	next := len(rows) + 1
	if len(rows) == 0 {
		if err := x.writeRow(f, 1, headerValues()); err != nil {
			return fmt.Errorf("%s: write headers: %w", op, err)
		}
		next = 2
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := x.writeRow(f, next+i, r.Values()); err != nil {
			return fmt.Errorf("%s: write row %d: %w", op, next+i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(x.Path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SaveAs(x.Path); err != nil {
		return fmt.Errorf("%s: save %s: %w", op, x.Path, err)
	}

	x.log.Info().
		Str("path", x.Path).
		Int("rows_written", len(records)).
		Msg("Register updated")
	return nil
}

func (x *XLSX) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(x.Path)
	if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		if err := f.SetSheetName("Sheet1", x.sheet()); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if idx, _ := f.GetSheetIndex(x.sheet()); idx < 0 {
		if _, err := f.NewSheet(x.sheet()); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (x *XLSX) writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(x.sheet(), cell, &values)
}

func (x *XLSX) sheet() string {
	if x.Sheet == "" {
		return DefaultSheet
	}
	return x.Sheet
}

func headerValues() []interface{} {
	out := make([]interface{}, len(models.RegisterColumns))
	for i, c := range models.RegisterColumns {
		out[i] = c
	}
	return out
}
