package location

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"invoicefiler/internal/logger"
)

var (
	// ErrNotFound is returned by Resolve when no record matches the address.
	ErrNotFound = errors.New("no MFC matches delivery address")

	// ErrIncompleteRecord is returned by Resolve when the matching record
	// lacks a name, friendly name, Xero name or postcode.
	ErrIncompleteRecord = errors.New("matched MFC record is incomplete")

	// ErrMissingColumn is returned when the table lacks a required header.
	ErrMissingColumn = errors.New("MFC table is missing a required column")

	// ErrUnsupportedFormat is returned for table files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported MFC table format")
)

// SheetName is preferred when an XLSX workbook has more than one sheet.
const SheetName = "MFC"

// LoadError reports a failure to read the MFC table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("location: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Directory is the set of known MFCs, loaded once per run.
type Directory struct {
	records []MFC
	log     zerolog.Logger
}

// Load reads the MFC table from a .csv or .xlsx file.
func Load(path string) (*Directory, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		header, rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		header, rows, err = readXLSX(path)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	d, err := FromRows(header, rows)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	d.log.Info().
		Str("path", path).
		Int("records", len(d.records)).
		Int("invalid", len(d.Invalid())).
		Msg("MFC directory loaded")
	return d, nil
}

// FromRows builds a directory from a header row and data rows.
func FromRows(header []string, rows [][]string) (*Directory, error) {
	cols := make([]string, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		cols[i] = name
		seen[name] = true
	}
	for _, required := range []string{ColLocationName, ColPostcode} {
		if !seen[required] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	d := &Directory{log: logger.WithComponent("location")}
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(r) {
				row[col] = r[i]
			}
		}
		d.records = append(d.records, fromRow(row))
	}
	return d, nil
}

// NewDirectory builds a directory from records already in memory.
func NewDirectory(records []MFC) *Directory {
	return &Directory{
		records: append([]MFC(nil), records...),
		log:     logger.WithComponent("location"),
	}
}

// Len returns the number of records.
func (d *Directory) Len() int {
	return len(d.records)
}

// Records returns a copy of all records in table order.
func (d *Directory) Records() []MFC {
	return append([]MFC(nil), d.records...)
}

// Invalid returns the records that cannot be used for resolution.
func (d *Directory) Invalid() []MFC {
	var out []MFC
	for _, r := range d.records {
		if !r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds the MFC referred to by address text. Postcodes, canonical
// then vendor alternates, are tried first; the location name is the
// fallback. The first record in table order wins.
func (d *Directory) Lookup(text string) (MFC, bool) {
	norm := normalize(text)
	if norm == "" {
		return MFC{}, false
	}

	for _, r := range d.records {
		for _, pc := range r.Postcodes() {
			if strings.Contains(norm, normalize(pc)) {
				return r, true
			}
		}
	}

	lower := strings.ToLower(text)
	for _, r := range d.records {
		if name := strings.ToLower(strings.TrimSpace(r.Name)); name != "" && strings.Contains(lower, name) {
			return r, true
		}
	}
	return MFC{}, false
}

// Resolve is Lookup that refuses incomplete records.
func (d *Directory) Resolve(text string) (MFC, error) {
	r, ok := d.Lookup(text)
	if !ok {
		return MFC{}, ErrNotFound
	}
	if !r.IsValid() {
		d.log.Warn().
			Str("id", r.ID).
			Str("location_name", r.Name).
			Msg("Matched MFC record is incomplete")
		return MFC{}, fmt.Errorf("%w: id %q", ErrIncompleteRecord, r.ID)
	}
	return r, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, nil, err
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumn)
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, SheetName) {
			sheet = s
			break
		}
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumn, sheet)
	}
	return all[0], all[1:], nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
