// Package filing chooses the final name of a processed invoice and moves it
// into place without overwriting earlier filings.
package filing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"invoicefiler/internal/invoice"
	"invoicefiler/internal/location"
	"invoicefiler/internal/logger"
)

const (
	// DefaultMaxDuplicates bounds the numbered duplicate search.
	DefaultMaxDuplicates = 999

	// DefaultExt is appended to every resolved name.
	DefaultExt = ".pdf"

	duplicatePrefix = "Duplicate"
)

var unsafeChars = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	"\"", "-", "<", "-", ">", "-", "|", "-",
	"\r\n", "-", "\n", "-", "\r", "-",
)

// Resolution is the outcome of resolving a filename.
type Resolution struct {
	// Name is the resolved name without extension.
	Name string

	// Filename is Name with the extension.
	Filename string

	// Duplicate is true when the base name was already filed in the destination.
	Duplicate bool
}

// Resolver picks collision-free names. The zero value is usable and does not log.
type Resolver struct {
	MaxDuplicates int
	Ext           string

	log zerolog.Logger
}

// NewResolver creates a resolver with the default limit and extension.
func NewResolver() *Resolver {
	return &Resolver{
		MaxDuplicates: DefaultMaxDuplicates,
		Ext:           DefaultExt,
		log:           logger.WithComponent("filing"),
	}
}

// Resolve names an invoice from its metadata, location and financials.
func (r *Resolver) Resolve(m invoice.Metadata, f invoice.Financials, loc location.MFC, destDir, workDir string) (Resolution, error) {
	return r.ResolveName(invoice.StandardFilename(m, loc, f), destDir, workDir)
}

// ResolveName checks base against destDir. A collision marks the invoice as
// a duplicate and the name is then made unique within workDir:
// "Duplicate - base", "Duplicate (2) - base", "Duplicate (3) - base"...
func (r *Resolver) ResolveName(base, destDir, workDir string) (Resolution, error) {
	name := Sanitize(base)

	taken, err := exists(filepath.Join(destDir, name+r.ext()))
	if err != nil {
		return Resolution{}, err
	}
	if !taken {
		return Resolution{Name: name, Filename: name + r.ext()}, nil
	}

	limit := r.MaxDuplicates
	if limit <= 0 {
		limit = DefaultMaxDuplicates
	}

	candidate := fmt.Sprintf("%s - %s", duplicatePrefix, name)
	for n := 2; ; n++ {
		taken, err := exists(filepath.Join(workDir, candidate+r.ext()))
		if err != nil {
			return Resolution{}, err
		}
		if !taken {
			break
		}
		if n > limit {
			return Resolution{}, fmt.Errorf("%w: %q after %d attempts", ErrTooManyDuplicates, name, limit)
		}
		candidate = fmt.Sprintf("%s (%d) - %s", duplicatePrefix, n, name)
	}

	r.log.Warn().
		Str("base", name).
		Str("filename", candidate+r.ext()).
		Msg("Invoice already filed, marking as duplicate")

	return Resolution{Name: candidate, Filename: candidate + r.ext(), Duplicate: true}, nil
}

func (r *Resolver) ext() string {
	if r.Ext == "" {
		return DefaultExt
	}
	return r.Ext
}

// Sanitize replaces characters that are not allowed in file names and
// collapses repeated spaces.
func Sanitize(name string) string {
	return strings.Join(strings.Fields(unsafeChars.Replace(name)), " ")
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, ioError("stat", path, err)
}
