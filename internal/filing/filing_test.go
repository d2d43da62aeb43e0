package filing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"invoicefiler/internal/invoice"
	"invoicefiler/internal/location"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25.02.03 - Blakemore - Leeds - 1 - £10.00", "25.02.03 - Blakemore - Leeds - 1 - £10.00"},
		{"a/b\\c:d*e?f\"g<h>i|j", "a-b-c-d-e-f-g-h-i-j"},
		{"04/25 invoice\nGUK-999", "04-25 invoice-GUK-999"},
		{"  too   many  spaces ", "too many spaces"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveName(t *testing.T) {
	const base = "25.02.03 - Blakemore - Leeds - 1 - £10.00"

	tests := []struct {
		name      string
		dest      []string
		work      []string
		want      string
		duplicate bool
	}{
		{name: "free", want: base + ".pdf"},
		{name: "only in work folder", work: []string{base + ".pdf"}, want: base + ".pdf"},
		{name: "first duplicate", dest: []string{base + ".pdf"}, want: "Duplicate - " + base + ".pdf", duplicate: true},
		{
			name: "second duplicate",
			dest: []string{base + ".pdf"},
			work: []string{"Duplicate - " + base + ".pdf"},
			want: "Duplicate (2) - " + base + ".pdf", duplicate: true,
		},
		{
			name: "third duplicate",
			dest: []string{base + ".pdf"},
			work: []string{"Duplicate - " + base + ".pdf", "Duplicate (2) - " + base + ".pdf"},
			want: "Duplicate (3) - " + base + ".pdf", duplicate: true,
		},
		{
			name: "gap is not reused",
			dest: []string{base + ".pdf"},
			work: []string{"Duplicate (2) - " + base + ".pdf"},
			want: "Duplicate - " + base + ".pdf", duplicate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, work := t.TempDir(), t.TempDir()
			for _, f := range tt.dest {
				touch(t, dest, f)
			}
			for _, f := range tt.work {
				touch(t, work, f)
			}

			got, err := NewResolver().ResolveName(base, dest, work)
			if err != nil {
				t.Fatalf("ResolveName() error = %v", err)
			}
			if got.Filename != tt.want || got.Duplicate != tt.duplicate {
				t.Errorf("ResolveName() = (%q, %v), want (%q, %v)", got.Filename, got.Duplicate, tt.want, tt.duplicate)
			}
		})
	}
}

func TestResolveNameLimit(t *testing.T) {
	const base = "x"
	dest, work := t.TempDir(), t.TempDir()
	touch(t, dest, "x.pdf")
	touch(t, work, "Duplicate - x.pdf")
	touch(t, work, "Duplicate (2) - x.pdf")
	touch(t, work, "Duplicate (3) - x.pdf")

	r := &Resolver{MaxDuplicates: 3}
	_, err := r.ResolveName(base, dest, work)
	if !errors.Is(err, ErrTooManyDuplicates) {
		t.Fatalf("ResolveName() error = %v, want ErrTooManyDuplicates", err)
	}

	r.MaxDuplicates = 4
	got, err := r.ResolveName(base, dest, work)
	if err != nil || got.Filename != "Duplicate (4) - x.pdf" {
		t.Errorf("ResolveName() = (%q, %v)", got.Filename, err)
	}
}

func TestResolve(t *testing.T) {
	m := invoice.NewMetadata(invoice.Vendor{ShortName: "Blakemore"}, "1", "2025-02-03", "GUK-1", "Invoice", nil)
	f := invoice.Financials{Net20: decimal.NewFromInt(10)}
	loc := location.MFC{FriendlyName: "Leeds"}

	got, err := NewResolver().Resolve(m, f, loc, t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := "25.02.03 - Blakemore - Leeds - 1 - GUK-1 - £10.00.pdf"; got.Filename != want {
		t.Errorf("Resolve() = %q, want %q", got.Filename, want)
	}
}

func TestMove(t *testing.T) {
	src := t.TempDir()
	touch(t, src, "in.pdf")
	dst := filepath.Join(t.TempDir(), "nested", "out.pdf")

	m := NewMover()
	if err := m.Move(filepath.Join(src, "in.pdf"), dst); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "in.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("source still present: %v", err)
	}
}

func TestMoveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.pdf")
	touch(t, dir, "b.pdf")

	err := NewMover().Move(filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf"))
	if !errors.Is(err, ErrDestinationExists) || !errors.Is(err, ErrIO) {
		t.Errorf("Move() error = %v, want ErrDestinationExists", err)
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Path != filepath.Join(dir, "b.pdf") {
		t.Errorf("Move() error path = %v", err)
	}
}

func TestMoveMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := NewMover().Move(filepath.Join(dir, "nope.pdf"), filepath.Join(dir, "out.pdf"))
	if !errors.Is(err, ErrIO) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Move() error = %v, want I/O not-exist", err)
	}
}
