package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"invoicefiler/internal/diag"
)

var testVendor = Vendor{
	ShortName: "Blakemore",
	Name:      "A F Blakemore & Son Ltd",
	Address:   "Long Acre Industrial Estate, Rosehill, Willenhall, WV13 2JP",
	VATRegNo:  "431 3902 80",
}

func newCollector() *diag.Collector {
	return diag.NewCollector(zerolog.Nop())
}

func TestNewMetadataDates(t *testing.T) {
	tests := []struct {
		raw      string
		wantDate string
		wantDue  string
	}{
		{raw: "2025-03-05", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "2025-3-5", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "05/03/2025", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "5/3/2025", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "05-Mar-2025", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "05-MAR-2025", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: "05-March-2025", wantDate: "2025-03-05", wantDue: "2025-03-12"},
		{raw: " 28/02/2024 ", wantDate: "2024-02-28", wantDue: "2024-03-06"},
		{raw: "28-December-2024", wantDate: "2024-12-28", wantDue: "2025-01-04"},
		{raw: "0001-01-01", wantDate: "0001-01-01", wantDue: "0001-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := newCollector()
			m := NewMetadata(testVendor, "1", tt.raw, "", "Invoice", c)
			if m.InvoiceDate != tt.wantDate {
				t.Errorf("InvoiceDate = %q, want %q", m.InvoiceDate, tt.wantDate)
			}
			if m.DueDate != tt.wantDue {
				t.Errorf("DueDate = %q, want %q", m.DueDate, tt.wantDue)
			}
			if m.POMonth != tt.wantDate[:7] {
				t.Errorf("POMonth = %q, want %q", m.POMonth, tt.wantDate[:7])
			}
			if !m.HasOriginalDate() || m.Degraded() {
				t.Error("parsed metadata reports degraded")
			}
			if c.HasWarnings() {
				t.Errorf("unexpected warnings: %v", c.Strings())
			}
		})
	}
}

func TestNewMetadataUnparseableDate(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2025/03/05", "32/01/2025", "05.03.2025"} {
		t.Run(raw, func(t *testing.T) {
			c := newCollector()
			m := NewMetadata(testVendor, "1", raw, "", "Invoice", c)
			if m.InvoiceDate != Unknown || m.DueDate != Unknown || m.POMonth != Unknown {
				t.Errorf("derived dates = %q %q %q, want all %q", m.InvoiceDate, m.DueDate, m.POMonth, Unknown)
			}
			if m.HasOriginalDate() || !m.Degraded() {
				t.Error("degraded metadata reports an original date")
			}
			if c.Len() != 1 {
				t.Errorf("warnings = %d, want 1", c.Len())
			}
			if m.PeriodISO() != "" || m.PeriodShort() != "" {
				t.Error("periods must be empty when degraded")
			}
		})
	}
}

func TestAdjustIfOverdue(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		date       string
		po         string
		wantDate   string
		wantPO     string
		wantPOMon  string
		wantWarned bool
	}{
		{
			name: "overdue plain reference", date: "10/04/2025", po: "12345",
			wantDate: "2025-06-01", wantPO: "04/25 invoice", wantPOMon: "04/25",
		},
		{
			name: "overdue GUK reference", date: "10/04/2025", po: "GUK-999",
			wantDate: "2025-06-01", wantPO: "04/25 invoice\nGUK-999", wantPOMon: "04/25",
		},
		{
			name: "within grace", date: "30/05/2025", po: "GUK-1",
			wantDate: "2025-05-30", wantPO: "GUK-1", wantPOMon: "05/25",
		},
		{
			name: "on threshold", date: "29/05/2025", po: "12345",
			wantDate: "2025-05-29", wantPO: "12345", wantPOMon: "05/25",
		},
		{
			name: "one day before threshold", date: "28/05/2025", po: "",
			wantDate: "2025-06-01", wantPO: "05/25 invoice", wantPOMon: "05/25",
		},
		{
			name: "unknown date", date: "n/a", po: "12345",
			wantDate: Unknown, wantPO: "12345", wantPOMon: Unknown, wantWarned: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetadata(testVendor, "1", tt.date, tt.po, "Invoice", nil)
			c := newCollector()
			got := m.AdjustIfOverdue(now, c)

			if got.InvoiceDate != tt.wantDate {
				t.Errorf("InvoiceDate = %q, want %q", got.InvoiceDate, tt.wantDate)
			}
			if got.POReference != tt.wantPO {
				t.Errorf("POReference = %q, want %q", got.POReference, tt.wantPO)
			}
			if got.POMonth != tt.wantPOMon {
				t.Errorf("POMonth = %q, want %q", got.POMonth, tt.wantPOMon)
			}
			if c.HasWarnings() != tt.wantWarned {
				t.Errorf("warnings = %v, want warned %v", c.Strings(), tt.wantWarned)
			}
			if !got.Adjusted() {
				t.Error("result not marked adjusted")
			}
			if m.Adjusted() || m.POReference != tt.po {
				t.Error("AdjustIfOverdue modified its receiver")
			}
		})
	}
}

func TestAdjustIfOverdueTwice(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	once := NewMetadata(testVendor, "1", "2025-01-02", "GUK-7", "Invoice", nil).AdjustIfOverdue(now, nil)

	c := newCollector()
	twice := once.AdjustIfOverdue(now, c)
	if twice != once {
		t.Errorf("second adjustment changed the value: %+v", twice)
	}
	if c.Len() != 1 {
		t.Errorf("warnings = %d, want 1", c.Len())
	}
}

func TestPeriods(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	m := NewMetadata(testVendor, "1", "2025-01-02", "", "Invoice", nil)
	adjusted := m.AdjustIfOverdue(now, nil)

	for _, v := range []Metadata{m, adjusted} {
		if v.PeriodISO() != "2025-01" {
			t.Errorf("PeriodISO() = %q", v.PeriodISO())
		}
		if v.PeriodShort() != "01/25" {
			t.Errorf("PeriodShort() = %q", v.PeriodShort())
		}
	}
}

func TestMetadataValidate(t *testing.T) {
	ok := NewMetadata(testVendor, "7781234", "2025-01-02", "", "Invoice", nil)
	if errs := ok.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want none", errs)
	}

	bad := NewMetadata(testVendor, "", "???", "", "Invoice", nil)
	errs := bad.Validate()
	if len(errs) != 2 {
		t.Fatalf("Validate() returned %d errors, want 2", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, ErrMissingRequiredField) {
			t.Errorf("%v does not match ErrMissingRequiredField", err)
		}
	}
}

func TestMetadataFields(t *testing.T) {
	m := NewMetadata(testVendor, "42", "2025-01-02", "PO-1", "Credit", nil)
	f := m.Fields()
	if len(f) != 12 {
		t.Errorf("Fields() has %d keys, want 12", len(f))
	}
	if f["Invoice Type"] != "Credit" || f["Vendor Name"] != testVendor.Name || f["PO Month"] != "2025-01" {
		t.Errorf("Fields() = %v", f)
	}
}
