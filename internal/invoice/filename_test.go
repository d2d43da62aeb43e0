package invoice

import (
	"strings"
	"testing"
	"time"

	"invoicefiler/internal/location"
)

var leeds = location.MFC{
	ID:           "7",
	Name:         "LEEDS MFC",
	FriendlyName: "Leeds",
	XeroName:     "MFC - Leeds",
	Address:      "Unit 4 Brook Park, Leeds",
	Postcode:     "LS10 1AB",
}

func TestStandardFilename(t *testing.T) {
	f := Financials{Net20: dec("100"), VAT20: dec("20")}

	tests := []struct {
		name string
		m    Metadata
		loc  location.MFC
		want string
	}{
		{
			name: "GUK reference",
			m:    NewMetadata(testVendor, "7781234", "03/02/2025", "GUK-55512", "Invoice", nil),
			loc:  leeds,
			want: "25.02.03 - Blakemore - Leeds - 7781234 - GUK-55512 - £120.00",
		},
		{
			name: "other reference",
			m:    NewMetadata(testVendor, "7781234", "03/02/2025", "12345", "Invoice", nil),
			loc:  leeds,
			want: "25.02.03 - Blakemore - Leeds - 7781234 - £120.00",
		},
		{
			name: "lowercase guk is not a PO",
			m:    NewMetadata(testVendor, "7781234", "03/02/2025", "guk-1", "Invoice", nil),
			loc:  leeds,
			want: "25.02.03 - Blakemore - Leeds - 7781234 - £120.00",
		},
		{
			name: "unknowns",
			m:    NewMetadata(testVendor, "", "garbled", "", "Invoice", nil),
			loc:  location.MFC{},
			want: "unknown-date - Blakemore - UnknownMFC - UnknownInvoice - £120.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StandardFilename(tt.m, tt.loc, f)
			if got != tt.want {
				t.Errorf("StandardFilename() = %q, want %q", got, tt.want)
			}
			if again := StandardFilename(tt.m, tt.loc, f); again != got {
				t.Errorf("StandardFilename() not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestStandardFilenameUsesOriginalDate(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	m := NewMetadata(testVendor, "1", "2025-01-02", "12345", "Invoice", nil).AdjustIfOverdue(now, nil)
	if m.InvoiceDate != "2025-06-01" {
		t.Fatalf("InvoiceDate = %q, want adjusted date", m.InvoiceDate)
	}

	got := StandardFilename(m, leeds, Financials{})
	if !strings.HasPrefix(got, "25.01.02 - ") {
		t.Errorf("StandardFilename() = %q, want original date prefix", got)
	}
}

func TestStandardFilenameCanonicalFallback(t *testing.T) {
	m := Metadata{Vendor: testVendor, InvoiceNo: "9", InvoiceDate: "2024-11-30"}
	got := StandardFilename(m, leeds, Financials{})
	if want := "24.11.30 - Blakemore - Leeds - 9 - £0.00"; got != want {
		t.Errorf("StandardFilename() = %q, want %q", got, want)
	}
}

func TestCoverSheetFields(t *testing.T) {
	m := NewMetadata(testVendor, "7781234", "03/02/2025", "GUK-55512", "Invoice", nil)
	f := Financials{Net0: dec("100"), Net20: dec("50"), VAT20: dec("10")}

	got := CoverSheetFields(m, leeds, f)
	if len(got) != len(CoverSheetKeys) {
		t.Errorf("CoverSheetFields() has %d keys, want %d", len(got), len(CoverSheetKeys))
	}
	for _, k := range CoverSheetKeys {
		if _, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}

	want := map[string]string{
		"Description":       "GUK-55512",
		"Xero Location":     "MFC - Leeds",
		"Delivery Address":  "Unit 4 Brook Park, Leeds",
		"Due Date":          "2025-02-10",
		"Total Gross":       "160.00",
		"Vendor VAT Reg No": "431 3902 80",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
