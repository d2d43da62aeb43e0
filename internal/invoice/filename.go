package invoice

import (
	"strings"
	"time"

	"invoicefiler/internal/location"
)

// Placeholders used in filenames when a part is missing.
const (
	UnknownMFC     = "UnknownMFC"
	UnknownInvoice = "UnknownInvoice"
	UnknownDate    = "unknown-date"
)

const filenameDateLayout = "06.01.02"

// StandardFilename composes the filing name, without extension:
//
//	{YY.MM.DD} - {vendor} - {MFC} - {invoice no}[ - {GUK PO}] - £{gross}
//
// The date is the one printed on the invoice, not the adjusted one.
func StandardFilename(m Metadata, loc location.MFC, f Financials) string {
	parts := []string{
		filenameDate(m),
		m.Vendor.ShortName,
		orDefault(loc.FriendlyName, UnknownMFC),
		orDefault(m.InvoiceNo, UnknownInvoice),
	}
	if m.IsGUK() {
		parts = append(parts, m.POReference)
	}
	parts = append(parts, "£"+money(f.TotalGross()))
	return strings.Join(parts, " - ")
}

func filenameDate(m Metadata) string {
	if t, ok := m.OriginalDate(); ok {
		return t.Format(filenameDateLayout)
	}
	if t, err := time.Parse(isoLayout, m.InvoiceDate); err == nil {
		return t.Format(filenameDateLayout)
	}
	return UnknownDate
}

// CoverSheetFields is the flat field map used to fill the cover sheet template.
func CoverSheetFields(m Metadata, loc location.MFC, f Financials) map[string]string {
	fields := map[string]string{
		"Vendor Name":       m.Vendor.Name,
		"Vendor Address":    m.Vendor.Address,
		"Vendor VAT Reg No": m.Vendor.VATRegNo,
		"Invoice No":        m.InvoiceNo,
		"Invoice Date":      m.InvoiceDate,
		"Due Date":          m.DueDate,
		"Description":       m.POReference,
		"Friendly MFC Name": loc.FriendlyName,
		"Delivery Address":  loc.Address,
		"Xero Location":     loc.XeroName,
	}
	for k, v := range f.Fields() {
		fields[k] = v
	}
	return fields
}

// CoverSheetKeys lists the cover sheet fields in template order.
var CoverSheetKeys = []string{
	"Vendor Name",
	"Vendor Address",
	"Vendor VAT Reg No",
	"Invoice No",
	"Invoice Date",
	"Due Date",
	"Description",
	"Friendly MFC Name",
	"Delivery Address",
	"Xero Location",
	"Net 0%",
	"VAT 0%",
	"Gross 0%",
	"Net 5%",
	"VAT 5%",
	"Gross 5%",
	"Net 20%",
	"VAT 20%",
	"Gross 20%",
	"Total Net",
	"Total VAT",
	"Total Gross",
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
