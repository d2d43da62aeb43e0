// Package invoice models the metadata and VAT-banded financials of a single
// vendor invoice and derives the names and field maps used to file it.
//
// Construction never fails. Unparseable input degrades to sentinel values and
// a warning on the supplied diag.Collector:
//   - invoice dates that match none of the accepted layouts become Unknown
//   - currency strings that cannot be parsed become zero
//
// Values are immutable once built; AdjustIfOverdue returns a new Metadata
// rather than changing the receiver.
package invoice

import (
	"strings"
	"time"

	"invoicefiler/internal/diag"
)

// Unknown is the sentinel stored in derived date fields that could not be computed.
const Unknown = "UNKNOWN"

const (
	isoLayout   = "2006-01-02"
	monthLayout = "2006-01"
	shortLayout = "01/06"

	// dueDays is the payment term added to the invoice date.
	dueDays = 7

	// overdueGrace is how many days before the first of the month an invoice
	// may be dated before it is moved into the current period.
	overdueGrace = 3

	// gukPrefix marks customer purchase order references.
	gukPrefix = "GUK"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"2-Jan-2006",
	"2-January-2006",
}

// Vendor holds the identity constants printed on every cover sheet for one supplier.
type Vendor struct {
	ShortName  string `json:"short_name"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	VATRegNo   string `json:"vat_reg_no"`
	AWRS       string `json:"awrs,omitempty"`
	CustomerNo string `json:"customer_no,omitempty"`
}

// Metadata is the identifying information of one invoice.
type Metadata struct {
	Vendor      Vendor
	InvoiceNo   string
	InvoiceType string
	POReference string

	// InvoiceDate and DueDate are ISO dates or Unknown.
	InvoiceDate string
	DueDate     string

	// POMonth is YYYY-MM at construction and MM/YY after AdjustIfOverdue.
	// PeriodISO and PeriodShort expose both forms regardless of state.
	POMonth string

	originalDate time.Time
	hasDate      bool
	adjusted     bool
}

// ParseDate tries each accepted layout in order.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewMetadata builds invoice metadata from raw extracted strings.
func NewMetadata(v Vendor, invoiceNo, rawDate, poReference, invoiceType string, c *diag.Collector) Metadata {
	m := Metadata{
		Vendor:      v,
		InvoiceNo:   strings.TrimSpace(invoiceNo),
		InvoiceType: strings.TrimSpace(invoiceType),
		POReference: strings.TrimSpace(poReference),
	}

	t, ok := ParseDate(rawDate)
	if !ok {
		c.Warn("NewMetadata", "invoice_date", rawDate, "couldn't parse invoice date")
		m.InvoiceDate = Unknown
		m.DueDate = Unknown
		m.POMonth = Unknown
		return m
	}

	m.originalDate = t
	m.hasDate = true
	m.InvoiceDate = t.Format(isoLayout)
	m.DueDate = t.AddDate(0, 0, dueDays).Format(isoLayout)
	m.POMonth = t.Format(monthLayout)
	return m
}

// OriginalDate returns the date as printed on the invoice.
func (m Metadata) OriginalDate() (time.Time, bool) {
	return m.originalDate, m.HasOriginalDate()
}

// HasOriginalDate reports whether the invoice date parsed.
func (m Metadata) HasOriginalDate() bool {
	return m.hasDate
}

// Degraded reports whether the invoice date could not be parsed.
func (m Metadata) Degraded() bool {
	return !m.HasOriginalDate()
}

// Adjusted reports whether AdjustIfOverdue has already been applied.
func (m Metadata) Adjusted() bool {
	return m.adjusted
}

// PeriodISO is the accounting period of the original date as YYYY-MM.
func (m Metadata) PeriodISO() string {
	if m.Degraded() {
		return ""
	}
	return m.originalDate.Format(monthLayout)
}

// PeriodShort is the accounting period of the original date as MM/YY.
func (m Metadata) PeriodShort() string {
	if m.Degraded() {
		return ""
	}
	return m.originalDate.Format(shortLayout)
}

// IsGUK reports whether the PO reference is a customer purchase order.
func (m Metadata) IsGUK() bool {
	return strings.HasPrefix(m.POReference, gukPrefix)
}

// OverdueThreshold is three days before the first of now's month.
func OverdueThreshold(now time.Time) time.Time {
	return firstOfMonth(now).AddDate(0, 0, -overdueGrace)
}

func firstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AdjustIfOverdue moves late invoices into the current accounting period.
//
// POMonth always becomes the MM/YY of the canonical invoice date. When that
// date is before OverdueThreshold(now), InvoiceDate becomes the first of
// now's month and the PO reference is replaced with "MM/YY invoice", or has
// that line prepended when it is a GUK reference. A canonical date that does
// not parse sets POMonth to Unknown and leaves everything else alone.
func (m Metadata) AdjustIfOverdue(now time.Time, c *diag.Collector) Metadata {
	if m.adjusted {
		c.Warn("AdjustIfOverdue", "invoice_date", m.InvoiceDate, "metadata already adjusted")
		return m
	}

	out := m
	out.adjusted = true

	t, err := time.Parse(isoLayout, m.InvoiceDate)
	if err != nil {
		c.Warn("AdjustIfOverdue", "invoice_date", m.InvoiceDate, "date parsing error: "+err.Error())
		out.POMonth = Unknown
		return out
	}

	out.POMonth = t.Format(shortLayout)
	if !t.Before(OverdueThreshold(now)) {
		return out
	}

	out.InvoiceDate = firstOfMonth(now).Format(isoLayout)
	label := out.POMonth + " invoice"
	if m.IsGUK() {
		out.POReference = label + "\n" + m.POReference
	} else {
		out.POReference = label
	}
	return out
}

// Fields renders the metadata with its cover-sheet and report labels.
func (m Metadata) Fields() map[string]string {
	return map[string]string{
		"Invoice No":         m.InvoiceNo,
		"Invoice Date":       m.InvoiceDate,
		"Invoice Type":       m.InvoiceType,
		"Due Date":           m.DueDate,
		"PO Reference":       m.POReference,
		"PO Month":           m.POMonth,
		"Short Vendor Name":  m.Vendor.ShortName,
		"Vendor Name":        m.Vendor.Name,
		"Vendor Address":     m.Vendor.Address,
		"Vendor VAT Reg No":  m.Vendor.VATRegNo,
		"Vendor AWRS":        m.Vendor.AWRS,
		"Vendor Customer No": m.Vendor.CustomerNo,
	}
}
