package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filing statuses
const (
	StatusFiled     = "filed"
	StatusDuplicate = "duplicate"
	StatusDryRun    = "dry-run"
	StatusFailed    = "failed"
)

// FilingRecord is the outcome of processing one invoice out of a source PDF.
type FilingRecord struct {
	// Run
	RunID       string    `json:"run_id"`
	ProcessedAt time.Time `json:"processed_at"`
	SourceFile  string    `json:"source_file"`
	Pages       []int     `json:"pages,omitempty"`

	// Result
	Filename  string `json:"filename,omitempty"`
	Path      string `json:"path,omitempty"`
	Duplicate bool   `json:"duplicate"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`

	// Invoice
	Vendor       string `json:"vendor"`
	InvoiceNo    string `json:"invoice_no"`
	InvoiceDate  string `json:"invoice_date"`
	DueDate      string `json:"due_date"`
	POReference  string `json:"po_reference"`
	Location     string `json:"location"`
	XeroLocation string `json:"xero_location"`

	// Amounts
	Net          decimal.Decimal `json:"net"`
	VAT          decimal.Decimal `json:"vat"`
	Gross        decimal.Decimal `json:"gross"`
	TotalsValid  bool            `json:"totals_valid"`
	TotalsChecks map[string]bool `json:"totals_checks,omitempty"`

	Warnings []string          `json:"warnings,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// RegisterColumns are the register headers, in the order of Values.
var RegisterColumns = []string{
	"Processed", "Run", "Source File", "Pages", "Filename", "Status", "Duplicate",
	"Vendor", "Invoice No", "Invoice Date", "Due Date", "PO Reference",
	"MFC", "Xero Location", "Net", "VAT", "Gross", "Totals Valid",
	"Warnings", "Error",
}

// Values renders the record as one register row.
func (r FilingRecord) Values() []interface{} {
	pages := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		pages = append(pages, strconv.Itoa(p))
	}
	return []interface{}{
		r.ProcessedAt.Format("2006-01-02 15:04:05"),
		r.RunID,
		r.SourceFile,
		strings.Join(pages, ","),
		r.Filename,
		r.Status,
		r.Duplicate,
		r.Vendor,
		r.InvoiceNo,
		r.InvoiceDate,
		r.DueDate,
		r.POReference,
		r.Location,
		r.XeroLocation,
		r.Net.InexactFloat64(),
		r.VAT.InexactFloat64(),
		r.Gross.InexactFloat64(),
		r.TotalsValid,
		strings.Join(r.Warnings, "; "),
		r.Error,
	}
}

// Failed reports whether the invoice could not be filed.
func (r FilingRecord) Failed() bool {
	return r.Status == StatusFailed
}
