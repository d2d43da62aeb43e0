// Package pipeline turns downloaded invoice PDFs into filed documents: it
// reads page text, splits batches into invoices, extracts metadata and
// totals, names each invoice, and files it behind a cover sheet.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"invoicefiler/internal/coversheet"
	"invoicefiler/internal/diag"
	"invoicefiler/internal/extract"
	"invoicefiler/internal/filing"
	"invoicefiler/internal/invoice"
	"invoicefiler/internal/location"
	"invoicefiler/internal/logger"
	"invoicefiler/internal/pdf"
	"invoicefiler/internal/vendor"
	"invoicefiler/pkg/models"
)

// ErrNoInvoicePages is returned when the vendor's invoice_page pattern
// matched none of a document's pages.
var ErrNoInvoicePages = errors.New("no invoice pages in document")

// Options control one run.
type Options struct {
	DestDir string
	WorkDir string

	// DryRun extracts and names invoices without writing any file.
	DryRun bool

	// AdjustOverdue moves invoices dated before the overdue threshold into
	// the current period.
	AdjustOverdue bool

	// RotateDegrees turns every page before text is read. Zero skips it.
	RotateDegrees int

	Tolerance decimal.Decimal
	RunID     string
	Now       func() time.Time
}

// Processor files invoices one at a time.
type Processor struct {
	Vendor    vendor.Config
	Locations *location.Directory
	Source    pdf.TextSource
	Pages     pdf.PageTool

	// Cover is optional. Without it invoices are filed without a cover sheet.
	Cover coversheet.Renderer

	Resolver *filing.Resolver
	Mover    *filing.Mover
	Options  Options

	// AfterFile is called once per source file by ProcessDir.
	AfterFile func(path string, records []models.FilingRecord)

	log zerolog.Logger
}

// New creates a processor with the default resolver and mover.
func New(v vendor.Config, locations *location.Directory, source pdf.TextSource, pages pdf.PageTool, cover coversheet.Renderer, opts Options) *Processor {
	return &Processor{
		Vendor:    v,
		Locations: locations,
		Source:    source,
		Pages:     pages,
		Cover:     cover,
		Resolver:  filing.NewResolver(),
		Mover:     filing.NewMover(),
		Options:   opts,
		log:       logger.WithComponent("pipeline"),
	}
}

func (p *Processor) now() time.Time {
	if p.Options.Now != nil {
		return p.Options.Now()
	}
	return time.Now()
}

func (p *Processor) tolerance() decimal.Decimal {
	if p.Options.Tolerance.IsPositive() {
		return p.Options.Tolerance
	}
	return invoice.DefaultTolerance
}

// ProcessDir processes every PDF in dir in name order. A document that fails
// is recorded as failed and the run continues.
func (p *Processor) ProcessDir(ctx context.Context, dir string) ([]models.FilingRecord, error) {
	files, err := FindPDFs(dir)
	if err != nil {
		return nil, err
	}

	p.log.Info().Str("dir", dir).Int("files", len(files)).Msg("Processing folder")

	var records []models.FilingRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		recs, err := p.ProcessFile(ctx, path)
		if err != nil {
			recs = append(recs, p.failed(path, nil, err))
		}
		if p.AfterFile != nil {
			p.AfterFile(path, recs)
		}
		records = append(records, recs...)
	}
	return records, nil
}

// FindPDFs lists the .pdf files directly inside dir, sorted by name.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReadPages returns the text of every page of path, rotated first when
// configured. The returned cleanup removes any rotated copy; the input it
// returns is the file the page numbers refer to.
func (p *Processor) ReadPages(ctx context.Context, path string) (pages []extract.Page, input string, cleanup func(), err error) {
	cleanup = func() {}
	input = path

	if deg := p.Options.RotateDegrees; deg != 0 {
		// A dry run leaves the work folder untouched.
		parent := ""
		if !p.Options.DryRun {
			parent = p.Options.WorkDir
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, "", cleanup, fmt.Errorf("create work folder: %w", err)
			}
		}
		scratch, err := os.MkdirTemp(parent, ".rotate-*")
		if err != nil {
			return nil, "", cleanup, fmt.Errorf("rotate %s: %w", path, err)
		}
		cleanup = func() { os.RemoveAll(scratch) }

		input = filepath.Join(scratch, filepath.Base(path))
		if err := p.Pages.Rotate(path, input, deg); err != nil {
			cleanup()
			return nil, "", func() {}, err
		}
	}

	pages, err = p.Source.PageTexts(ctx, input)
	if err != nil {
		cleanup()
		return nil, "", func() {}, err
	}
	return pages, input, cleanup, nil
}

// ProcessFile files every invoice found in one source PDF. The error is
// non-nil only when the document as a whole could not be read; failures of
// single invoices come back as failed records.
func (p *Processor) ProcessFile(ctx context.Context, path string) ([]models.FilingRecord, error) {
	log := p.log.With().Str("file", filepath.Base(path)).Logger()

	pages, input, cleanup, err := p.ReadPages(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if p.Vendor.InvoicePage != "" {
		matched, ok := extract.TargetPages(pages, p.Vendor.InvoicePage)
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrNoInvoicePages)
		}
		pages = matched
	}

	groups := extract.GroupPages(pages, p.Vendor.PageKey)
	log.Info().Int("pages", len(pages)).Int("invoices", len(groups)).Msg("Document read")

	records := make([]models.FilingRecord, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, p.processGroup(ctx, path, input, g, log))
	}
	return records, nil
}

func (p *Processor) processGroup(ctx context.Context, source, input string, g extract.PageGroup, log zerolog.Logger) models.FilingRecord {
	c := diag.NewCollector(log.With().Ints("pages", g.Numbers()).Logger())

	ex := Extract(g.Text(), p.Vendor, c)
	md := ex.Metadata
	if p.Options.AdjustOverdue {
		md = md.AdjustIfOverdue(p.now(), c)
	}
	for _, err := range md.Validate() {
		var ve *invoice.ValidationError
		if errors.As(err, &ve) {
			c.Warn("validate", ve.Field, fmt.Sprint(ve.Value), ve.Message)
		}
	}

	rec := p.record(source, g, md, ex)

	loc, err := p.locate(ex.Address, c)
	if err != nil {
		rec.Warnings = c.Strings()
		return p.failed(source, &rec, err)
	}
	rec.Location = orUnknown(loc.FriendlyName)
	rec.XeroLocation = loc.XeroName

	check := ex.Financials.ValidateTotals(p.tolerance())
	rec.TotalsValid = check.Valid()
	rec.TotalsChecks = check
	if err := check.Err(); err != nil {
		c.Warn("totals", strings.Join(check.Failed(), ","), ex.Financials.String(), err.Error())
	}

	res, err := p.Resolver.Resolve(md, ex.Financials, loc, p.Options.DestDir, p.Options.WorkDir)
	if err != nil {
		rec.Warnings = c.Strings()
		return p.failed(source, &rec, err)
	}
	rec.Filename = res.Filename
	rec.Duplicate = res.Duplicate
	rec.Path = filepath.Join(p.targetDir(res), res.Filename)

	if p.Options.DryRun {
		rec.Status = models.StatusDryRun
		rec.Warnings = c.Strings()
		return rec
	}

	if err := p.file(ctx, input, g, invoice.CoverSheetFields(md, loc, ex.Financials), rec.Path, c); err != nil {
		rec.Warnings = c.Strings()
		return p.failed(source, &rec, err)
	}

	rec.Status = models.StatusFiled
	if res.Duplicate {
		rec.Status = models.StatusDuplicate
	}
	rec.Warnings = c.Strings()

	log.Info().
		Str("filename", rec.Filename).
		Str("status", rec.Status).
		Bool("totals_valid", rec.TotalsValid).
		Int("warnings", len(rec.Warnings)).
		Msg("Invoice filed")
	return rec
}

// locate resolves the delivery location. No match files the invoice under
// the unknown location; an incomplete match fails it.
func (p *Processor) locate(address string, c *diag.Collector) (location.MFC, error) {
	if p.Locations == nil {
		c.Warn("locate", "delivery_address", "", "no MFC directory loaded")
		return location.MFC{}, nil
	}
	loc, err := p.Locations.Resolve(address)
	switch {
	case errors.Is(err, location.ErrNotFound):
		c.Warn("locate", "delivery_address", firstLine(address), "no MFC matches delivery address")
		return location.MFC{}, nil
	case err != nil:
		return location.MFC{}, err
	}
	return loc, nil
}

// file assembles cover sheet and invoice pages in a scratch folder and moves
// the result to dst.
func (p *Processor) file(ctx context.Context, input string, g extract.PageGroup, fields map[string]string, dst string, c *diag.Collector) error {
	if err := os.MkdirAll(p.Options.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work folder: %w", err)
	}
	scratch, err := os.MkdirTemp(p.Options.WorkDir, ".filing-*")
	if err != nil {
		return fmt.Errorf("create scratch folder: %w", err)
	}
	defer os.RemoveAll(scratch)

	pagesPDF := filepath.Join(scratch, "invoice.pdf")
	if err := p.Pages.ExtractPages(input, pagesPDF, g.Numbers()); err != nil {
		return err
	}

	out := pagesPDF
	if p.Cover != nil {
		coverPDF := filepath.Join(scratch, "cover.pdf")
		if err := p.Cover.Render(ctx, fields, coverPDF); err != nil {
			return err
		}
		out = filepath.Join(scratch, "merged.pdf")
		if err := p.Pages.Merge(out, coverPDF, pagesPDF); err != nil {
			return err
		}
	} else {
		c.Warn("file", "cover_sheet", "", "no cover sheet template configured")
	}

	return p.Mover.Move(out, dst)
}

// targetDir is the destination folder, or the work folder for duplicates.
func (p *Processor) targetDir(res filing.Resolution) string {
	if res.Duplicate {
		return p.Options.WorkDir
	}
	return p.Options.DestDir
}

func (p *Processor) record(source string, g extract.PageGroup, md invoice.Metadata, ex Extraction) models.FilingRecord {
	return models.FilingRecord{
		RunID:       p.Options.RunID,
		ProcessedAt: p.now(),
		SourceFile:  filepath.Base(source),
		Pages:       g.Numbers(),
		Vendor:      md.Vendor.ShortName,
		InvoiceNo:   md.InvoiceNo,
		InvoiceDate: md.InvoiceDate,
		DueDate:     md.DueDate,
		POReference: md.POReference,
		Net:         ex.Financials.TotalNet(),
		VAT:         ex.Financials.TotalVAT(),
		Gross:       ex.Financials.TotalGross(),
		Extra:       ex.Extra,
	}
}

func (p *Processor) failed(source string, rec *models.FilingRecord, err error) models.FilingRecord {
	if rec == nil {
		rec = &models.FilingRecord{
			RunID:       p.Options.RunID,
			ProcessedAt: p.now(),
			SourceFile:  filepath.Base(source),
		}
	}
	rec.Status = models.StatusFailed
	rec.Error = err.Error()

	p.log.Error().
		Err(err).
		Str("file", rec.SourceFile).
		Ints("pages", rec.Pages).
		Msg("Invoice not filed")
	return *rec
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return invoice.UnknownMFC
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
