package cmd

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicefiler/internal/diag"
	"invoicefiler/internal/extract"
	"invoicefiler/internal/invoice"
	"invoicefiler/internal/location"
	"invoicefiler/internal/logger"
	"invoicefiler/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Print the metadata and totals extracted from an invoice PDF as JSON",
	Long: `Run the extraction half of the pipeline on one PDF and print what was
found for every invoice in it: metadata, VAT-banded totals, the totals check,
the resolved MFC and the filename it would be filed under. Nothing is
written or moved.`,
	Example: `  # Check a vendor config against a sample invoice
  invoicefiler extract sample.pdf --vendor-config blakemore.json

  # Save to a file
  invoicefiler extract sample.pdf -o sample.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput is the JSON document printed by extract.
type ExtractOutput struct {
	File     string           `json:"file"`
	Invoices []InvoiceSummary `json:"invoices"`
}

// InvoiceSummary is one invoice found in the file.
type InvoiceSummary struct {
	Pages      []int             `json:"pages"`
	Key        string            `json:"key,omitempty"`
	Filename   string            `json:"filename"`
	Metadata   map[string]string `json:"metadata"`
	Financials map[string]string `json:"financials"`
	Totals     map[string]bool   `json:"totals_check"`
	Location   *location.MFC     `json:"location,omitempty"`
	Address    string            `json:"delivery_address"`
	Extra      map[string]string `json:"extra,omitempty"`
	Warnings   []diag.Warning    `json:"warnings,omitempty"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("rotate", 0, "Rotate pages clockwise before reading, multiple of 90")
	extractCmd.Flags().Bool("no-adjust", false, "Do not move overdue invoices into the current period")
	extractCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	log := logger.WithFile(logger.WithComponent("extract"), pdfPath)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	if cmd.Flags().Changed("rotate") {
		cfg.RotateDegrees, _ = cmd.Flags().GetInt("rotate")
	}
	if v, _ := cmd.Flags().GetBool("no-adjust"); v {
		cfg.AdjustOverdue = false
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	proc, closeFn, err := buildProcessor(ctx, cfg, "", true, log)
	if err != nil {
		return err
	}
	defer closeFn()

	pages, _, cleanup, err := proc.ReadPages(ctx, pdfPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read PDF text")
		return err
	}
	defer cleanup()

	if proc.Vendor.InvoicePage != "" {
		matched, ok := extract.TargetPages(pages, proc.Vendor.InvoicePage)
		if !ok {
			return pipeline.ErrNoInvoicePages
		}
		pages = matched
	}

	out := ExtractOutput{File: filepath.Base(pdfPath)}
	for _, g := range extract.GroupPages(pages, proc.Vendor.PageKey) {
		out.Invoices = append(out.Invoices, summarize(proc, g, log))
	}

	log.Info().Int("invoices", len(out.Invoices)).Msg("Extraction completed")
	return writeJSON(out, outputPath, log)
}

func summarize(proc *pipeline.Processor, g extract.PageGroup, log zerolog.Logger) InvoiceSummary {
	c := diag.NewCollector(log)

	ex := pipeline.Extract(g.Text(), proc.Vendor, c)
	md := ex.Metadata
	if proc.Options.AdjustOverdue {
		md = md.AdjustIfOverdue(time.Now(), c)
	}

	var loc location.MFC
	var found *location.MFC
	if proc.Locations != nil {
		var err error
		if loc, err = proc.Locations.Resolve(ex.Address); err != nil {
			c.Warn("locate", "delivery_address", "", err.Error())
			loc = location.MFC{}
		} else {
			found = &loc
		}
	}

	return InvoiceSummary{
		Pages:      g.Numbers(),
		Key:        g.Key,
		Filename:   invoice.StandardFilename(md, loc, ex.Financials),
		Metadata:   md.Fields(),
		Financials: ex.Financials.Fields(),
		Totals:     ex.Financials.ValidateTotals(proc.Options.Tolerance),
		Location:   found,
		Address:    ex.Address,
		Extra:      ex.Extra,
		Warnings:   c.Warnings(),
	}
}
