package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"invoicefiler/internal/config"
	"invoicefiler/internal/coversheet"
	"invoicefiler/internal/logger"
	"invoicefiler/internal/pdf"
	"invoicefiler/internal/pipeline"
	"invoicefiler/internal/register"
	"invoicefiler/internal/sheets"
	"invoicefiler/pkg/models"
)

var processCmd = &cobra.Command{
	Use:   "process [folder]",
	Short: "Extract, name and file every invoice PDF in a folder",
	Long: `Process every PDF in the download folder one at a time. Batches holding
several invoices are split on the vendor's page key. Each invoice gets a
cover sheet and is filed in the processed folder; an invoice whose name is
already filed is kept in the work folder as "Duplicate - <name>".

Each run is logged with a run ID and can be appended to an XLSX register
and/or a Google Sheet.

Environment variables:
  INVOICE_DOWNLOAD_DIR, INVOICE_PROCESSED_DIR, INVOICE_WORK_DIR
  VENDOR_CONFIG, MFC_DIRECTORY, COVER_SHEET_TEMPLATE, SOFFICE_PATH
  TEXT_SOURCE (local, vision, documentai)
  REGISTER_XLSX, GOOGLE_SHEET_URL, GOOGLE_SHEET_WORKSHEET
  ROTATE_DEGREES, ADJUST_OVERDUE, MAX_DUPLICATES, TOTALS_TOLERANCE`,
	Example: `  # File everything in the configured download folder
  invoicefiler process

  # See what would be filed without touching any file
  invoicefiler process ./downloads --dry-run

  # Scanned upside down, read with Cloud Vision
  invoicefiler process ./scans --rotate 180 --source vision`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("dest", "", "Folder for filed invoices (default: $INVOICE_PROCESSED_DIR)")
	processCmd.Flags().String("work", "", "Working folder for duplicates and scratch files (default: $INVOICE_WORK_DIR)")
	processCmd.Flags().String("template", "", "Cover sheet DOCX template (default: $COVER_SHEET_TEMPLATE)")
	processCmd.Flags().String("register", "", "XLSX register to append to (default: $REGISTER_XLSX)")
	processCmd.Flags().Int("rotate", 0, "Rotate pages clockwise before reading, multiple of 90")
	processCmd.Flags().Bool("dry-run", false, "Extract and name invoices without writing files")
	processCmd.Flags().Bool("no-adjust", false, "Do not move overdue invoices into the current period")
	processCmd.Flags().Bool("no-sheet", false, "Do not write to the Google Sheet")
	processCmd.Flags().Int("timeout", 30, "Processing timeout in minutes")
}

func runProcess(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()
	log := logger.WithRunID(logger.WithComponent("process"), runID)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyProcessFlags(cmd, cfg, args)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noSheet, _ := cmd.Flags().GetBool("no-sheet")
	timeoutMins, _ := cmd.Flags().GetInt("timeout")

	info, err := os.Stat(cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("folder not found: %s", cfg.DownloadDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cfg.DownloadDir)
	}

	log.Info().
		Str("folder", cfg.DownloadDir).
		Str("dest", cfg.ProcessedDir).
		Str("work", cfg.WorkDir).
		Str("source", cfg.TextSource).
		Bool("dry_run", dryRun).
		Msg("Starting invoice filing")

	ctx, cancel := createContext(time.Duration(timeoutMins)*time.Minute, log)
	defer cancel()

	proc, closeFn, err := buildProcessor(ctx, cfg, runID, dryRun, log)
	if err != nil {
		return err
	}
	defer closeFn()

	files, err := pipeline.FindPDFs(cfg.DownloadDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No PDF files found in folder.")
		return nil
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                           INVOICE FILING")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Folder: %s\n", cfg.DownloadDir)
	fmt.Printf("Run:    %s\n", runID)
	if dryRun {
		fmt.Println("Mode:   dry run (no files written)")
	}
	fmt.Println()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Filing invoices"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	proc.AfterFile = func(path string, records []models.FilingRecord) {
		bar.Add(1)
	}

	records, err := proc.ProcessDir(ctx, cfg.DownloadDir)
	fmt.Println()
	if err != nil {
		log.Error().Err(err).Int("records", len(records)).Msg("Run interrupted")
	}

	printSummary(records)

	if dryRun {
		return err
	}
	if sink := buildSinks(ctx, cfg, noSheet, log); sink != nil && len(records) > 0 {
		if err := sink.Append(ctx, records); err != nil {
			log.Error().Err(err).Msg("Failed to update register")
			return fmt.Errorf("invoices processed but register update failed: %w", err)
		}
	}

	return err
}

func applyProcessFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) == 1 {
		cfg.DownloadDir = args[0]
	}
	if v, _ := cmd.Flags().GetString("dest"); v != "" {
		cfg.ProcessedDir = v
	}
	if v, _ := cmd.Flags().GetString("work"); v != "" {
		cfg.WorkDir = v
	}
	if v, _ := cmd.Flags().GetString("template"); v != "" {
		cfg.CoverSheetTemplate = v
	}
	if v, _ := cmd.Flags().GetString("register"); v != "" {
		cfg.RegisterXLSX = v
	}
	if cmd.Flags().Changed("rotate") {
		cfg.RotateDegrees, _ = cmd.Flags().GetInt("rotate")
	}
	if v, _ := cmd.Flags().GetBool("no-adjust"); v {
		cfg.AdjustOverdue = false
	}
}

// buildProcessor wires the pipeline from cfg. The returned func closes the text source.
func buildProcessor(ctx context.Context, cfg *config.Config, runID string, dryRun bool, log zerolog.Logger) (*pipeline.Processor, func(), error) {
	v, err := loadVendor(cfg.VendorConfig, log)
	if err != nil {
		return nil, nil, err
	}
	locations, err := loadLocations(cfg.MFCDirectory, log)
	if err != nil {
		return nil, nil, err
	}
	src, err := createTextSource(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	var cover coversheet.Renderer
	if cfg.CoverSheetTemplate != "" {
		cover = coversheet.NewDocxRenderer(cfg.CoverSheetTemplate, cfg.SofficePath)
	} else {
		log.Warn().Msg("No cover sheet template set, invoices will be filed without one")
	}

	proc := pipeline.New(v, locations, src, pdf.NewPDFCPU(), cover, pipeline.Options{
		DestDir:       cfg.ProcessedDir,
		WorkDir:       cfg.WorkDir,
		DryRun:        dryRun,
		AdjustOverdue: cfg.AdjustOverdue,
		RotateDegrees: cfg.RotateDegrees,
		Tolerance:     cfg.TotalsTolerance,
		RunID:         runID,
	})
	proc.Resolver.MaxDuplicates = cfg.MaxDuplicates

	return proc, func() { closeSource(src, log) }, nil
}

// buildSinks returns the configured registers, or nil when none is set.
func buildSinks(ctx context.Context, cfg *config.Config, skipSheet bool, log zerolog.Logger) register.Sink {
	var sinks register.Multi
	if cfg.RegisterXLSX != "" {
		sinks = append(sinks, register.NewXLSX(cfg.RegisterXLSX))
	}
	if cfg.GoogleSheetURL != "" && !skipSheet {
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, cfg.GoogleSheetWorksheet)
		if err != nil {
			log.Error().Err(err).Msg("Google Sheet register unavailable")
		} else {
			sinks = append(sinks, svc)
		}
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

func printSummary(records []models.FilingRecord) {
	counts := map[string]int{}
	var mismatched, warned int
	for _, r := range records {
		counts[r.Status]++
		if r.Status != models.StatusFailed && !r.TotalsValid {
			mismatched++
		}
		if len(r.Warnings) > 0 {
			warned++
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 RESULT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Invoices:   %d\n", len(records))
	for _, status := range []string{models.StatusFiled, models.StatusDuplicate, models.StatusDryRun, models.StatusFailed} {
		if counts[status] > 0 {
			fmt.Printf("%-11s %d\n", status+":", counts[status])
		}
	}
	if mismatched > 0 {
		fmt.Printf("Totals not reconciled: %d\n", mismatched)
	}
	if warned > 0 {
		fmt.Printf("With warnings: %d\n", warned)
	}

	for _, r := range records {
		switch {
		case r.Failed():
			fmt.Printf("  ✗ %s %v: %s\n", r.SourceFile, r.Pages, r.Error)
		case r.Duplicate:
			fmt.Printf("  ⚠ %s\n", r.Filename)
		default:
			fmt.Printf("  ✓ %s\n", r.Filename)
		}
	}
}
