package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invoicefiler/internal/extract"
	"invoicefiler/internal/logger"
	"invoicefiler/internal/pdf"
)

var splitCmd = &cobra.Command{
	Use:   "split [pdf-file]",
	Short: "Write the pages matching a pattern to a new PDF",
	Long: `Find the pages of a PDF whose text matches a pattern and write only those
pages, in order, to a new PDF. The input file is not changed.`,
	Example: `  # Keep only the invoice pages of a statement pack
  invoicefiler split pack.pdf --match "Tax Invoice" -o invoices.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().String("match", "", "Pattern a page must match (case-insensitive) [REQUIRED]")
	splitCmd.Flags().StringP("output", "o", "", "Output PDF path [REQUIRED]")
	splitCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")

	splitCmd.MarkFlagRequired("match")
	splitCmd.MarkFlagRequired("output")
}

func runSplit(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	log := logger.WithFile(logger.WithComponent("split"), pdfPath)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	match, _ := cmd.Flags().GetString("match")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	src, err := createTextSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource(src, log)

	pages, err := src.PageTexts(ctx, pdfPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", pdfPath, err)
	}
	matched, ok := extract.TargetPages(pages, match)
	if !ok {
		return fmt.Errorf("no page matches %q", match)
	}

	numbers := extract.PageGroup{Pages: matched}.Numbers()
	if err := pdf.NewPDFCPU().ExtractPages(pdfPath, outputPath, numbers); err != nil {
		return err
	}

	log.Info().Ints("pages", numbers).Str("output", outputPath).Msg("Pages written")
	fmt.Printf("Wrote %d of %d pages to %s\n", len(numbers), len(pages), outputPath)
	return nil
}
