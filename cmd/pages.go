package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"invoicefiler/internal/extract"
	"invoicefiler/internal/logger"
)

var pagesCmd = &cobra.Command{
	Use:   "pages [pdf-file]",
	Short: "Print the text of each page of a PDF",
	Long: `Read a PDF with the configured text source and print every page's text.
Use it to write or debug vendor patterns against what the pipeline sees.`,
	Example: `  # All pages
  invoicefiler pages batch.pdf

  # Only pages matching a pattern, as JSON
  invoicefiler pages batch.pdf --match "Tax Invoice" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPages,
}

func init() {
	rootCmd.AddCommand(pagesCmd)

	pagesCmd.Flags().String("match", "", "Only print pages matching this pattern (case-insensitive)")
	pagesCmd.Flags().Bool("json", false, "Print pages as JSON")
	pagesCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runPages(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	log := logger.WithFile(logger.WithComponent("pages"), pdfPath)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	match, _ := cmd.Flags().GetString("match")
	asJSON, _ := cmd.Flags().GetBool("json")
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
	if match != "" {
		matched, ok := extract.TargetPages(pages, match)
		if !ok {
			return fmt.Errorf("no page matches %q", match)
		}
		pages = matched
	}

	if asJSON {
		return writeJSON(pages, "", log)
	}
	for _, p := range pages {
		fmt.Printf("%s page %d %s\n", strings.Repeat("-", 20), p.Number, strings.Repeat("-", 20))
		fmt.Println(p.Text)
	}
	return nil
}
