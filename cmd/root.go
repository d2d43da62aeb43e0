package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicefiler/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicefiler",
	Short: "File vendor invoice PDFs under standard names with a cover sheet",
	Long: `invoicefiler reads downloaded vendor invoice PDFs, extracts the invoice
number, date, PO reference, delivery location and VAT-banded totals using
the vendor's pattern tables, checks the totals, and files each invoice behind
a generated cover sheet under a name like:

  25.02.03 - Blakemore - Leeds - 1001 - £120.00.pdf

Settings are read from the environment (or a .env file); flags override them.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("invoicefiler executed")

		cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("vendor-config", "", "Vendor pattern table JSON (default: $VENDOR_CONFIG)")
	rootCmd.PersistentFlags().String("mfc", "", "MFC name table, .csv or .xlsx (default: $MFC_DIRECTORY)")
	rootCmd.PersistentFlags().String("source", "", "Text source: local, vision or documentai (default: $TEXT_SOURCE)")
}
