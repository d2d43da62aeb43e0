package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"invoicefiler/internal/location"
	"invoicefiler/internal/logger"
)

var locationsCmd = &cobra.Command{
	Use:   "locations [table]",
	Short: "Check the MFC name table and look up addresses",
	Long: `Load the MFC name table (.csv or .xlsx) and report records that cannot be
used for filing because a name, Xero name or postcode is missing. With
--lookup, resolve a delivery address the way the pipeline does.`,
	Example: `  invoicefiler locations mfc.xlsx
  invoicefiler locations --lookup "Unit 4, Leeds LS1 1AA"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)

	locationsCmd.Flags().String("lookup", "", "Address text to resolve")
}

func runLocations(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("locations")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.MFCDirectory = args[0]
	}
	if cfg.MFCDirectory == "" {
		return fmt.Errorf("no MFC table given. Pass a path or set MFC_DIRECTORY")
	}

	dir, err := location.Load(cfg.MFCDirectory)
	if err != nil {
		return err
	}

	invalid := dir.Invalid()
	fmt.Printf("%s: %d records, %d incomplete\n", cfg.MFCDirectory, dir.Len(), len(invalid))
	for _, m := range invalid {
		fmt.Printf("  ✗ %s %q (friendly %q, xero %q, postcode %q)\n", m.ID, m.Name, m.FriendlyName, m.XeroName, m.Postcode)
	}

	lookup, _ := cmd.Flags().GetString("lookup")
	if lookup == "" {
		return nil
	}

	m, err := dir.Resolve(lookup)
	switch {
	case errors.Is(err, location.ErrNotFound):
		fmt.Println("No MFC matches that address.")
		return nil
	case err != nil:
		log.Warn().Err(err).Msg("Lookup matched an incomplete record")
		return err
	}
	fmt.Printf("%s -> %s (Xero: %s, postcode %s)\n", m.Name, m.FriendlyName, m.XeroName, m.Postcode)
	return nil
}
