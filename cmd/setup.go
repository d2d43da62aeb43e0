package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicefiler/internal/config"
	"invoicefiler/internal/location"
	"invoicefiler/internal/pdf"
	"invoicefiler/internal/vendor"
)

// loadConfig reads the environment configuration and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("vendor-config"); v != "" {
		cfg.VendorConfig = v
	}
	if v, _ := cmd.Flags().GetString("mfc"); v != "" {
		cfg.MFCDirectory = v
	}
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.TextSource = v
	}
	return cfg, nil
}

// loadVendor reads the vendor tables, or the built-in vendor with empty tables.
func loadVendor(path string, log zerolog.Logger) (vendor.Config, error) {
	if path == "" {
		log.Warn().Msg("No vendor config set, using built-in vendor with empty pattern tables")
		return vendor.Default(), nil
	}
	cfg, err := vendor.Load(path)
	if err != nil {
		return vendor.Config{}, fmt.Errorf("failed to load vendor config: %w", err)
	}
	log.Debug().Str("vendor", cfg.Vendor.ShortName).Str("path", path).Msg("Vendor config loaded")
	return cfg, nil
}

// loadLocations reads the MFC table. Without one every invoice files under
// the unknown location.
func loadLocations(path string, log zerolog.Logger) (*location.Directory, error) {
	if path == "" {
		log.Warn().Msg("No MFC table set, delivery locations will not be resolved")
		return nil, nil
	}
	dir, err := location.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load MFC table: %w", err)
	}
	if invalid := dir.Invalid(); len(invalid) > 0 {
		log.Warn().Int("incomplete", len(invalid)).Msg("MFC table has incomplete records")
	}
	return dir, nil
}

// createTextSource builds the configured text source with user-facing errors.
func createTextSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (pdf.TextSource, error) {
	src, err := pdf.NewTextSource(ctx, cfg.SourceConfig())
	if err != nil {
		if errors.Is(err, pdf.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("missing Google Cloud credentials. Please set one of:\n" +
				"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n" +
				"  GOOGLE_CREDENTIALS='<json-credentials>'\n" +
				"or use TEXT_SOURCE=local for PDFs with a text layer.\n" +
				"Original error: %w", err)
		}
		log.Error().Err(err).Msg("Failed to create text source")
		return nil, fmt.Errorf("failed to create %s text source: %w", cfg.TextSource, err)
	}
	log.Debug().Str("source", cfg.TextSource).Msg("Text source created")
	return src, nil
}

// createContext creates a context with timeout and signal handling
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// writeJSON pretty-prints v to outputPath, or stdout when empty.
func writeJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

// closeSource closes src and logs a failure.
func closeSource(src pdf.TextSource, log zerolog.Logger) {
	if err := src.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close text source")
	}
}
