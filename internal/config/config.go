package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"invoicefiler/internal/logger"
	"invoicefiler/internal/pdf"
)

type Config struct {
	// Folders
	DownloadDir  string
	ProcessedDir string
	WorkDir      string

	// Input tables and templates
	CoverSheetTemplate string
	MFCDirectory       string
	VendorConfig       string

	// Text extraction
	TextSource            string
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Filing register
	GoogleSheetURL       string
	GoogleSheetWorksheet string
	RegisterXLSX         string

	// Filing behaviour
	SofficePath     string
	RotateDegrees   int
	AdjustOverdue   bool
	MaxDuplicates   int
	TotalsTolerance decimal.Decimal

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DownloadDir:           getEnv("INVOICE_DOWNLOAD_DIR", "invoices/downloaded"),
		ProcessedDir:          getEnv("INVOICE_PROCESSED_DIR", "invoices/processed"),
		WorkDir:               getEnv("INVOICE_WORK_DIR", "invoices/work"),
		CoverSheetTemplate:    getEnv("COVER_SHEET_TEMPLATE", ""),
		MFCDirectory:          getEnv("MFC_DIRECTORY", ""),
		VendorConfig:          getEnv("VENDOR_CONFIG", ""),
		TextSource:            strings.ToLower(getEnv("TEXT_SOURCE", pdf.SourceLocal)),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:  getEnv("GOOGLE_SHEET_WORKSHEET", "Register"),
		RegisterXLSX:          getEnv("REGISTER_XLSX", ""),
		SofficePath:           getEnv("SOFFICE_PATH", "soffice"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	var err error
	if config.RotateDegrees, err = getInt("ROTATE_DEGREES", 0); err != nil {
		return nil, err
	}
	if config.MaxDuplicates, err = getInt("MAX_DUPLICATES", 999); err != nil {
		return nil, err
	}
	if config.AdjustOverdue, err = getBool("ADJUST_OVERDUE", true); err != nil {
		return nil, err
	}
	if config.TotalsTolerance, err = decimal.NewFromString(getEnv("TOTALS_TOLERANCE", "0.01")); err != nil {
		return nil, fmt.Errorf("TOTALS_TOLERANCE: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.TextSource {
	case pdf.SourceLocal, pdf.SourceVision:
	case pdf.SourceDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for TEXT_SOURCE=documentai")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for TEXT_SOURCE=documentai")
		}
	default:
		return fmt.Errorf("TEXT_SOURCE must be local, vision or documentai, got %q", c.TextSource)
	}
	if c.RotateDegrees%90 != 0 {
		return fmt.Errorf("ROTATE_DEGREES must be a multiple of 90, got %d", c.RotateDegrees)
	}
	if c.MaxDuplicates < 1 {
		return fmt.Errorf("MAX_DUPLICATES must be at least 1, got %d", c.MaxDuplicates)
	}
	if c.TotalsTolerance.IsNegative() {
		return fmt.Errorf("TOTALS_TOLERANCE must not be negative")
	}
	return nil
}

// SourceConfig returns the text source settings.
func (c *Config) SourceConfig() pdf.SourceConfig {
	return pdf.SourceConfig{
		Kind:        c.TextSource,
		ProjectID:   c.GoogleCloudProject,
		Location:    c.GoogleCloudLocation,
		ProcessorID: c.DocumentAIProcessorID,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
