// Package pdf reads page text from invoice PDFs and rearranges their pages.
//
// Text can come from three sources:
//   - local: the PDF's embedded text layer, read in-process
//   - vision: Google Cloud Vision document text detection
//   - documentai: a Google Document AI OCR processor
//
// Required Environment Variables for the Google sources:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID (documentai only)
//
// Google API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Vision annotates at most 5 pages per request; longer documents are
//     sent in consecutive 5-page windows
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"

	"invoicefiler/internal/extract"
)

// Text source kinds.
const (
	SourceLocal      = "local"
	SourceVision     = "vision"
	SourceDocumentAI = "documentai"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous OCR (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	pdfMagic = "%PDF"
)

// TextSource returns the text of every page of a PDF, in page order.
type TextSource interface {
	PageTexts(ctx context.Context, path string) ([]extract.Page, error)
	Close() error
}

// SourceConfig selects and configures a TextSource.
type SourceConfig struct {
	Kind        string
	ProjectID   string
	Location    string
	ProcessorID string
}

// NewTextSource creates the text source named by cfg.Kind.
func NewTextSource(ctx context.Context, cfg SourceConfig) (TextSource, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", SourceLocal:
		return NewLocalTextSource(), nil
	case SourceVision:
		return NewVisionTextSource(ctx)
	case SourceDocumentAI:
		return NewDocumentAITextSource(ctx, cfg)
	default:
		return nil, WrapError("NewTextSource", "", ErrInvalidConfiguration, fmt.Sprintf("unknown text source %q", cfg.Kind))
	}
}

// credentialOptions reads Google credentials from the environment, inline
// JSON first. An empty result means application default credentials.
func credentialOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}

// readForUpload loads a PDF for an OCR request and checks its size and header.
func readForUpload(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(op, path, err, "failed to read PDF data")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapError(op, path, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if len(data) < len(pdfMagic) || string(data[:len(pdfMagic)]) != pdfMagic {
		return nil, WrapError(op, path, ErrInvalidPDF, "missing PDF header")
	}
	return data, nil
}

func checkNotEmpty(op, path string, pages []extract.Page) error {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return nil
		}
	}
	return WrapError(op, path, ErrEmptyDocument, fmt.Sprintf("%d pages", len(pages)))
}
