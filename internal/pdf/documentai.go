package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoicefiler/internal/extract"
	"invoicefiler/internal/logger"
)

// DefaultDocumentAITimeout bounds one ProcessDocument call.
const DefaultDocumentAITimeout = 60 * time.Second

type processFunc func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)

// DocumentAITextSource reads page text with a Document AI OCR processor.
type DocumentAITextSource struct {
	client  *documentai.DocumentProcessorClient
	process processFunc
	config  SourceConfig
	timeout time.Duration
	log     zerolog.Logger
}

// NewDocumentAITextSource creates a Document AI client for cfg's project,
// location and processor, with credentials from the environment.
func NewDocumentAITextSource(ctx context.Context, cfg SourceConfig) (*DocumentAITextSource, error) {
	const op = "NewDocumentAITextSource"

	if cfg.ProjectID == "" {
		return nil, WrapError(op, "", ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, WrapError(op, "", ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}

	var clientOptions []option.ClientOption
	if cfg.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	creds := credentialOptions()
	clientOptions = append(clientOptions, creds...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(creds) == 0 {
			return nil, WrapError(op, "", ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapError(op, "", err, fmt.Sprintf("failed to create Document AI client for location: %s", cfg.Location))
	}
	return NewDocumentAITextSourceWithClient(cfg, client), nil
}

// NewDocumentAITextSourceWithClient creates a source with an explicit client.
func NewDocumentAITextSourceWithClient(cfg SourceConfig, client *documentai.DocumentProcessorClient) *DocumentAITextSource {
	return &DocumentAITextSource{
		client: client,
		process: func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
			return client.ProcessDocument(ctx, req)
		},
		config:  cfg,
		timeout: DefaultDocumentAITimeout,
		log:     logger.WithComponent("pdf-documentai"),
	}
}

// processorName constructs the full processor name for the Document AI API.
func (s *DocumentAITextSource) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		s.config.ProjectID, s.config.Location, s.config.ProcessorID)
}

// PageTexts processes the whole document and slices the document text by
// each page's layout anchor.
func (s *DocumentAITextSource) PageTexts(ctx context.Context, path string) ([]extract.Page, error) {
	const op = "PageTexts"

	data, err := readForUpload(op, path)
	if err != nil {
		return nil, err
	}

	processCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: s.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := s.process(processCtx, req)
	if err != nil {
		return nil, WrapError(op, path, ErrOCRFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.Document == nil {
		return nil, WrapError(op, path, ErrOCRFailed, "no document in response")
	}

	pages := documentPages(resp.Document)
	if err := checkNotEmpty(op, path, pages); err != nil {
		return nil, err
	}
	s.log.Debug().Str("path", path).Int("pages", len(pages)).Msg("Document AI OCR completed")
	return pages, nil
}

func documentPages(doc *documentaipb.Document) []extract.Page {
	text := []rune(doc.Text)
	pages := make([]extract.Page, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		number := i + 1
		if p.PageNumber > 0 {
			number = int(p.PageNumber)
		}
		var pageText string
		if p.Layout != nil {
			pageText = anchorText(text, p.Layout.TextAnchor)
		}
		pages = append(pages, extract.Page{Number: number, Text: pageText})
	}
	return pages
}

// anchorText concatenates the document text covered by an anchor's segments.
// Segment indexes count code points.
func anchorText(text []rune, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		start, end := int(seg.StartIndex), int(seg.EndIndex)
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		b.WriteString(string(text[start:end]))
	}
	return b.String()
}

// Close closes the underlying Document AI client.
func (s *DocumentAITextSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
