package pdf

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"

	"invoicefiler/internal/extract"
	"invoicefiler/internal/logger"
)

// MaxPagesPerRequest is the Vision limit for synchronous file annotation.
const MaxPagesPerRequest = 5

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest) (*visionpb.BatchAnnotateFilesResponse, error)

// VisionTextSource reads page text with Google Cloud Vision document text detection.
type VisionTextSource struct {
	client   *vision.ImageAnnotatorClient
	annotate annotateFunc
	log      zerolog.Logger
}

// NewVisionTextSource creates a Vision client with credentials from the environment.
func NewVisionTextSource(ctx context.Context) (*VisionTextSource, error) {
	const op = "NewVisionTextSource"

	opts := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapError(op, "", ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapError(op, "", err, "failed to create Vision client")
	}
	return NewVisionTextSourceWithClient(client), nil
}

// NewVisionTextSourceWithClient creates a source with an explicit client.
func NewVisionTextSourceWithClient(client *vision.ImageAnnotatorClient) *VisionTextSource {
	return &VisionTextSource{
		client: client,
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest) (*visionpb.BatchAnnotateFilesResponse, error) {
			return client.BatchAnnotateFiles(ctx, req)
		},
		log: logger.WithComponent("pdf-vision"),
	}
}

// PageTexts annotates the document in windows of MaxPagesPerRequest pages.
func (s *VisionTextSource) PageTexts(ctx context.Context, path string) ([]extract.Page, error) {
	const op = "PageTexts"

	data, err := readForUpload(op, path)
	if err != nil {
		return nil, err
	}

	// The first request leaves Pages empty, which annotates the first
	// MaxPagesPerRequest pages and reports the document's page count.
	var pages []extract.Page
	var window []int32
	for next := 1; ; {
		fileResp, err := s.annotateWindow(ctx, data, window)
		if err != nil {
			return nil, WrapError(op, path, err, fmt.Sprintf("pages from %d", next))
		}

		for i, resp := range fileResp.Responses {
			number := next + i
			if resp.Context != nil && resp.Context.PageNumber > 0 {
				number = int(resp.Context.PageNumber)
			}
			if resp.Error != nil {
				return nil, WrapError(op, path, ErrOCRFailed, fmt.Sprintf("page %d: %s", number, resp.Error.Message))
			}
			var text string
			if resp.FullTextAnnotation != nil {
				text = resp.FullTextAnnotation.Text
			}
			pages = append(pages, extract.Page{Number: number, Text: text})
		}

		next += len(fileResp.Responses)
		total := int(fileResp.TotalPages)
		if len(fileResp.Responses) == 0 || next > total {
			break
		}
		window = make([]int32, 0, MaxPagesPerRequest)
		for p := next; p < next+MaxPagesPerRequest && p <= total; p++ {
			window = append(window, int32(p))
		}
	}

	if err := checkNotEmpty(op, path, pages); err != nil {
		return nil, err
	}
	s.log.Debug().Str("path", path).Int("pages", len(pages)).Msg("Vision text detection completed")
	return pages, nil
}

func (s *VisionTextSource) annotateWindow(ctx context.Context, data []byte, window []int32) (*visionpb.AnnotateFileResponse, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{
						Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
					},
				},
				Pages: window,
			},
		},
	}

	resp, err := s.annotate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: Vision API call failed: %v", ErrOCRFailed, err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", ErrOCRFailed)
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, fmt.Errorf("%w: Vision API error: %s", ErrOCRFailed, fileResp.Error.Message)
	}
	return fileResp, nil
}

// Close closes the underlying Vision client.
func (s *VisionTextSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
