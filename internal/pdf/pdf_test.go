package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"

	"invoicefiler/internal/extract"
)

func writeFakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n% fake body\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func pageNumbers(pages []extract.Page) []int {
	return extract.PageGroup{Pages: pages}.Numbers()
}

func TestVisionPageTextsWindows(t *testing.T) {
	const total = 7
	var requested [][]int32

	src := &VisionTextSource{
		log: zerolog.Nop(),
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest) (*visionpb.BatchAnnotateFilesResponse, error) {
			window := req.Requests[0].Pages
			requested = append(requested, window)
			if len(window) == 0 {
				window = []int32{1, 2, 3, 4, 5}
			}
			fr := &visionpb.AnnotateFileResponse{TotalPages: total}
			for _, n := range window {
				fr.Responses = append(fr.Responses, &visionpb.AnnotateImageResponse{
					FullTextAnnotation: &visionpb.TextAnnotation{Text: fmt.Sprintf("page %d", n)},
					Context:            &visionpb.ImageAnnotationContext{PageNumber: n},
				})
			}
			return &visionpb.BatchAnnotateFilesResponse{Responses: []*visionpb.AnnotateFileResponse{fr}}, nil
		},
	}

	pages, err := src.PageTexts(context.Background(), writeFakePDF(t))
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if got := pageNumbers(pages); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("pages = %v", got)
	}
	if pages[6].Text != "page 7" {
		t.Errorf("page 7 text = %q", pages[6].Text)
	}
	want := [][]int32{nil, {6, 7}}
	if !reflect.DeepEqual(requested, want) {
		t.Errorf("requested windows = %v, want %v", requested, want)
	}
}

func TestVisionPageTextsErrors(t *testing.T) {
	failing := &VisionTextSource{
		log: zerolog.Nop(),
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest) (*visionpb.BatchAnnotateFilesResponse, error) {
			return nil, errors.New("unavailable")
		},
	}
	_, err := failing.PageTexts(context.Background(), writeFakePDF(t))
	if !errors.Is(err, ErrOCRFailed) {
		t.Errorf("PageTexts() error = %v, want ErrOCRFailed", err)
	}

	blank := &VisionTextSource{
		log: zerolog.Nop(),
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest) (*visionpb.BatchAnnotateFilesResponse, error) {
			fr := &visionpb.AnnotateFileResponse{TotalPages: 1, Responses: []*visionpb.AnnotateImageResponse{{}}}
			return &visionpb.BatchAnnotateFilesResponse{Responses: []*visionpb.AnnotateFileResponse{fr}}, nil
		},
	}
	_, err = blank.PageTexts(context.Background(), writeFakePDF(t))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("PageTexts(blank) error = %v, want ErrEmptyDocument", err)
	}
}

func TestReadForUpload(t *testing.T) {
	notPDF := filepath.Join(t.TempDir(), "x.pdf")
	if err := os.WriteFile(notPDF, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := readForUpload("op", notPDF)
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("readForUpload() error = %v, want ErrInvalidPDF", err)
	}
	var pdfErr *Error
	if !errors.As(err, &pdfErr) || pdfErr.Path != notPDF {
		t.Errorf("error does not carry path: %v", err)
	}

	_, err = readForUpload("op", filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("readForUpload(missing) error = %v", err)
	}
}

func TestDocumentPages(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "Invoice £10\nPage two\n",
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{
						TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 0, EndIndex: 12}},
					},
				},
			},
			{
				PageNumber: 2,
				Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{
						TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
							{StartIndex: 12, EndIndex: 16},
							{StartIndex: 16, EndIndex: 99},
							{StartIndex: 16, EndIndex: 21},
						},
					},
				},
			},
			{PageNumber: 3},
		},
	}

	got := documentPages(doc)
	want := []extract.Page{
		{Number: 1, Text: "Invoice £10\n"},
		{Number: 2, Text: "Page two\n"},
		{Number: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("documentPages() = %q, want %q", got, want)
	}
}

func TestDocumentAIPageTexts(t *testing.T) {
	var gotName string
	src := &DocumentAITextSource{
		config:  SourceConfig{ProjectID: "p", Location: "eu", ProcessorID: "abc"},
		timeout: DefaultDocumentAITimeout,
		log:     zerolog.Nop(),
		process: func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
			gotName = req.Name
			return &documentaipb.ProcessResponse{Document: &documentaipb.Document{
				Text: "hello",
				Pages: []*documentaipb.Document_Page{{
					Layout: &documentaipb.Document_Page_Layout{
						TextAnchor: &documentaipb.Document_TextAnchor{
							TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 0, EndIndex: 5}},
						},
					},
				}},
			}}, nil
		},
	}

	pages, err := src.PageTexts(context.Background(), writeFakePDF(t))
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 || pages[0].Text != "hello" {
		t.Errorf("pages = %+v", pages)
	}
	if gotName != "projects/p/locations/eu/processors/abc" {
		t.Errorf("processor name = %q", gotName)
	}
}

func TestNewTextSource(t *testing.T) {
	src, err := NewTextSource(context.Background(), SourceConfig{})
	if err != nil {
		t.Fatalf("NewTextSource(default) error = %v", err)
	}
	if _, ok := src.(*LocalTextSource); !ok {
		t.Errorf("default source = %T, want *LocalTextSource", src)
	}

	_, err = NewTextSource(context.Background(), SourceConfig{Kind: "tesseract"})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("NewTextSource(unknown) error = %v", err)
	}

	_, err = NewTextSource(context.Background(), SourceConfig{Kind: SourceDocumentAI})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("NewTextSource(documentai without project) error = %v", err)
	}
}

func TestPageToolValidation(t *testing.T) {
	p := NewPDFCPU()
	dir := t.TempDir()

	if err := p.Rotate("in.pdf", filepath.Join(dir, "out.pdf"), 45); !errors.Is(err, ErrInvalidRotation) {
		t.Errorf("Rotate(45) error = %v", err)
	}
	if err := p.ExtractPages("in.pdf", filepath.Join(dir, "out.pdf"), nil); !errors.Is(err, ErrNoPages) {
		t.Errorf("ExtractPages(nil) error = %v", err)
	}
	if err := p.Merge(filepath.Join(dir, "out.pdf")); !errors.Is(err, ErrNoPages) {
		t.Errorf("Merge() error = %v", err)
	}
}
