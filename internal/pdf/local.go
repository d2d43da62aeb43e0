package pdf

import (
	"context"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"invoicefiler/internal/extract"
	"invoicefiler/internal/logger"
)

// LocalTextSource reads the text layer embedded in the PDF. Scanned
// invoices without one yield ErrEmptyDocument.
type LocalTextSource struct {
	log zerolog.Logger
}

func NewLocalTextSource() *LocalTextSource {
	return &LocalTextSource{log: logger.WithComponent("pdf-local")}
}

// PageTexts extracts plain text page by page.
func (s *LocalTextSource) PageTexts(ctx context.Context, path string) ([]extract.Page, error) {
	const op = "PageTexts"

	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, WrapError(op, path, err, "failed to open PDF")
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]extract.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapError(op, path, err, "")
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, extract.Page{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, WrapError(op, path, ErrInvalidPDF, fmt.Sprintf("page %d: %v", i, err))
		}
		pages = append(pages, extract.Page{Number: i, Text: text})
	}

	if err := checkNotEmpty(op, path, pages); err != nil {
		return nil, err
	}
	s.log.Debug().Str("path", path).Int("pages", len(pages)).Msg("Text layer read")
	return pages, nil
}

func (s *LocalTextSource) Close() error {
	return nil
}
