package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"

	"invoicefiler/internal/logger"
)

// PageTool rearranges PDF pages on disk. Outputs are written to new files;
// inputs are never modified.
type PageTool interface {
	// ExtractPages writes the given 1-based pages of in to out, in page order.
	ExtractPages(in, out string, pages []int) error

	// Merge concatenates inputs into out.
	Merge(out string, inputs ...string) error

	// Rotate turns every page of in clockwise by degrees and writes out.
	Rotate(in, out string, degrees int) error

	PageCount(path string) (int, error)
}

// PDFCPU implements PageTool with pdfcpu.
type PDFCPU struct {
	log zerolog.Logger
}

// NewPDFCPU returns a PDFCPU that logs as the pdf-pages component.
func NewPDFCPU() *PDFCPU {
	return &PDFCPU{log: logger.WithComponent("pdf-pages")}
}

func (p *PDFCPU) ExtractPages(in, out string, pages []int) error {
	const op = "ExtractPages"

	if len(pages) == 0 {
		return WrapError(op, in, ErrNoPages, "")
	}
	count, err := p.PageCount(in)
	if err != nil {
		return err
	}
	selected := make([]string, 0, len(pages))
	for _, n := range pages {
		if n < 1 || n > count {
			return WrapError(op, in, ErrNoPages, fmt.Sprintf("page %d outside 1-%d", n, count))
		}
		selected = append(selected, strconv.Itoa(n))
	}

	if err := ensureDir(out); err != nil {
		return WrapError(op, out, err, "")
	}
	if err := api.TrimFile(in, out, selected, nil); err != nil {
		return WrapError(op, in, err, "pdfcpu trim")
	}
	p.log.Debug().Str("in", in).Str("out", out).Ints("pages", pages).Msg("Pages extracted")
	return nil
}

func (p *PDFCPU) Merge(out string, inputs ...string) error {
	const op = "Merge"

	if len(inputs) == 0 {
		return WrapError(op, out, ErrNoPages, "no input files")
	}
	if err := ensureDir(out); err != nil {
		return WrapError(op, out, err, "")
	}
	if err := api.MergeCreateFile(inputs, out, false, nil); err != nil {
		return WrapError(op, out, err, "pdfcpu merge")
	}
	p.log.Debug().Str("out", out).Strs("inputs", inputs).Msg("PDFs merged")
	return nil
}

func (p *PDFCPU) Rotate(in, out string, degrees int) error {
	const op = "Rotate"

	if degrees%90 != 0 {
		return WrapError(op, in, ErrInvalidRotation, fmt.Sprintf("%d degrees", degrees))
	}
	if err := ensureDir(out); err != nil {
		return WrapError(op, out, err, "")
	}
	if err := api.RotateFile(in, out, degrees, nil, nil); err != nil {
		return WrapError(op, in, err, "pdfcpu rotate")
	}
	p.log.Debug().Str("in", in).Str("out", out).Int("degrees", degrees).Msg("PDF rotated")
	return nil
}

func (p *PDFCPU) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, WrapError("PageCount", path, err, "")
	}
	return n, nil
}

func ensureDir(file string) error {
	return os.MkdirAll(filepath.Dir(file), 0o755)
}
