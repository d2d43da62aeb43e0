// Package coversheet produces the one-page PDF summary filed in front of
// each invoice. A DOCX template with {Field Name} placeholders is filled
// with the invoice fields and converted to PDF by LibreOffice.
package coversheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukasjarosch/go-docx"
	"github.com/rs/zerolog"

	"invoicefiler/internal/logger"
)

// DefaultSoffice is the LibreOffice binary looked up on PATH.
const DefaultSoffice = "soffice"

var (
	// ErrTemplate is returned when the DOCX template cannot be read or filled.
	ErrTemplate = errors.New("cover sheet template failed")

	// ErrConvert is returned when the DOCX could not be converted to PDF.
	ErrConvert = errors.New("cover sheet conversion failed")
)

// Renderer writes a cover sheet PDF for a set of fields.
type Renderer interface {
	Render(ctx context.Context, fields map[string]string, outPDF string) error
}

// DocxRenderer fills a DOCX template and converts it with soffice.
type DocxRenderer struct {
	Template string
	Soffice  string
	Runner   Runner

	log zerolog.Logger
}

// NewDocxRenderer creates a renderer for template. An empty soffice uses DefaultSoffice.
func NewDocxRenderer(template, soffice string) *DocxRenderer {
	if soffice == "" {
		soffice = DefaultSoffice
	}
	return &DocxRenderer{
		Template: template,
		Soffice:  soffice,
		Runner:   ExecRunner{},
		log:      logger.WithComponent("coversheet"),
	}
}

// Render fills the template into a scratch folder next to outPDF, converts
// it, and moves the PDF to outPDF.
func (r *DocxRenderer) Render(ctx context.Context, fields map[string]string, outPDF string) error {
	if err := os.MkdirAll(filepath.Dir(outPDF), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	scratch, err := os.MkdirTemp(filepath.Dir(outPDF), ".coversheet-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	defer os.RemoveAll(scratch)

	name := strings.TrimSuffix(filepath.Base(outPDF), filepath.Ext(outPDF))
	filled := filepath.Join(scratch, name+".docx")
	if err := Fill(r.Template, filled, fields); err != nil {
		return err
	}
	if err := r.Convert(ctx, filled, outPDF); err != nil {
		return err
	}

	r.log.Debug().Str("out", outPDF).Int("fields", len(fields)).Msg("Cover sheet rendered")
	return nil
}

// Fill replaces every {key} placeholder in template and writes out.
func Fill(template, out string, fields map[string]string) error {
	doc, err := docx.Open(template)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrTemplate, template, err)
	}
	defer doc.Close()

	if err := doc.ReplaceAll(Placeholders(fields)); err != nil {
		return fmt.Errorf("%w: replace placeholders: %v", ErrTemplate, err)
	}
	if err := doc.WriteToFile(out); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrTemplate, out, err)
	}
	return nil
}

// Placeholders converts fields to the template replacement map.
func Placeholders(fields map[string]string) docx.PlaceholderMap {
	m := make(docx.PlaceholderMap, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return m
}

// Convert turns a DOCX into outPDF with a headless LibreOffice.
func (r *DocxRenderer) Convert(ctx context.Context, docxPath, outPDF string) error {
	outDir := filepath.Dir(docxPath)
	args := []string{"--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath}

	_, stderr, err := r.Runner.Run(ctx, r.Soffice, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrConvert, r.Soffice, err, strings.TrimSpace(string(stderr)))
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("%w: expected output %s: %v", ErrConvert, produced, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPDF), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrConvert, err)
	}
	if produced == outPDF {
		return nil
	}
	if err := os.Rename(produced, outPDF); err != nil {
		return fmt.Errorf("%w: move %s: %v", ErrConvert, produced, err)
	}
	return nil
}
