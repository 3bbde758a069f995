// Package renderer lays a digest summary out as a PDF document.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Config controls the page layout. Sizes are in points.
type Config struct {
	PageSize string
	Margin   float64
	FontSize float64
	Leading  float64
	Title    string
}

// DefaultConfig returns A4 portrait with 1 inch margins and 12pt body text.
func DefaultConfig() Config {
	return Config{
		PageSize: "A4",
		Margin:   72,
		FontSize: 12,
		Leading:  15,
	}
}

// PDF implements digest.Renderer with gofpdf. The core Helvetica font only
// covers cp1252, so text is translated and characters outside it become '?'.
type PDF struct {
	config Config
}

// NewPDF creates a PDF renderer.
func NewPDF(cfg Config) *PDF {
	return &PDF{config: cfg}
}

// Render writes text as justified paragraphs and returns the document bytes.
// Blank lines separate paragraphs; pages are added as the text overflows.
func (r *PDF) Render(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.config
	pdf := gofpdf.New("P", "pt", c.PageSize, "")
	pdf.SetMargins(c.Margin, c.Margin, c.Margin)
	pdf.SetAutoPageBreak(true, c.Margin)
	pdf.SetCreator("article-digest", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if c.Title != "" {
		pdf.SetTitle(c.Title, true)
		pdf.SetFont("Helvetica", "B", c.FontSize+4)
		pdf.MultiCell(0, c.Leading+4, tr(c.Title), "", "L", false)
		pdf.Ln(c.Leading)
	}

	pdf.SetFont("Helvetica", "", c.FontSize)
	for i, para := range paragraphs(text) {
		if i > 0 {
			pdf.Ln(c.Leading / 2)
		}
		pdf.MultiCell(0, c.Leading, tr(para), "", "J", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs splits on blank lines and folds other whitespace.
func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p := strings.Join(strings.Fields(block), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}
