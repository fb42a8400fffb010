package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 7.0
	pdfBodySize   = 10.0
	pdfFont       = "Helvetica"
)

// Pdf renders md as an A4 PDF with the core Helvetica font. Characters
// outside cp1252 (e.g. Japanese) cannot be drawn by the core fonts and come
// out as placeholders.
func Pdf(title, md string) ([]byte, error) {
	pdf := renderPdf(title, md)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPdf(title, md string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	write := func(style string, size, gap float64, text string) {
		pdf.SetFont(pdfFont, style, size)
		pdf.MultiCell(0, pdfLineHeight, tr(text), "", "L", false)
		if gap > 0 {
			pdf.Ln(gap)
		}
	}

	if title != "" {
		write("B", pdfHeadingSize(1), 5, title)
	}
	for _, b := range Parse(md) {
		switch b.Type {
		case BlockHeading:
			write("B", pdfHeadingSize(b.Level), 5, b.Text)
		case BlockBullet:
			write("", pdfBodySize, 0, "  - "+b.Text)
		default:
			write("", pdfBodySize, 2, b.Text)
		}
	}
	return pdf
}

func pdfHeadingSize(level int) float64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 14
	default:
		return 12
	}
}
