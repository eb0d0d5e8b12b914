package app

import (
	"math"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidthMM = 297.0 // A4 landscape
	pdfMarginMM    = 10.0
	pdfMaxFontPt   = 10.0
	pdfMinFontPt   = 2.0
	// Courier advances 600/1000 em per glyph; 1pt = 0.3528mm.
	courierAdvance = 0.6 * 0.3528
)

// writeGridPDF renders rows in Courier on A4 landscape pages, shrinking the
// font so the widest row fits the page. Courier is a core font, so runes
// outside Windows-1252 come out as '.'.
func writeGridPDF(rows []string, width int, outPath string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(true, pdfMarginMM)

	size := pdfMaxFontPt
	if width > 0 {
		fit := (pdfPageWidthMM - 2*pdfMarginMM) / (float64(width) * courierAdvance)
		size = math.Max(pdfMinFontPt, math.Min(pdfMaxFontPt, fit))
	}
	lineHeight := size * 0.3528 * 1.15

	pdf.SetFont("Courier", "", size)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range rows {
		pdf.CellFormat(0, lineHeight, tr(row), "", 1, "L", false, 0, "")
	}
	return pdf.OutputFileAndClose(outPath)
}
