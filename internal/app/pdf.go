package app

import (
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/goseo/internal/result"
)

// writeResultPDF renders the artifact as a short printable report: the final
// headings as a numbered list followed by the keyword suggestions per term.
// The core fonts are Latin-1 only, so text goes through the UTF-8 translator.
func writeResultPDF(a result.Artifact, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("SEO results", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "SEO results", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.WriteLinkString(5, tr(a.URL), a.URL)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Final headings", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for i, h := range a.FinalHeadings {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, h)), "", "L", false)
	}
	pdf.Ln(4)

	terms := make([]string, 0, len(a.SEOKeywords))
	for t := range a.SEOKeywords {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Keyword suggestions", "", 1, "L", false, 0, "")
	for _, t := range terms {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 5, tr(t), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		if len(a.SEOKeywords[t]) == 0 {
			pdf.MultiCell(0, 5, "  (none)", "", "L", false)
		}
		for _, s := range a.SEOKeywords[t] {
			pdf.MultiCell(0, 5, tr("  - "+s), "", "L", false)
		}
	}
	return pdf.OutputFileAndClose(outPath)
}
