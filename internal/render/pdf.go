package render

import (
	"html"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF lays the digest out on A4 pages: a heading per topic, the
// article title as a link, its bullets and statistic.
func WritePDF(d Digest, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(d.title(), true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(d.title()), "", 1, "L", false, 0, "")
	if !d.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Generated "+GeneratedStamp(d.GeneratedAt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(d.Featured) > 0 {
		heading(pdf, tr, "Featured")
		for _, f := range d.Featured {
			pdf.SetFont("Helvetica", "", 11)
			linkLine(pdf, tr, f.Title, f.URL)
			if f.Description != "" {
				pdf.SetFont("Helvetica", "", 9)
				pdf.MultiCell(0, 4.5, tr(f.Description), "", "L", false)
			}
			pdf.Ln(1)
		}
		pdf.Ln(3)
	}

	for _, s := range d.Topics {
		heading(pdf, tr, s.Name)
		for _, r := range s.Records {
			pdf.SetFont("Helvetica", "B", 12)
			linkLine(pdf, tr, r.Title, r.URL)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 5, tr(byline(r.Source, r.ReadingMinutes)), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			for _, bullet := range r.Explanation.Plain() {
				pdf.MultiCell(0, 5.5, tr("- "+bullet), "", "L", false)
			}
			if r.HasStatistic {
				pdf.SetFont("Helvetica", "B", 10)
				pdf.MultiCell(0, 5, tr("By the numbers: "+html.UnescapeString(r.Statistic)), "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4, tr(strings.TrimPrefix(strings.TrimSpace(footer(d.Meta)), "---\n")), "", "L", false)
	return pdf.OutputFileAndClose(outPath)
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr(text), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func linkLine(pdf *gofpdf.Fpdf, tr func(string) string, text, url string) {
	text = tr(html.UnescapeString(strings.TrimSpace(text)))
	if url == "" {
		pdf.MultiCell(0, 6, text, "", "L", false)
		return
	}
	pdf.WriteLinkString(6, text, url)
	pdf.Ln(6)
}
