package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/format"
)

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 12.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight

	nameColumnWidth = 95.0
	lineHeight      = 5.0
)

type pdfReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	rep Report
}

// PDF writes a landscape A4 document with the headline block and one table
// per category.
func PDF(w io.Writer, rep Report) error {
	doc := fpdf.New("L", "mm", "A4", "")
	r := &pdfReport{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
		rep: rep,
	}
	r.pdf.SetTitle(rep.Title, true)
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)

	r.addHeadline()
	for _, section := range rep.Sections {
		r.addSection(section)
	}

	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf report: %w", err)
	}
	return nil
}

func (r *pdfReport) addHeadline() {
	r.pdf.AddPage()
	r.pdf.SetFont("Arial", "B", 18)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, r.tr(r.rep.Title), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(contentWidth, 6, r.tr("Generado "+r.rep.Generated.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)

	h := r.rep.Headline
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, r.tr(h.Indicator), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for _, cmp := range h.Comparisons {
		if cmp.Value == nil {
			continue
		}
		text := fmt.Sprintf("%s: %s", cmp.Scenario.Label(), format.PercentPtr(cmp.Value))
		if cmp.Scenario != indicators.Baseline2022 {
			text += fmt.Sprintf(" (%s)", format.SignedPointsPtr(cmp.Variation))
		}
		r.pdf.CellFormat(contentWidth, 6, r.tr(text), "", 1, "L", false, 0, "")
	}
	if h.Range != nil {
		text := fmt.Sprintf("Rango de escenarios: %s, amplitud %s", h.Range.String(), format.Points(h.RangeWidth))
		r.pdf.CellFormat(contentWidth, 6, r.tr(text), "", 1, "L", false, 0, "")
	}

	r.pdf.Ln(2)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		r.tr("El rango de escenarios es el mínimo y el máximo de los dos pronósticos; no es un intervalo de confianza estadístico."),
		"", "L", false)
	r.pdf.Ln(4)
}

func (r *pdfReport) columns() []indicators.Scenario {
	return r.rep.Scenarios()
}

func (r *pdfReport) valueColumnWidth() float64 {
	// one value column per scenario, one variation column per forecast
	cols := len(r.columns())*2 - 1
	return (contentWidth - nameColumnWidth) / float64(cols)
}

func (r *pdfReport) addSection(section Section) {
	if len(section.Summaries) == 0 {
		return
	}
	r.pdf.Ln(4)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, r.tr(section.Category.String()), "", 1, "L", false, 0, "")
	r.addTableHeader()

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for _, sum := range section.Summaries {
		r.addRow(sum)
	}
}

func (r *pdfReport) addTableHeader() {
	colW := r.valueColumnWidth()
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(nameColumnWidth, 7, r.tr("Indicador"), "1", 0, "L", true, 0, "")
	for _, sc := range r.columns() {
		r.pdf.CellFormat(colW, 7, r.tr(sc.Label()), "1", 0, "C", true, 0, "")
		if sc != indicators.Baseline2022 {
			r.pdf.CellFormat(colW, 7, r.tr("Variación"), "1", 0, "C", true, 0, "")
		}
	}
	r.pdf.Ln(-1)
}

func (r *pdfReport) addRow(sum indicators.Summary) {
	colW := r.valueColumnWidth()
	// Names only use Latin-1 letters, whose widths match cp1252.
	lines := r.pdf.SplitText(sum.Indicator, nameColumnWidth-2)
	rowHeight := float64(max(len(lines), 1)) * lineHeight

	_, y := r.pdf.GetXY()
	if y+rowHeight > pageHeight-marginBottom {
		r.pdf.AddPage()
		r.addTableHeader()
		r.pdf.SetFont("Arial", "", 9)
		r.pdf.SetTextColor(50, 50, 50)
		_, y = r.pdf.GetXY()
	}

	r.pdf.MultiCell(nameColumnWidth, lineHeight, r.tr(sum.Indicator), "1", "L", false)
	r.pdf.SetXY(marginLeft+nameColumnWidth, y)
	for _, sc := range r.columns() {
		cmp, _ := sum.Comparison(sc)
		r.pdf.CellFormat(colW, rowHeight, r.tr(format.PercentPtr(cmp.Value)), "1", 0, "C", false, 0, "")
		if sc != indicators.Baseline2022 {
			r.pdf.CellFormat(colW, rowHeight, r.tr(format.SignedPointsPtr(cmp.Variation)), "1", 0, "C", false, 0, "")
		}
	}
	r.pdf.SetXY(marginLeft, y+rowHeight)
}
