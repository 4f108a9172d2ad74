package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/format"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var pageTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"percent": format.PercentPtr,
	"points":  format.SignedPointsPtr,
	"label":   func(s indicators.Scenario) string { return s.Label() },
}).ParseFS(templateFiles, "templates/report.html.tmpl"))

type htmlChart struct {
	Summary indicators.Summary
	SVG     template.HTML
}

type htmlSection struct {
	Title  string
	Charts []htmlChart
}

type heatCell struct {
	Text  string
	Style template.CSS
}

type heatRow struct {
	Indicator string
	Cells     []heatCell
}

type htmlPage struct {
	Report    Report
	Scenarios []indicators.Scenario
	Cards     []indicators.Comparison
	Sections  []htmlSection
	HeatHead  []indicators.Scenario
	HeatRows  []heatRow
	Radar     *radarView
}

// HTML writes a standalone page with the headline cards, one bar chart per
// indicator, the social deprivation radar, the full data table and the
// variation heatmap.
func HTML(w io.Writer, rep Report) error {
	page := htmlPage{
		Report:    rep,
		Scenarios: rep.Scenarios(),
		HeatHead:  rep.Heatmap.Scenarios,
		Radar:     newRadarView(rep.Radar),
	}
	for _, cmp := range rep.Headline.Comparisons {
		if cmp.Value != nil {
			page.Cards = append(page.Cards, cmp)
		}
	}
	for _, section := range rep.Sections {
		hs := htmlSection{Title: section.Category.String()}
		for _, sum := range section.Summaries {
			svg, err := barChartSVG(sum, page.Scenarios)
			if err != nil {
				return err
			}
			hs.Charts = append(hs.Charts, htmlChart{Summary: sum, SVG: template.HTML(svg)})
		}
		page.Sections = append(page.Sections, hs)
	}

	extent := rep.Heatmap.Extent()
	for i, name := range rep.Heatmap.Indicators {
		row := heatRow{Indicator: name}
		for _, cell := range rep.Heatmap.Cells[i] {
			row.Cells = append(row.Cells, heatCell{Text: format.SignedPointsPtr(cell), Style: heatStyle(cell, extent)})
		}
		page.HeatRows = append(page.HeatRows, row)
	}

	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

// heatStyle colours increases red and decreases green, with opacity scaled
// by the magnitude relative to the matrix extent.
func heatStyle(v *float64, extent float64) template.CSS {
	if v == nil || extent == 0 || math.Abs(*v) < 0.05 {
		return template.CSS("background-color: #f4f4f4")
	}
	alpha := 0.15 + 0.75*math.Abs(*v)/extent
	if *v > 0 {
		return template.CSS(fmt.Sprintf("background-color: rgba(214, 39, 40, %.2f)", alpha))
	}
	return template.CSS(fmt.Sprintf("background-color: rgba(44, 160, 44, %.2f)", alpha))
}
