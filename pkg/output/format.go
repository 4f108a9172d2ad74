// Package output provides utilities for formatting and displaying indicator
// comparisons.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// group is the consecutive rows of one indicator.
type group struct {
	category  indicators.Category
	indicator string
	header    bool
	rows      []indicators.Row
}

func groupRows(rows []indicators.Row) []group {
	var groups []group
	for _, r := range rows {
		if n := len(groups); n > 0 && groups[n-1].indicator == r.Indicator {
			groups[n-1].rows = append(groups[n-1].rows, r)
			continue
		}
		groups = append(groups, group{category: r.Category, indicator: r.Indicator, header: r.Header, rows: []indicators.Row{r}})
	}
	return groups
}

type printer struct {
	p *message.Printer
}

func newPrinter(tag language.Tag) printer {
	return printer{p: message.NewPrinter(tag)}
}

func (pr printer) percent(v *float64) string {
	if v == nil {
		return format.Missing
	}
	return pr.p.Sprintf("%.1f%%", *v)
}

func (pr printer) points(v *float64) string {
	if v == nil {
		return format.Missing
	}
	if format.Decimal(*v) == "0.0" {
		return pr.p.Sprintf("%.1f pp", 0.0)
	}
	return pr.p.Sprintf("%+.1f pp", *v)
}

// PrettyFormat outputs one human-readable table per category. The
// variation column is omitted for the 2022 baseline.
func PrettyFormat(w io.Writer, rows []indicators.Row, tag language.Tag) error {
	renderer := lipgloss.NewRenderer(w)
	titleStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f77b4"))
	headerStyle := renderer.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := renderer.NewStyle().Padding(0, 1)
	pr := newPrinter(tag)

	groups := groupRows(rows)
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No indicators to display")
		return err
	}

	headers := []string{"Indicador"}
	for _, r := range groups[0].rows {
		headers = append(headers, r.Scenario.Label())
		if r.Scenario != indicators.Baseline2022 {
			headers = append(headers, "Variación")
		}
	}

	flush := func(title string, body [][]string) error {
		if len(body) == 0 {
			return nil
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(body...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		_, err := fmt.Fprintf(w, "%s\n%s\n\n", titleStyle.Render("--- "+title+" ---"), t.Render())
		return err
	}

	var body [][]string
	current := groups[0].category
	for _, g := range groups {
		if g.category != current {
			if err := flush(current.String(), body); err != nil {
				return err
			}
			body = nil
			current = g.category
		}
		if g.header {
			continue
		}
		line := []string{g.indicator}
		for _, r := range g.rows {
			line = append(line, pr.percent(r.Value))
			if r.Scenario != indicators.Baseline2022 {
				line = append(line, pr.points(r.Variation))
			}
		}
		body = append(body, line)
	}
	return flush(current.String(), body)
}

// Headline prints the key metrics block for the headline indicator.
func Headline(w io.Writer, h indicators.Headline, tag language.Tag) error {
	pr := newPrinter(tag)
	if _, err := fmt.Fprintf(w, "--- %s ---\n", h.Indicator); err != nil {
		return err
	}
	for _, cmp := range h.Comparisons {
		if cmp.Value == nil {
			continue
		}
		line := fmt.Sprintf("%-20s %s", cmp.Scenario.Label()+":", pr.percent(cmp.Value))
		if cmp.Scenario != indicators.Baseline2022 && cmp.Variation != nil {
			line += fmt.Sprintf("  %s %s", trendMarker(cmp.Trend), pr.points(cmp.Variation))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if h.Range != nil {
		width := h.RangeWidth
		if _, err := fmt.Fprintf(w, "%-20s %s (%s)\n", "Rango de escenarios:", h.Range.String(), pr.points(&width)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "Nota: mínimo y máximo de los dos pronósticos, no es un intervalo de confianza estadístico."); err != nil {
			return err
		}
	}
	return nil
}

func trendMarker(t indicators.Trend) string {
	switch t {
	case indicators.TrendDown:
		return "▼"
	case indicators.TrendUp:
		return "▲"
	default:
		return "="
	}
}

// CsvHeader is the column order of CsvFormat.
var CsvHeader = []string{"category", "indicator", "scenario", "value", "variation"}

// CsvFormat outputs in comma-separated value format, one line per
// (indicator, scenario). Absent values are left empty.
func CsvFormat(w io.Writer, rows []indicators.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CsvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Category.Key(),
			r.Indicator,
			string(r.Scenario),
			format.DecimalPtr(r.Value),
			format.DecimalPtr(r.Variation),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the rows as an indented JSON array.
func JSONFormat(w io.Writer, rows []indicators.Row) error {
	if rows == nil {
		rows = []indicators.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
