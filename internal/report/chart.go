package report

import (
	"bytes"
	"fmt"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/mathutil"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth      = 520
	chartHeight     = 300
	chartBarWidth   = 90
	chartBarSpacing = 30
	// Fraction of the value spread added above and below the bars.
	chartPadding = 0.2
)

var scenarioColors = map[indicators.Scenario]string{
	indicators.Baseline2022:    "7f7f7f",
	indicators.Optimistic2024:  "2ca02c",
	indicators.Restrictive2024: "ff7f0e",
	indicators.Real2024:        "1f77b4",
}

// axisRange pads the bar values by chartPadding on both sides, floored at
// zero since every value is a percentage.
func axisRange(values []float64) (float64, float64) {
	low, high, ok := mathutil.Bounds(values)
	if !ok {
		return 0, 1
	}
	pad := (high - low) * chartPadding
	if mathutil.IsZero(pad) {
		pad = high * chartPadding
	}
	if mathutil.IsZero(pad) {
		pad = 1
	}
	low -= pad
	if low < 0 {
		low = 0
	}
	return low, high + pad
}

// barChartSVG draws one bar per scenario that has a value.
func barChartSVG(sum indicators.Summary, scenarios []indicators.Scenario) ([]byte, error) {
	var bars []chart.Value
	var values []float64
	for _, sc := range scenarios {
		cmp, ok := sum.Comparison(sc)
		if !ok || cmp.Value == nil {
			continue
		}
		color := drawing.ColorFromHex(scenarioColors[sc])
		bars = append(bars, chart.Value{
			Label: sc.Label(),
			Value: *cmp.Value,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		values = append(values, *cmp.Value)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no values to chart for %q", sum.Indicator)
	}

	low, high := axisRange(values)
	graph := chart.BarChart{
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: low, Max: high},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart for %q: %w", sum.Indicator, err)
	}
	return buf.Bytes(), nil
}
