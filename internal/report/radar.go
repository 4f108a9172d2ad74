package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/format"
)

const (
	radarWidth   = 900
	radarHeight  = 560
	radarRadius  = 190
	radarRings   = 4
	radarLegendX = 20
)

type radarColor struct {
	stroke string
	fill   string
}

var radarColors = map[indicators.Scenario]radarColor{
	indicators.Baseline2022:    {"#6366f1", "rgba(99, 102, 241, 0.3)"},
	indicators.Optimistic2024:  {"#10b981", "rgba(16, 185, 129, 0.3)"},
	indicators.Restrictive2024: {"#ef4444", "rgba(239, 68, 68, 0.3)"},
}

type radarAxis struct {
	Name           string
	X, Y           string
	LabelX, LabelY string
	Anchor         string
}

type radarTick struct {
	X, Y string
	Text string
}

type radarPolygon struct {
	Label   string
	Points  string
	Stroke  string
	Fill    string
	LegendY string
	SwatchY string
}

type radarView struct {
	Width, Height int
	CX, CY        string
	Rings         []string
	Ticks         []radarTick
	Axes          []radarAxis
	Polygons      []radarPolygon
	LegendX       int
	LegendTextX   int
}

// newRadarView lays out the radar as SVG coordinates. It returns nil when
// there are too few axes to draw a polygon.
func newRadarView(r indicators.Radar) *radarView {
	n := len(r.Axes)
	if n < 3 || r.Max <= 0 {
		return nil
	}
	cx, cy := float64(radarWidth)/2, float64(radarHeight)/2
	point := func(i int, frac float64) (float64, float64) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		return cx + frac*radarRadius*math.Cos(angle), cy + frac*radarRadius*math.Sin(angle)
	}
	polygon := func(fracs []float64) string {
		pts := make([]string, len(fracs))
		for i, f := range fracs {
			x, y := point(i, f)
			pts[i] = coord(x) + "," + coord(y)
		}
		return strings.Join(pts, " ")
	}

	v := &radarView{
		Width:       radarWidth,
		Height:      radarHeight,
		CX:          coord(cx),
		CY:          coord(cy),
		LegendX:     radarLegendX,
		LegendTextX: radarLegendX + 18,
	}
	for ring := 1; ring <= radarRings; ring++ {
		frac := float64(ring) / radarRings
		fracs := make([]float64, n)
		for i := range fracs {
			fracs[i] = frac
		}
		v.Rings = append(v.Rings, polygon(fracs))
		_, y := point(0, frac)
		v.Ticks = append(v.Ticks, radarTick{X: coord(cx + 4), Y: coord(y - 3), Text: format.Percent(r.Max * frac)})
	}
	for i, name := range r.Axes {
		x, y := point(i, 1)
		lx, ly := point(i, 1.08)
		anchor := "middle"
		switch {
		case lx > cx+1:
			anchor = "start"
		case lx < cx-1:
			anchor = "end"
		}
		v.Axes = append(v.Axes, radarAxis{
			Name:   name,
			X:      coord(x),
			Y:      coord(y),
			LabelX: coord(lx),
			LabelY: coord(ly + 4),
			Anchor: anchor,
		})
	}
	for i, series := range r.Series {
		fracs := make([]float64, len(series.Values))
		for j, value := range series.Values {
			fracs[j] = value / r.Max
		}
		color := radarColors[series.Scenario]
		v.Polygons = append(v.Polygons, radarPolygon{
			Label:   series.Scenario.Label(),
			Points:  polygon(fracs),
			Stroke:  color.stroke,
			Fill:    color.fill,
			SwatchY: coord(float64(20 + 20*i)),
			LegendY: coord(float64(31 + 20*i)),
		})
	}
	return v
}

func coord(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
