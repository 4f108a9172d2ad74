package indicators

import (
	"fmt"

	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/iwvelando/poverty-forecast/pkg/format"
	"github.com/iwvelando/poverty-forecast/pkg/mathutil"
)

// Trend is the direction of a variation.
type Trend string

const (
	TrendDown Trend = "down"
	TrendUp   Trend = "up"
	TrendFlat Trend = "flat"
)

// TrendOf classifies a variation in percentage points.
func TrendOf(variation float64) Trend {
	switch {
	case mathutil.IsZero(variation):
		return TrendFlat
	case variation < 0:
		return TrendDown
	default:
		return TrendUp
	}
}

// Range is the min/max spread of the two point forecasts. It is not a
// statistical confidence interval and must not be labelled as one.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Width is the spread between the forecasts in percentage points.
func (r Range) Width() float64 {
	return mathutil.Round(r.High - r.Low)
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Low-constants.ValueTolerance && v <= r.High+constants.ValueTolerance
}

func (r Range) String() string {
	return format.Range(r.Low, r.High)
}

// ScenarioRange returns (min, max) of the optimistic and restrictive
// forecasts. Either order of the two columns is valid input.
func ScenarioRange(ind Indicator) (Range, bool) {
	opt, okOpt := ind.Value(Optimistic2024)
	res, okRes := ind.Value(Restrictive2024)
	if !okOpt || !okRes {
		return Range{}, false
	}
	return Range{Low: mathutil.Min(opt, res), High: mathutil.Max(opt, res)}, true
}

// Comparator answers value and variation queries over a dataset and an
// optional session of real 2024 entries.
type Comparator struct {
	dataset Dataset
	session *Session
}

// NewComparator builds a comparator. A nil session means no real values.
func NewComparator(d Dataset, s *Session) *Comparator {
	return &Comparator{dataset: d, session: s}
}

// Dataset returns the underlying table.
func (c *Comparator) Dataset() Dataset {
	return c.dataset
}

// Value returns an indicator's value under a scenario.
func (c *Comparator) Value(name string, s Scenario) (float64, bool) {
	ind, ok := c.dataset.Find(name)
	if !ok {
		return 0, false
	}
	return c.value(ind, s)
}

func (c *Comparator) value(ind Indicator, s Scenario) (float64, bool) {
	if s == Real2024 {
		if c.session == nil || ind.Header {
			return 0, false
		}
		return c.session.Actual(ind.Name)
	}
	return ind.Value(s)
}

// Variation returns value(to) - value(from) in percentage points. ok is
// false, never a zero variation, when either side is absent.
func (c *Comparator) Variation(name string, from, to Scenario) (float64, bool) {
	ind, ok := c.dataset.Find(name)
	if !ok {
		return 0, false
	}
	return c.variation(ind, from, to)
}

func (c *Comparator) variation(ind Indicator, from, to Scenario) (float64, bool) {
	a, okA := c.value(ind, from)
	b, okB := c.value(ind, to)
	if !okA || !okB {
		return 0, false
	}
	return mathutil.Round(b - a), true
}

// ScenarioRange looks an indicator up by name and returns its forecast range.
func (c *Comparator) ScenarioRange(name string) (Range, bool) {
	ind, ok := c.dataset.Find(name)
	if !ok {
		return Range{}, false
	}
	return ScenarioRange(ind)
}

// Comparison is one scenario's value and its variation from 2022.
type Comparison struct {
	Scenario  Scenario `json:"scenario"`
	Value     *float64 `json:"value"`
	Variation *float64 `json:"variation"`
	Trend     Trend    `json:"trend,omitempty"`
}

// Summary gathers every scenario of a single indicator.
type Summary struct {
	Category    Category     `json:"category"`
	Indicator   string       `json:"indicator"`
	Header      bool         `json:"header,omitempty"`
	Comparisons []Comparison `json:"comparisons"`
	Range       *Range       `json:"range,omitempty"`
}

// Comparison returns the entry for one scenario.
func (s Summary) Comparison(sc Scenario) (Comparison, bool) {
	for _, cmp := range s.Comparisons {
		if cmp.Scenario == sc {
			return cmp, true
		}
	}
	return Comparison{}, false
}

// ActualInRange reports whether the real 2024 value falls inside the
// forecast range. known is false when either is missing.
func (s Summary) ActualInRange() (inside bool, known bool) {
	actual, ok := s.Comparison(Real2024)
	if !ok || actual.Value == nil || s.Range == nil {
		return false, false
	}
	return s.Range.Contains(*actual.Value), true
}

// Summarize compares one indicator across the given scenarios, all four
// when none are given.
func (c *Comparator) Summarize(name string, scenarios ...Scenario) (Summary, error) {
	ind, ok := c.dataset.Find(name)
	if !ok {
		return Summary{}, fmt.Errorf("summarize %q: %w", name, ErrUnknownIndicator)
	}
	return c.summarize(ind, scenarios), nil
}

func (c *Comparator) summarize(ind Indicator, scenarios []Scenario) Summary {
	if len(scenarios) == 0 {
		scenarios = Scenarios()
	}
	sum := Summary{Category: ind.Category, Indicator: ind.Name, Header: ind.Header}
	for _, sc := range scenarios {
		cmp := Comparison{Scenario: sc}
		if v, ok := c.value(ind, sc); ok {
			cmp.Value = &v
		}
		if v, ok := c.variation(ind, Baseline2022, sc); ok {
			cmp.Variation = &v
			cmp.Trend = TrendOf(v)
		}
		sum.Comparisons = append(sum.Comparisons, cmp)
	}
	if r, ok := ScenarioRange(ind); ok {
		sum.Range = &r
	}
	return sum
}

// Summaries summarizes every row of the dataset, or of the given
// categories, in declared order.
func (c *Comparator) Summaries(categories ...Category) []Summary {
	return c.summariesFor(categories, nil)
}

func containsCategory(list []Category, c Category) bool {
	for _, candidate := range list {
		if candidate == c {
			return true
		}
	}
	return false
}

// Row is the flat (category, indicator, scenario, value, variation) tuple
// consumed by renderers.
type Row struct {
	Category  Category `json:"category"`
	Indicator string   `json:"indicator"`
	Header    bool     `json:"header,omitempty"`
	Scenario  Scenario `json:"scenario"`
	Value     *float64 `json:"value"`
	Variation *float64 `json:"variation"`
}

// Rows flattens every indicator across the given scenarios, all four when
// none are given. Header rows are included with absent values.
func (c *Comparator) Rows(scenarios ...Scenario) []Row {
	return flatten(c.summariesFor(nil, scenarios))
}

// CategoryRows is Rows restricted to one category.
func (c *Comparator) CategoryRows(cat Category, scenarios ...Scenario) []Row {
	return flatten(c.summariesFor([]Category{cat}, scenarios))
}

func (c *Comparator) summariesFor(categories []Category, scenarios []Scenario) []Summary {
	var out []Summary
	for _, ind := range c.dataset.indicators {
		if len(categories) > 0 && !containsCategory(categories, ind.Category) {
			continue
		}
		out = append(out, c.summarize(ind, scenarios))
	}
	return out
}

func flatten(summaries []Summary) []Row {
	var rows []Row
	for _, sum := range summaries {
		for _, cmp := range sum.Comparisons {
			rows = append(rows, Row{
				Category:  sum.Category,
				Indicator: sum.Indicator,
				Header:    sum.Header,
				Scenario:  cmp.Scenario,
				Value:     cmp.Value,
				Variation: cmp.Variation,
			})
		}
	}
	return rows
}

// Headline is the key-metrics block for the headline poverty indicator.
type Headline struct {
	Summary
	// Spread between the two forecasts in percentage points.
	RangeWidth float64 `json:"rangeWidth"`
}

// Headline summarizes "Población en pobreza".
func (c *Comparator) Headline() (Headline, error) {
	sum, err := c.Summarize(constants.HeadlineIndicator)
	if err != nil {
		return Headline{}, err
	}
	h := Headline{Summary: sum}
	if sum.Range != nil {
		h.RangeWidth = sum.Range.Width()
	}
	return h, nil
}

// Heatmap is the variation-from-2022 matrix over data rows.
type Heatmap struct {
	Scenarios  []Scenario   `json:"scenarios"`
	Indicators []string     `json:"indicators"`
	Cells      [][]*float64 `json:"cells"`
}

// Heatmap builds the matrix for both forecasts, adding a real 2024 column
// once the session holds any value.
func (c *Comparator) Heatmap() Heatmap {
	scenarios := ForecastScenarios()
	if c.session != nil && c.session.Len() > 0 {
		scenarios = append(scenarios, Real2024)
	}
	hm := Heatmap{Scenarios: scenarios}
	for _, ind := range c.dataset.indicators {
		if ind.Header {
			continue
		}
		cells := make([]*float64, len(scenarios))
		for i, sc := range scenarios {
			if v, ok := c.variation(ind, Baseline2022, sc); ok {
				cells[i] = &v
			}
		}
		hm.Indicators = append(hm.Indicators, ind.Name)
		hm.Cells = append(hm.Cells, cells)
	}
	return hm
}

// Extent returns the largest absolute variation in the matrix, used to
// scale colours symmetrically around zero.
func (h Heatmap) Extent() float64 {
	var extent float64
	for _, row := range h.Cells {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			if v := *cell; v > extent {
				extent = v
			} else if -v > extent {
				extent = -v
			}
		}
	}
	return extent
}

// RadarSeries is one scenario read across the radar axes.
type RadarSeries struct {
	Scenario Scenario  `json:"scenario"`
	Values   []float64 `json:"values"`
}

// Radar compares the social deprivation indicators under the baseline and
// both forecasts. Max is the radial axis limit, 10% above the largest value.
type Radar struct {
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
	Max    float64       `json:"max"`
}

// Radar builds the series for every DeprivationIndicators row that has a
// value under each scenario.
func (c *Comparator) Radar() Radar {
	scenarios := []Scenario{Baseline2022, Optimistic2024, Restrictive2024}
	radar := Radar{}
	for _, sc := range scenarios {
		radar.Series = append(radar.Series, RadarSeries{Scenario: sc})
	}

	var peak float64
	for _, ind := range c.dataset.indicators {
		if ind.Header || ind.Category != DeprivationIndicators {
			continue
		}
		values := make([]float64, len(scenarios))
		complete := true
		for i, sc := range scenarios {
			v, ok := c.value(ind, sc)
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}
		radar.Axes = append(radar.Axes, ind.Name)
		for i, v := range values {
			radar.Series[i].Values = append(radar.Series[i].Values, v)
			peak = mathutil.Max(peak, v)
		}
	}
	radar.Max = peak * 1.1
	return radar
}
