// Package indicators holds the fixed 2022 baseline and 2024 forecast table
// of poverty indicators and the comparisons derived from it.
package indicators

import "strings"

// Indicator is one named metric. Header rows label a category and carry no
// values.
type Indicator struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Header      bool     `json:"header,omitempty"`
	Baseline    *float64 `json:"baseline2022,omitempty"`
	Optimistic  *float64 `json:"optimistic2024,omitempty"`
	Restrictive *float64 `json:"restrictive2024,omitempty"`
}

// Value returns the fixed value for a scenario. Real 2024 values live in a
// Session and are never held by the Indicator.
func (i Indicator) Value(s Scenario) (float64, bool) {
	var v *float64
	switch s {
	case Baseline2022:
		v = i.Baseline
	case Optimistic2024:
		v = i.Optimistic
	case Restrictive2024:
		v = i.Restrictive
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (i Indicator) clone() Indicator {
	out := i
	out.Baseline = copyValue(i.Baseline)
	out.Optimistic = copyValue(i.Optimistic)
	out.Restrictive = copyValue(i.Restrictive)
	return out
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type entry struct {
	category Category
	name     string
	header   bool
	// baseline 2022, optimistic 2024, restrictive 2024
	values [3]float64
}

func header(c Category, name string) entry {
	return entry{category: c, name: name, header: true}
}

func row(c Category, name string, baseline, optimistic, restrictive float64) entry {
	return entry{category: c, name: name, values: [3]float64{baseline, optimistic, restrictive}}
}

// Transcribed survey table. Several vulnerable-population rows have an
// optimistic value above the restrictive one.
var table = [...]entry{
	header(Poverty, "Pobreza"),
	row(Poverty, "Población en pobreza", 16.0, 12.2, 15.1),
	row(Poverty, "Población en pobreza moderada", 15.0, 11.5, 14.3),
	row(Poverty, "Población en pobreza extrema", 1.1, 0.7, 0.8),
	row(Poverty, "Población vulnerable por carencias sociales", 28.4, 34.6, 31.9),
	row(Poverty, "Población vulnerable por ingresos", 9.6, 6.7, 8.6),
	row(Poverty, "Población no pobre y no vulnerable", 45.9, 46.6, 44.4),

	header(SocialDeprivation, "Privación social"),
	row(SocialDeprivation, "Población con al menos una carencia social", 44.5, 46.8, 47.0),
	row(SocialDeprivation, "Población con al menos tres carencias sociales", 8.8, 6.1, 6.0),

	header(DeprivationIndicators, "Indicadores de carencia social"),
	row(DeprivationIndicators, "Rezago educativo", 13.5, 13.7, 13.7),
	row(DeprivationIndicators, "Carencia por acceso a los servicios de salud", 22.8, 16.1, 16.2),
	row(DeprivationIndicators, "Carencia por acceso a la seguridad social", 27.2, 27.2, 27.2),
	row(DeprivationIndicators, "Carencia por calidad y espacios de la vivienda", 3.2, 3.2, 3.2),
	row(DeprivationIndicators, "Carencia por acceso a los servicios básicos de la vivienda", 3.8, 3.8, 3.8),
	row(DeprivationIndicators, "Carencia por acceso a la alimentación nutritiva y de calidad", 11.7, 11.7, 11.7),

	header(EconomicWellbeing, "Bienestar económico"),
	row(EconomicWellbeing, "Población con ingreso inferior a la linea de pobreza extrema por ingresos", 3.8, 2.8, 3.4),
	row(EconomicWellbeing, "Población con ingreso inferior a la linea de pobreza por ingresos", 25.7, 18.9, 23.7),
}

// Dataset is the ordered, read-only indicator table.
type Dataset struct {
	indicators []Indicator
	index      map[string]int
}

// LoadDataset builds the indicator table in declared order. Every call
// returns an independent copy.
func LoadDataset() Dataset {
	d := Dataset{
		indicators: make([]Indicator, 0, len(table)),
		index:      make(map[string]int, len(table)),
	}
	for _, e := range table {
		ind := Indicator{Name: e.name, Category: e.category, Header: e.header}
		if !e.header {
			ind.Baseline = copyValue(&e.values[0])
			ind.Optimistic = copyValue(&e.values[1])
			ind.Restrictive = copyValue(&e.values[2])
		}
		d.index[e.name] = len(d.indicators)
		d.indicators = append(d.indicators, ind)
	}
	return d
}

// Len is the number of rows, headers included.
func (d Dataset) Len() int {
	return len(d.indicators)
}

// Indicators returns a copy of every row in declared order.
func (d Dataset) Indicators() []Indicator {
	out := make([]Indicator, len(d.indicators))
	for i, ind := range d.indicators {
		out[i] = ind.clone()
	}
	return out
}

// DataRows returns the rows that carry values.
func (d Dataset) DataRows() []Indicator {
	var out []Indicator
	for _, ind := range d.indicators {
		if !ind.Header {
			out = append(out, ind.clone())
		}
	}
	return out
}

// ByCategory returns the rows of one category, its header first.
func (d Dataset) ByCategory(c Category) []Indicator {
	var out []Indicator
	for _, ind := range d.indicators {
		if ind.Category == c {
			out = append(out, ind.clone())
		}
	}
	return out
}

// Find looks an indicator up by exact name, then case-insensitively.
func (d Dataset) Find(name string) (Indicator, bool) {
	trimmed := strings.TrimSpace(name)
	if i, ok := d.index[trimmed]; ok {
		return d.indicators[i].clone(), true
	}
	for _, ind := range d.indicators {
		if strings.EqualFold(ind.Name, trimmed) {
			return ind.clone(), true
		}
	}
	return Indicator{}, false
}

// Position returns the declared index of a row, -1 when unknown.
func (d Dataset) Position(name string) int {
	ind, ok := d.Find(name)
	if !ok {
		return -1
	}
	return d.index[ind.Name]
}
