package indicators

import (
	"fmt"
	"strings"
)

// Category is one of the four fixed groupings of indicators.
type Category int

const (
	Poverty Category = iota
	SocialDeprivation
	DeprivationIndicators
	EconomicWellbeing
)

var categoryKeys = [...]string{
	Poverty:               "poverty",
	SocialDeprivation:     "social-deprivation",
	DeprivationIndicators: "deprivation-indicators",
	EconomicWellbeing:     "economic-wellbeing",
}

var categoryLabels = [...]string{
	Poverty:               "POBREZA",
	SocialDeprivation:     "PRIVACIÓN SOCIAL",
	DeprivationIndicators: "INDICADORES DE CARENCIA SOCIAL",
	EconomicWellbeing:     "BIENESTAR ECONÓMICO",
}

// Categories returns every category in declared order.
func Categories() []Category {
	return []Category{Poverty, SocialDeprivation, DeprivationIndicators, EconomicWellbeing}
}

func (c Category) valid() bool {
	return c >= Poverty && c <= EconomicWellbeing
}

// Key is the stable identifier used in URLs, flags and JSON.
func (c Category) Key() string {
	if !c.valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

// String returns the display label.
func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryLabels[c]
}

// MarshalText encodes the category as its key.
func (c Category) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText accepts a key or a display label.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory resolves a key ("poverty") or label ("POBREZA"), ignoring case.
func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	for _, c := range Categories() {
		if strings.EqualFold(trimmed, c.Key()) || strings.EqualFold(trimmed, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q, expected one of %s", value, strings.Join(categoryKeys[:], ", "))
}

// Scenario names one of the value-sets an indicator can be read under.
type Scenario string

const (
	Baseline2022    Scenario = "2022"
	Optimistic2024  Scenario = "optimistic-2024"
	Restrictive2024 Scenario = "restrictive-2024"
	Real2024        Scenario = "real-2024"
)

// Scenarios returns every scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{Baseline2022, Optimistic2024, Restrictive2024, Real2024}
}

// ForecastScenarios are the two hand-entered 2024 forecasts.
func ForecastScenarios() []Scenario {
	return []Scenario{Optimistic2024, Restrictive2024}
}

// Label returns the display name of the scenario.
func (s Scenario) Label() string {
	switch s {
	case Baseline2022:
		return "2022"
	case Optimistic2024:
		return "2024 (Optimista)"
	case Restrictive2024:
		return "2024 (Restrictivo)"
	case Real2024:
		return "2024 (Real)"
	default:
		return string(s)
	}
}

// ParseScenario resolves a scenario key or label, ignoring case.
func ParseScenario(value string) (Scenario, error) {
	trimmed := strings.TrimSpace(value)
	for _, s := range Scenarios() {
		if strings.EqualFold(trimmed, string(s)) || strings.EqualFold(trimmed, s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q", value)
}
