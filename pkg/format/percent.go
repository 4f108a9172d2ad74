// Package format renders percentages and percentage-point variations for
// every output surface.
package format

import (
	"fmt"
	"math"
)

// Missing is shown wherever a value is absent.
const Missing = "–"

// Percent returns a percentage with one decimal (e.g., "16.0%").
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", normalize(value))
}

// PercentPtr renders an optional percentage, Missing when nil.
func PercentPtr(value *float64) string {
	if value == nil {
		return Missing
	}
	return Percent(*value)
}

// Points returns a variation in percentage points (e.g., "-3.8 pp").
func Points(value float64) string {
	return fmt.Sprintf("%.1f pp", normalize(value))
}

// SignedPoints is Points with an explicit sign on non-negative values (e.g., "+0.2 pp").
func SignedPoints(value float64) string {
	return fmt.Sprintf("%+.1f pp", normalize(value))
}

// SignedPointsPtr renders an optional variation, Missing when nil.
func SignedPointsPtr(value *float64) string {
	if value == nil {
		return Missing
	}
	return SignedPoints(*value)
}

// Range renders a scenario range as "[12.2%, 15.1%]".
func Range(low, high float64) string {
	return fmt.Sprintf("[%s, %s]", Percent(low), Percent(high))
}

// Decimal renders a bare one-decimal number, as used in CSV cells.
func Decimal(value float64) string {
	return fmt.Sprintf("%.1f", normalize(value))
}

// DecimalPtr renders an optional number, empty when nil.
func DecimalPtr(value *float64) string {
	if value == nil {
		return ""
	}
	return Decimal(*value)
}

// normalize keeps "-0.0" out of the output.
func normalize(value float64) float64 {
	if math.Abs(value) < 0.05 {
		return 0
	}
	return value
}
