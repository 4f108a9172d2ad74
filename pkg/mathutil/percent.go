// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/poverty-forecast/pkg/constants"
)

// Round rounds a value to hundredths of a percentage point. Used to strip
// floating-point noise from subtractions before comparing or printing them.
func Round(val float64) float64 {
	return math.Round(val*constants.VariationPrecision) / constants.VariationPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.ValueTolerance
}

// IsPercentage reports whether val is a finite value in [0, 100].
func IsPercentage(val float64) bool {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return false
	}
	return val >= constants.MinPercentage && val <= constants.MaxPercentage
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Bounds returns the smallest and largest of values. ok is false for an
// empty slice.
func Bounds(values []float64) (low, high float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	low, high = values[0], values[0]
	for _, v := range values[1:] {
		low = Min(low, v)
		high = Max(high, v)
	}
	return low, high, true
}
