// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/poverty-forecast/internal/indicators"
)

// FindRow finds the row for an indicator under a scenario.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(rows []indicators.Row, indicator string, scenario indicators.Scenario) *indicators.Row {
	for i := range rows {
		if rows[i].Indicator == indicator && rows[i].Scenario == scenario {
			return &rows[i]
		}
	}
	return nil
}

// Float returns a pointer to v, for building expected optional values.
func Float(v float64) *float64 {
	return &v
}
