package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/iwvelando/poverty-forecast/pkg/testutil"
)

var exampleConfig = filepath.Join("..", "..", constants.ExampleConfigFile)

func runExample(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &out)
	root.SetArgs(append([]string{"--config", exampleConfig, "--log-level", "error"}, args...))
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err != nil {
		t.Fatalf("%v error = %v", args, err)
	}
	return out.String()
}

// TestExampleConfigIntegration runs the example configuration end to end
// and checks the key figures of the comparison.
func TestExampleConfigIntegration(t *testing.T) {
	var rows []indicators.Row
	if err := json.Unmarshal([]byte(runExample(t, "show", "--output-format", "json")), &rows); err != nil {
		t.Fatalf("show output is not valid JSON: %v", err)
	}
	if got, want := len(rows), 20*len(indicators.Scenarios()); got != want {
		t.Fatalf("got %d rows, want %d", got, want)
	}

	checks := []struct {
		indicator string
		scenario  indicators.Scenario
		value     *float64
		variation *float64
	}{
		{"Población en pobreza", indicators.Baseline2022, testutil.Float(16.0), testutil.Float(0)},
		{"Población en pobreza", indicators.Optimistic2024, testutil.Float(12.2), testutil.Float(-3.8)},
		{"Población en pobreza", indicators.Restrictive2024, testutil.Float(15.1), testutil.Float(-0.9)},
		{"Población en pobreza", indicators.Real2024, testutil.Float(13.0), testutil.Float(-3.0)},
		{"Rezago educativo", indicators.Real2024, testutil.Float(13.9), testutil.Float(0.4)},
		{"Población vulnerable por carencias sociales", indicators.Optimistic2024, testutil.Float(34.6), testutil.Float(6.2)},
		{"Población en pobreza extrema", indicators.Real2024, nil, nil},
		{"Pobreza", indicators.Baseline2022, nil, nil},
	}
	for _, c := range checks {
		row := testutil.FindRow(rows, c.indicator, c.scenario)
		if row == nil {
			t.Errorf("missing row %q/%s", c.indicator, c.scenario)
			continue
		}
		if !sameValue(row.Value, c.value) {
			t.Errorf("%q/%s value = %v, want %v", c.indicator, c.scenario, deref(row.Value), deref(c.value))
		}
		if !sameValue(row.Variation, c.variation) {
			t.Errorf("%q/%s variation = %v, want %v", c.indicator, c.scenario, deref(row.Variation), deref(c.variation))
		}
	}

	dir := t.TempDir()
	out := runExample(t, "report", "--dir", dir)
	for _, format := range []string{constants.ReportFormatHTML, constants.ReportFormatPDF, constants.ReportFormatXLSX} {
		path := filepath.Join(dir, "poverty-report."+format)
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("report %s not written: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("report %s is empty", path)
		}
		if !strings.Contains(out, path) {
			t.Errorf("report output does not list %s", path)
		}
	}
}

func sameValue(got, want *float64) bool {
	if got == nil || want == nil {
		return got == want
	}
	return *got == *want
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
