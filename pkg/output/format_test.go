package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"golang.org/x/text/language"
)

func testComparator(t *testing.T, actuals map[string]float64) *indicators.Comparator {
	t.Helper()
	d := indicators.LoadDataset()
	s := indicators.NewSession(d)
	for name, v := range actuals {
		if err := s.RecordActual(name, v); err != nil {
			t.Fatalf("RecordActual(%q, %v) error = %v", name, v, err)
		}
	}
	return indicators.NewComparator(d, s)
}

func TestPrettyFormat(t *testing.T) {
	c := testComparator(t, map[string]float64{"Población en pobreza": 13.0})

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, c.Rows(), language.English); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	out := buf.String()

	expected := []string{
		"--- POBREZA ---",
		"--- PRIVACIÓN SOCIAL ---",
		"--- INDICADORES DE CARENCIA SOCIAL ---",
		"--- BIENESTAR ECONÓMICO ---",
		"Población en pobreza",
		"16.0%",
		"12.2%",
		"-3.8 pp",
		"13.0%",
		"-3.0 pp",
		"2024 (Optimista)",
		"Variación",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("PrettyFormat() output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("PrettyFormat() wrote ANSI escapes to a non-terminal writer")
	}
}

func TestPrettyFormatSpanishLocale(t *testing.T) {
	c := testComparator(t, nil)

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, c.CategoryRows(indicators.Poverty), language.Spanish); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "16,0%") {
		t.Errorf("PrettyFormat() with Spanish locale missing decimal comma\n%s", buf.String())
	}
}

func TestPrettyFormatEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, nil, language.English); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No indicators to display") {
		t.Errorf("PrettyFormat(nil) = %q", buf.String())
	}
}

func TestHeadline(t *testing.T) {
	c := testComparator(t, nil)
	h, err := c.Headline()
	if err != nil {
		t.Fatalf("Headline() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Headline(&buf, h, language.English); err != nil {
		t.Fatalf("Headline() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"16.0%", "12.2%", "15.1%", "-3.8 pp", "-0.9 pp", "[12.2%, 15.1%]", "+2.9 pp", "no es un intervalo de confianza"} {
		if !strings.Contains(out, want) {
			t.Errorf("Headline() output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Real") {
		t.Errorf("Headline() printed a real 2024 line without a recorded value\n%s", out)
	}
}

func TestCsvFormat(t *testing.T) {
	c := testComparator(t, nil)
	rows := c.CategoryRows(indicators.Poverty, indicators.Baseline2022, indicators.Optimistic2024)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, rows); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if got, want := len(records), len(rows)+1; got != want {
		t.Fatalf("CsvFormat() wrote %d records, want %d", got, want)
	}
	if strings.Join(records[0], ",") != strings.Join(CsvHeader, ",") {
		t.Errorf("header = %v, want %v", records[0], CsvHeader)
	}

	var found bool
	for _, rec := range records[1:] {
		if rec[1] == "Población en pobreza" && rec[2] == "optimistic-2024" {
			found = true
			if rec[0] != "poverty" || rec[3] != "12.2" || rec[4] != "-3.8" {
				t.Errorf("headline optimistic record = %v", rec)
			}
		}
		if rec[1] == "Población en pobreza" && rec[2] == "2022" && rec[4] != "0.0" {
			t.Errorf("baseline variation = %q, want 0.0", rec[4])
		}
	}
	if !found {
		t.Error("CsvFormat() missing headline optimistic record")
	}
}

func TestCsvFormatHeaderRowsAreEmpty(t *testing.T) {
	c := testComparator(t, nil)
	rows := c.CategoryRows(indicators.DeprivationIndicators, indicators.Baseline2022)

	var buf bytes.Buffer
	if err := CsvFormat(&buf, rows); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if records[1][1] != "Indicadores de carencia social" || records[1][3] != "" || records[1][4] != "" {
		t.Errorf("header row record = %v, want empty value columns", records[1])
	}
}

func TestJSONFormat(t *testing.T) {
	c := testComparator(t, nil)
	rows := c.CategoryRows(indicators.EconomicWellbeing)

	var buf bytes.Buffer
	if err := JSONFormat(&buf, rows); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != len(rows) {
		t.Fatalf("decoded %d rows, want %d", len(decoded), len(rows))
	}
	if decoded[0]["category"] != "economic-wellbeing" {
		t.Errorf("category = %v, want economic-wellbeing", decoded[0]["category"])
	}
	if decoded[3]["value"] != nil {
		t.Errorf("real 2024 value = %v, want null", decoded[3]["value"])
	}
}

func TestJSONFormatEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, nil); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("JSONFormat(nil) = %q, want []", buf.String())
	}
}
