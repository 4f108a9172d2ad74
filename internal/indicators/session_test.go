package indicators

import (
	"errors"
	"math"
	"testing"
)

func TestRecordActual(t *testing.T) {
	tests := []struct {
		name      string
		indicator string
		value     float64
		wantErr   error
	}{
		{"Accepted", "Población en pobreza", 13.0, nil},
		{"Lower bound", "Población en pobreza", 0, nil},
		{"Upper bound", "Población en pobreza", 100, nil},
		{"Above range", "Población en pobreza", 150, ErrOutOfRange},
		{"Below range", "Población en pobreza", -1, ErrOutOfRange},
		{"NaN", "Población en pobreza", math.NaN(), ErrOutOfRange},
		{"Header row", "Pobreza", 10, ErrMissingValue},
		{"Unknown indicator", "Desempleo", 10, ErrUnknownIndicator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(LoadDataset())
			err := s.RecordActual(tt.indicator, tt.value)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("RecordActual() error = %v", err)
				}
				got, ok := s.Actual(tt.indicator)
				if !ok || got != tt.value {
					t.Fatalf("Actual() = %v, %v; expected %v", got, ok, tt.value)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RecordActual() error = %v, expected %v", err, tt.wantErr)
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected *InputError, got %T", err)
			}
			if s.Len() != 0 {
				t.Fatalf("rejected value was stored")
			}
		})
	}
}

func TestRecordActualRejectionKeepsPreviousValue(t *testing.T) {
	s := NewSession(LoadDataset())
	if err := s.RecordActual("Población en pobreza", 13.0); err != nil {
		t.Fatalf("RecordActual() error = %v", err)
	}
	if err := s.RecordActual("Población en pobreza", 150); err == nil {
		t.Fatal("expected out-of-range rejection")
	}

	got, ok := s.Actual("Población en pobreza")
	if !ok || got != 13.0 {
		t.Fatalf("expected previous value 13.0 to survive, got %v (%v)", got, ok)
	}
}

func TestRecordActualCanonicalName(t *testing.T) {
	s := NewSession(LoadDataset())
	if err := s.RecordActual("rezago educativo", 12.0); err != nil {
		t.Fatalf("RecordActual() error = %v", err)
	}

	actuals := s.Actuals()
	if len(actuals) != 1 || actuals[0].Indicator != "Rezago educativo" {
		t.Fatalf("expected canonical name, got %+v", actuals)
	}
}

func TestSessionActualsOrderAndClear(t *testing.T) {
	s := NewSession(LoadDataset())
	entries := []Actual{
		{Indicator: "Población con ingreso inferior a la linea de pobreza por ingresos", Value: 24.0},
		{Indicator: "Rezago educativo", Value: 13.6},
		{Indicator: "Población en pobreza", Value: 13.0},
	}
	for _, e := range entries {
		if err := s.RecordActual(e.Indicator, e.Value); err != nil {
			t.Fatalf("RecordActual(%q) error = %v", e.Indicator, err)
		}
	}

	actuals := s.Actuals()
	if len(actuals) != 3 {
		t.Fatalf("expected 3 actuals, got %d", len(actuals))
	}
	if actuals[0].Indicator != "Población en pobreza" || actuals[2].Indicator != entries[0].Indicator {
		t.Fatalf("actuals not in dataset order: %+v", actuals)
	}

	if !s.ClearActual("Rezago educativo") {
		t.Fatal("expected ClearActual to remove an existing value")
	}
	if s.ClearActual("Rezago educativo") {
		t.Fatal("expected second ClearActual to report nothing removed")
	}
	if s.ClearActual("Desempleo") {
		t.Fatal("expected ClearActual on unknown indicator to report false")
	}

	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("expected empty session after Reset, got %d", s.Len())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	d := LoadDataset()
	a := NewSession(d)
	b := NewSession(d)

	if err := a.RecordActual("Población en pobreza", 13.0); err != nil {
		t.Fatalf("RecordActual() error = %v", err)
	}
	if _, ok := b.Actual("Población en pobreza"); ok {
		t.Fatal("value recorded in one session is visible in another")
	}
}

func TestInputErrorMessage(t *testing.T) {
	s := NewSession(LoadDataset())
	err := s.RecordActual("Población en pobreza", 150)
	if err == nil {
		t.Fatal("expected error")
	}
	expected := `cannot record 150 for "Población en pobreza": value must be between 0 and 100`
	if err.Error() != expected {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
