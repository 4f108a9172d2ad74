package interactive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
)

func runConsole(t *testing.T, input string) (*indicators.Session, string, error) {
	t.Helper()
	d := indicators.LoadDataset()
	s := indicators.NewSession(d)
	var out bytes.Buffer
	err := New(strings.NewReader(input), &out, d, s, nil).Run(context.Background())
	return s, out.String(), err
}

func TestConsoleRecordByNumber(t *testing.T) {
	s, out, err := runConsole(t, "1\n13\nquit\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v, ok := s.Actual("Población en pobreza"); !ok || v != 13.0 {
		t.Fatalf("Actual() = (%v, %v), want (13, true)", v, ok)
	}
	for _, want := range []string{"13.0%", "-3.0 pp", "[12.2%, 15.1%]", "dentro del rango"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConsoleRecordByName(t *testing.T) {
	s, out, err := runConsole(t, "rezago educativo\n13,7\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v, ok := s.Actual("Rezago educativo"); !ok || v != 13.7 {
		t.Fatalf("Actual() = (%v, %v), want (13.7, true)", v, ok)
	}
	if !strings.Contains(out, "dentro del rango") {
		t.Errorf("output missing in-range message\n%s", out)
	}
}

func TestConsoleRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"out of range", "1\n150\n", "between 0 and 100"},
		{"negative", "1\n-2\n", "between 0 and 100"},
		{"not a number", "1\nmucho\n", "invalid percentage"},
		{"unknown number", "99\n", "Indicador desconocido"},
		{"unknown name", "Población marciana\n", "Indicador desconocido"},
		{"header row", "Pobreza\n", "Indicador desconocido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out, err := runConsole(t, tt.input)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if s.Len() != 0 {
				t.Errorf("rejected input was stored: %v", s.Actuals())
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
		})
	}
}

func TestConsoleRejectionKeepsPreviousValue(t *testing.T) {
	s, _, err := runConsole(t, "1\n13\n1\n101\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v, ok := s.Actual("Población en pobreza"); !ok || v != 13.0 {
		t.Errorf("Actual() = (%v, %v), want the earlier 13", v, ok)
	}
}

func TestConsoleClear(t *testing.T) {
	s, out, err := runConsole(t, "1\n13\n2\n12\nclear 1\nlist\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := s.Actual("Población en pobreza"); ok {
		t.Error("clear 1 did not remove the value")
	}
	if _, ok := s.Actual("Población en pobreza moderada"); !ok {
		t.Error("clear 1 removed an unrelated value")
	}
	if !strings.Contains(out, "Valor real borrado") {
		t.Errorf("output missing clear confirmation\n%s", out)
	}
	if !strings.Contains(out, "Población en pobreza moderada [12.0%]") {
		t.Errorf("list does not mark recorded values\n%s", out)
	}

	s, _, err = runConsole(t, "1\n13\n2\n12\nclear\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("clear without arguments left %d values", s.Len())
	}
}

func TestConsoleShow(t *testing.T) {
	_, out, err := runConsole(t, "show\nquit\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"--- POBREZA ---", "--- BIENESTAR ECONÓMICO ---", "-3.8 pp"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q", want)
		}
	}
}

func TestConsoleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := indicators.LoadDataset()
	var out bytes.Buffer
	err := New(strings.NewReader("1\n13\n"), &out, d, indicators.NewSession(d), nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestConsoleCancelledWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	d := indicators.LoadDataset()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(r, io.Discard, d, indicators.NewSession(d), nil).Run(ctx)
	}()

	// Nothing is ever written, so the console is blocked on its prompt.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after the context was cancelled")
	}
}
