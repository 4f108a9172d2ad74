package indicators

import (
	"sort"

	"github.com/iwvelando/poverty-forecast/pkg/mathutil"
)

// Actual is one user-entered real 2024 value.
type Actual struct {
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
}

// Session holds the real 2024 values entered during one interactive
// session. It is not safe for concurrent use.
type Session struct {
	dataset Dataset
	actuals map[string]float64
}

// NewSession starts an empty session over the dataset.
func NewSession(d Dataset) *Session {
	return &Session{dataset: d, actuals: make(map[string]float64)}
}

// RecordActual validates and stores a real 2024 value. Values outside
// [0, 100] are rejected rather than clamped.
func (s *Session) RecordActual(name string, value float64) error {
	ind, err := s.resolve(name)
	if err != nil {
		return &InputError{Indicator: name, Value: value, Err: err}
	}
	if !mathutil.IsPercentage(value) {
		return &InputError{Indicator: ind.Name, Value: value, Err: ErrOutOfRange}
	}
	s.actuals[ind.Name] = value
	return nil
}

// Actual returns the recorded value for an indicator.
func (s *Session) Actual(name string) (float64, bool) {
	ind, ok := s.dataset.Find(name)
	if !ok {
		return 0, false
	}
	v, ok := s.actuals[ind.Name]
	return v, ok
}

// ClearActual removes a recorded value and reports whether one existed.
func (s *Session) ClearActual(name string) bool {
	ind, ok := s.dataset.Find(name)
	if !ok {
		return false
	}
	if _, ok := s.actuals[ind.Name]; !ok {
		return false
	}
	delete(s.actuals, ind.Name)
	return true
}

// Reset discards every recorded value.
func (s *Session) Reset() {
	s.actuals = make(map[string]float64)
}

// Len is the number of recorded values.
func (s *Session) Len() int {
	return len(s.actuals)
}

// Actuals returns the recorded values in dataset order.
func (s *Session) Actuals() []Actual {
	out := make([]Actual, 0, len(s.actuals))
	for name, v := range s.actuals {
		out = append(out, Actual{Indicator: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return s.dataset.Position(out[i].Indicator) < s.dataset.Position(out[j].Indicator)
	})
	return out
}

func (s *Session) resolve(name string) (Indicator, error) {
	ind, ok := s.dataset.Find(name)
	if !ok {
		return Indicator{}, ErrUnknownIndicator
	}
	if ind.Header {
		return Indicator{}, ErrMissingValue
	}
	return ind, nil
}
