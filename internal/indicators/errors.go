package indicators

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned for a user value outside [0, 100].
	ErrOutOfRange = errors.New("value must be between 0 and 100")

	// ErrUnknownIndicator is returned for a name that is not in the dataset.
	ErrUnknownIndicator = errors.New("unknown indicator")

	// ErrMissingValue is returned when a section header is used as data.
	ErrMissingValue = errors.New("indicator is a section header and holds no values")
)

// InputError describes a rejected real 2024 entry. Nothing is stored when
// one is returned.
type InputError struct {
	Indicator string
	Value     float64
	Err       error
}

func (e *InputError) Error() string {
	if errors.Is(e.Err, ErrUnknownIndicator) || errors.Is(e.Err, ErrMissingValue) {
		return fmt.Sprintf("cannot record %q: %v", e.Indicator, e.Err)
	}
	return fmt.Sprintf("cannot record %g for %q: %v", e.Value, e.Indicator, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
