package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePercent reads a user-typed percentage. Accepts "13", "13.0", the
// comma decimal "13,0" and a trailing "%". Range checks are left to the
// caller so the rejection message can name the indicator.
func ParsePercent(input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", input)
	}
	return v, nil
}

// ParseAssignment splits a "name=value" flag into its indicator name and
// percentage.
func ParseAssignment(input string) (string, float64, error) {
	idx := strings.LastIndex(input, "=")
	if idx <= 0 {
		return "", 0, fmt.Errorf("expected name=value, got %q", input)
	}
	name := strings.TrimSpace(input[:idx])
	if name == "" {
		return "", 0, fmt.Errorf("expected name=value, got %q", input)
	}
	v, err := ParsePercent(input[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return name, v, nil
}
