package validation

import "testing"

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  float64
		expectErr bool
	}{
		{"Integer", "13", 13, false},
		{"Decimal", "13.0", 13, false},
		{"Comma decimal", "13,5", 13.5, false},
		{"Percent sign", "15.1%", 15.1, false},
		{"Spaces", "  12.2 % ", 12.2, false},
		{"Out of range still parses", "150", 150, false},
		{"Negative", "-1", -1, false},
		{"Empty", "", 0, true},
		{"Only percent", "%", 0, true},
		{"Text", "trece", 0, true},
		{"Thousands comma with dot", "1,000.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePercent(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("ParsePercent(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePercent(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParsePercent(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAssignment(t *testing.T) {
	name, value, err := ParseAssignment("Población en pobreza=13,0")
	if err != nil {
		t.Fatalf("ParseAssignment() error = %v", err)
	}
	if name != "Población en pobreza" || value != 13.0 {
		t.Fatalf("ParseAssignment() = %q, %v", name, value)
	}

	for _, bad := range []string{"Población en pobreza", "=13", "Rezago educativo=abc"} {
		if _, _, err := ParseAssignment(bad); err == nil {
			t.Errorf("ParseAssignment(%q) expected error", bad)
		}
	}
}
