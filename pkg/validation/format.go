// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/poverty-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateReportFormats normalizes a list of report formats, accepting
// comma-separated entries, and rejects unknown ones. Duplicates are dropped.
func ValidateReportFormats(formats []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	var unknown []string
	for _, raw := range formats {
		for _, part := range strings.Split(raw, ",") {
			f := strings.ToLower(strings.TrimSpace(part))
			if f == "" || seen[f] {
				continue
			}
			switch f {
			case constants.ReportFormatHTML, constants.ReportFormatPDF, constants.ReportFormatXLSX:
				seen[f] = true
				out = append(out, f)
			default:
				unknown = append(unknown, f)
			}
		}
	}
	if len(unknown) > 0 {
		return out, fmt.Errorf("expected report formats among %s, %s, %s, got %s",
			constants.ReportFormatHTML, constants.ReportFormatPDF, constants.ReportFormatXLSX, strings.Join(unknown, ", "))
	}
	return out, nil
}
