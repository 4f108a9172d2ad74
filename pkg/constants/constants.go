// Package constants provides shared constants for the poverty-forecast application.
package constants

// Percentage bounds for every indicator value, forecast or user-entered.
const (
	// MinPercentage is the lowest accepted indicator value
	MinPercentage = 0.0

	// MaxPercentage is the highest accepted indicator value
	MaxPercentage = 100.0
)

// Precision constants
const (
	// VariationPrecision rounds variations to hundredths of a percentage point
	VariationPrecision = 100

	// ValueTolerance is the tolerance for comparing percentages
	ValueTolerance = 0.005
)

// HeadlineIndicator is the indicator shown in the key metrics summary.
const HeadlineIndicator = "Población en pobreza"

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Report format constants
const (
	ReportFormatHTML = "html"
	ReportFormatPDF  = "pdf"
	ReportFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultReportDirectory is where report files are written by default
	DefaultReportDirectory = "reports"

	// DefaultReportTitle is the title used on every rendered report
	DefaultReportTitle = "Simulador de Pobreza 2024"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultSessionTTL is how long an idle browser session keeps its actuals
	DefaultSessionTTL = "30m"

	// DefaultSweepInterval is how often idle sessions are evicted
	DefaultSweepInterval = "1m"

	// SessionCookieName holds the session identifier
	SessionCookieName = "pf_session"

	// DefaultMaxBodyBytes caps JSON request bodies
	DefaultMaxBodyBytes int64 = 4 * 1024
)
