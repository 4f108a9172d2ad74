// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/iwvelando/poverty-forecast/pkg/mathutil"
	"github.com/iwvelando/poverty-forecast/pkg/validation"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Configuration holds all configuration for poverty-forecast.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Report  ReportConfig  `yaml:"report,omitempty"`
	Actuals []ActualEntry `yaml:"actuals,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ReportConfig holds report rendering options
type ReportConfig struct {
	Title     string   `yaml:"title,omitempty"`
	Directory string   `yaml:"directory,omitempty"`
	Formats   []string `yaml:"formats,omitempty"` // html, pdf, xlsx
}

// ActualEntry is a real 2024 value provided up front instead of typed in.
type ActualEntry struct {
	Indicator string  `yaml:"indicator"`
	Value     float64 `yaml:"value"`
}

// DefaultConfiguration is used when no config file is present.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
		Report: ReportConfig{
			Title:     constants.DefaultReportTitle,
			Directory: constants.DefaultReportDirectory,
			Formats:   []string{constants.ReportFormatHTML},
		},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return LoadConfigurationFromReader(bytes.NewReader(data))
}

// LoadConfigurationFromReader loads YAML configuration from r, filling in
// defaults for anything left unset.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("POVERTY_FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfiguration()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("report.title", defaults.Report.Title)
	v.SetDefault("report.directory", defaults.Report.Directory)
	v.SetDefault("report.formats", defaults.Report.Formats)

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration checks the configuration against the dataset and
// returns warnings. Entries that would be rejected are still reported by
// ApplyActuals.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if _, err := validation.ValidateReportFormats(c.Report.Formats); err != nil {
		warnings = append(warnings, err.Error())
	}

	dataset := indicators.LoadDataset()
	seen := make(map[string]int)
	for i, entry := range c.Actuals {
		ind, ok := dataset.Find(entry.Indicator)
		switch {
		case !ok:
			warnings = append(warnings, fmt.Sprintf("Actual #%d: unknown indicator '%s'", i+1, entry.Indicator))
			continue
		case ind.Header:
			warnings = append(warnings, fmt.Sprintf("Actual #%d: '%s' is a section header and cannot hold a value", i+1, ind.Name))
			continue
		}
		if !mathutil.IsPercentage(entry.Value) {
			warnings = append(warnings, fmt.Sprintf("Actual #%d: value %g for '%s' is outside [0, 100]", i+1, entry.Value, ind.Name))
		}
		if prev, dup := seen[ind.Name]; dup {
			warnings = append(warnings, fmt.Sprintf("Actual #%d: '%s' already set by entry #%d, the later value wins", i+1, ind.Name, prev))
		}
		seen[ind.Name] = i + 1
	}

	return warnings
}

// ApplyActuals records every configured actual into the session. Valid
// entries are stored even when others fail; the failures are combined.
func (c *Configuration) ApplyActuals(session *indicators.Session) error {
	var errs error
	for _, entry := range c.Actuals {
		errs = multierr.Append(errs, session.RecordActual(entry.Indicator, entry.Value))
	}
	return errs
}
