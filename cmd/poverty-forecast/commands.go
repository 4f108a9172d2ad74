package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/internal/interactive"
	"github.com/iwvelando/poverty-forecast/internal/report"
	"github.com/iwvelando/poverty-forecast/internal/server"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/iwvelando/poverty-forecast/pkg/format"
	"github.com/iwvelando/poverty-forecast/pkg/output"
	"github.com/iwvelando/poverty-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		category     string
		outputFormat string
		locale       string
		actuals      []string
		scenarioKeys []string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the comparison table",
		Long: `Print every indicator under the 2022 baseline and both 2024 forecasts,
with the variation from 2022 in percentage points. Real 2024 values come from
the configuration file and from repeated --actual flags.`,
		Example: `  poverty-forecast show --category poverty
  poverty-forecast show --actual "Población en pobreza=13.0" --output-format csv
  poverty-forecast show --scenario 2022 --scenario real-2024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, assignment := range actuals {
				name, value, err := validation.ParseAssignment(assignment)
				if err != nil {
					return err
				}
				if err := a.session.RecordActual(name, value); err != nil {
					return err
				}
			}

			// CLI override takes precedence over config
			if outputFormat == "" {
				outputFormat = a.conf.Output.Format
			}
			if outputFormat == "" {
				outputFormat = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf("invalid locale %q: %w", locale, err)
			}

			scenarios := make([]indicators.Scenario, 0, len(scenarioKeys))
			for _, key := range scenarioKeys {
				sc, err := indicators.ParseScenario(key)
				if err != nil {
					return err
				}
				scenarios = append(scenarios, sc)
			}

			c := a.comparator()
			rows := c.Rows(scenarios...)
			if category != "" {
				cat, err := indicators.ParseCategory(category)
				if err != nil {
					return err
				}
				rows = c.CategoryRows(cat, scenarios...)
			}
			a.logger.Debug("rendering comparison",
				zap.String("op", "main.show"),
				zap.String("format", outputFormat),
				zap.Int("rows", len(rows)),
			)

			switch outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvFormat(a.stdout, rows)
			case constants.OutputFormatJSON:
				return output.JSONFormat(a.stdout, rows)
			default:
				if category == "" {
					headline, err := c.Headline()
					if err != nil {
						return err
					}
					if err := output.Headline(a.stdout, headline, tag); err != nil {
						return err
					}
					fmt.Fprintln(a.stdout)
				}
				return output.PrettyFormat(a.stdout, rows, tag)
			}
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show one category (poverty, social-deprivation, deprivation-indicators, economic-wellbeing)")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&locale, "locale", "en", "number formatting locale for pretty output")
	cmd.Flags().StringArrayVar(&actuals, "actual", nil, "real 2024 value as name=value (repeatable)")
	cmd.Flags().StringSliceVar(&scenarioKeys, "scenario", nil, "only show these scenarios (2022, optimistic-2024, restrictive-2024, real-2024)")
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range <indicator>",
		Short: "Print the scenario range of one indicator",
		Long: `Print the minimum and maximum of the optimistic and restrictive 2024
forecasts. The range is not a statistical confidence interval.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			ind, ok := a.dataset.Find(name)
			if !ok {
				return fmt.Errorf("%q: %w", name, indicators.ErrUnknownIndicator)
			}
			rng, ok := indicators.ScenarioRange(ind)
			if !ok {
				return fmt.Errorf("%q: %w", ind.Name, indicators.ErrMissingValue)
			}
			fmt.Fprintf(a.stdout, "%s: %s (amplitud %s)\n", ind.Name, rng.String(), format.Points(rng.Width()))
			fmt.Fprintln(a.stdout, "Rango de escenarios: mínimo y máximo de los dos pronósticos, no es un intervalo de confianza.")
			return nil
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		formats string
		dir     string
		title   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write HTML, PDF or XLSX reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := a.conf.Report.Formats
			if formats != "" {
				requested = []string{formats}
			}
			list, err := validation.ValidateReportFormats(requested)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				list = []string{constants.ReportFormatHTML}
			}
			if dir == "" {
				dir = a.conf.Report.Directory
			}
			if dir == "" {
				dir = constants.DefaultReportDirectory
			}
			if title == "" {
				title = a.conf.Report.Title
			}

			rep, err := report.Build(a.comparator(), title)
			if err != nil {
				return err
			}
			paths, err := report.WriteAll(cmd.Context(), dir, rep, list, a.logger)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(a.stdout, path)
			}
			a.logger.Info("reports written",
				zap.String("op", "main.report"),
				zap.Strings("paths", paths),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&formats, "format", "", "comma-separated report formats: html, pdf, xlsx")
	cmd.Flags().StringVar(&dir, "dir", "", "directory the reports are written to")
	cmd.Flags().StringVar(&title, "title", "", "report title override")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		address      string
		serverConfig string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			logger := a.logger
			if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
				merged := a.conf.Logging
				if cfg.Logging.Level != "" {
					merged.Level = cfg.Logging.Level
				}
				if cfg.Logging.Format != "" {
					merged.Format = cfg.Logging.Format
				}
				if cfg.Logging.OutputFile != "" {
					merged.OutputFile = cfg.Logging.OutputFile
				}
				logger, err = initializeLogger(merged, a.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			return server.Run(cmd.Context(), cfg, logger, server.Options{
				Version:     version,
				ReportTitle: a.conf.Report.Title,
			}, nil)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	return cmd
}

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Enter real 2024 values at a prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := interactive.New(a.stdin, a.stdout, a.dataset, a.session, a.logger).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
