package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iwvelando/poverty-forecast/internal/config"
	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by every subcommand once the root
// command's pre-run has loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	stdin  io.Reader
	stdout io.Writer

	conf    *config.Configuration
	logger  *zap.Logger
	dataset indicators.Dataset
	session *indicators.Session
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr so they never mix with table output on stdout.
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// loadConfiguration falls back to defaults when the file does not exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.DefaultConfiguration(), nil
	}
	return conf, err
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	conf, err := loadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}
	a.conf = conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	for _, warning := range conf.ValidateConfiguration() {
		a.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.setup"),
		)
	}

	a.dataset = indicators.LoadDataset()
	a.session = indicators.NewSession(a.dataset)
	if err := conf.ApplyActuals(a.session); err != nil {
		return fmt.Errorf("invalid actuals in configuration: %w", err)
	}
	a.logger.Debug("configuration loaded",
		zap.String("op", "main.setup"),
		zap.String("path", a.configPath),
		zap.Int("actuals", a.session.Len()),
	)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

func (a *app) comparator() *indicators.Comparator {
	return indicators.NewComparator(a.dataset, a.session)
}

func newApp(stdin io.Reader, stdout io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	return newApp(stdin, stdout).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "poverty-forecast",
		Short: "Compare 2024 poverty forecasts against the 2022 baseline",
		Long: `poverty-forecast compares the 2022 poverty indicators with the optimistic
and restrictive 2024 forecasts, and with real 2024 values entered by the user.

Available subcommands:
  show        - Print the comparison table
  range       - Print the scenario range of one indicator
  report      - Write HTML, PDF or XLSX reports
  serve       - Start the web dashboard
  interactive - Enter real 2024 values at a prompt`,
		Version:            version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newShowCmd(a),
		newRangeCmd(a),
		newReportCmd(a),
		newServeCmd(a),
		newInteractiveCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout)
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		a.reportFailure(os.Stderr, err)
		os.Exit(1)
	}
}

// reportFailure logs a command error as fatal once setup has built the
// logger. Failures before that are printed to stderr.
func (a *app) reportFailure(stderr io.Writer, err error) {
	if a.logger == nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return
	}
	a.logger.Fatal(err.Error(),
		zap.String("op", "main"),
	)
}
