package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/loggrowth/internal/logging"
	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/report"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	cfg        appConfig
	logger     *slog.Logger
	printer    *report.Printer
	closeLog   func() error
}

// newRootCmd builds the command tree around a. The caller owns a and must
// call its close method once the command has run.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "loggrowth",
		Short: "Access log reliability growth analysis",
		Long: `loggrowth reads a directory of Combined Log Format access logs, groups the
records by a calendar granularity, fits a reliability growth model (SCWIND or
Goel-Okumoto) to the error trajectory and plots the result.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s, %s)", version, commit, buildTime, goVersion),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is $HOME/.config/loggrowth/config.yml)")
	flags.String("log-dir", model.DefaultLogDir, "directory of access logs, or - for stdin")
	flags.String("codes", "", "CSV file or directory of HTTP status codes (default: built-in table)")
	flags.String("include", "", "glob of log file names to read, e.g. '*.log'")
	flags.String("model", model.DefaultModel, "reliability model: scwind or go")
	flags.StringP("output", "o", model.DefaultOutputPath, "PNG plot path")
	flags.String("export", "", "write a report to this .json, .yaml or .yml file")
	flags.Bool("preview", false, "draw a bar chart preview in the terminal")
	flags.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to a rotating file instead of stdout")

	root.AddCommand(
		newPlotCmd(a, modeBy),
		newPlotCmd(a, modeCumulative),
		newPlotCmd(a, modeRatio),
		newPlotCmd(a, modeCumulativeRatio),
		newStatsCmd(a),
		newFitCmd(a),
		newCompareCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath, cmd.Root().PersistentFlags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.logger, a.closeLog = logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}, cmd.OutOrStdout())
	a.printer = report.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if cfg.ConfigPath != "" {
		a.logger.Debug("configuration loaded", "path", cfg.ConfigPath)
	}
	return nil
}

// close releases the log file. It is safe to call more than once and
// whether or not setup ran.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}

// execute runs root and closes the log file even when the command fails.
func execute(a *app, root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing log file: %w", cerr))
	}
	return err
}
