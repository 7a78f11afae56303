// Package cmd holds the aqdash command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"aqdash/internal/config"
	"aqdash/internal/logging"
)

const appName = "aqdash"

type rootOptions struct {
	version string

	// Global flags
	cfgFile  string
	dataPath string
	logLevel string

	cfg config.Config
}

// NewRootCmd builds the command tree. version is reported by --version and in logs.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Air-quality dashboard over a CSV of city measurements",
		Long:          `aqdash loads, cleans and filters an air-quality CSV and serves it as a dashboard of charts and tables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.cfgFile, "config", "", "config file (yaml, json or toml); env vars take precedence")
	f.StringVar(&opts.dataPath, "data", "", "CSV data file (overrides DATA_PATH)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	serve := newServeCmd(opts)
	// Without a subcommand aqdash serves the dashboard.
	root.Args = cobra.NoArgs
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newCleanCmd(opts),
		newFilterCmd(opts),
	)
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.dataPath != "" {
		abs, err := filepath.Abs(o.dataPath)
		if err != nil {
			return fmt.Errorf("--data %q: %w", o.dataPath, err)
		}
		cfg.DataPath = abs
	}
	if o.logLevel != "" {
		level, err := config.ParseLogLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	o.cfg = cfg

	// Subcommands that print results keep stdout clean.
	slog.SetDefault(logging.NewWithWriter(cmd.ErrOrStderr(), cfg, o.version, appName))
	return nil
}
