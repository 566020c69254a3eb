// Package cmd implements the markerctl commands.
//
// The root command loads configuration and sets up logging before any
// subcommand runs; subcommands read the result from RootOptions.
package cmd

import (
	"fmt"

	"github.com/go-drift/drift-maps/pkg/config"
	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// Config is populated before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the markerctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "markerctl",
		Short: "Replay and inspect map marker bindings",
		Long: `markerctl drives a marker binding from scripted scenarios and prints
what the binding did to the map: annotations created and disposed,
properties assigned, listeners installed and removed.

Configuration is read from markerctl.yaml (or .toml/.json) in the current
directory, or from --config, and can be overridden with MARKERCTL_*
environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./markerctl.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (console|json), overrides config")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewDefaultsCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath, ".")
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}

	logOpts := cfg.Logging()
	logOpts.Output = cmd.ErrOrStderr()
	logger, err := logging.New(logOpts)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	logging.SetLogger(logger)
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("loaded config")
	}

	o.Config = cfg
	return nil
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
