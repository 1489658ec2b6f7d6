package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/rpggio/boardsum/internal/app"
	"github.com/rpggio/boardsum/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Without a subcommand it serves
// in the configured transport mode.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "boardsum",
		Short: "Keep a Trello summary card in sync with per-card quantities",
		Long: `boardsum listens for Trello webhooks and recomputes the totals on a summary card
from the custom field values of every other card on the board.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, "")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (default $BOARDSUM_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))
	cmd.AddCommand(NewRecomputeCommand(opts))
	cmd.AddCommand(NewClearFieldCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// loadConfig loads and validates configuration, applying flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup builds the logger and wires the app. The returned cleanup closes
// the app and the log file.
func setup(cfg config.Config, logOut io.Writer) (*app.App, func(), error) {
	logger, closeLog := newLogger(cfg.Log, logOut)
	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
		closeLog()
	}
	return a, cleanup, nil
}

// commandLogger logs to stderr so command output stays parseable.
func commandLogger(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}
