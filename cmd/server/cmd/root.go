package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ratiba-events/server/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "ratiba",
		Short: "Ratiba events server - event registration and RSVP backend",
		Long: `Ratiba events server runs the event registration API.

Organizers publish events; participants register or RSVP by email. The server
rejects registrations for events whose start time has passed and keeps at most
one registration per participant and event.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (YAML; environment variables override it)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")

	serve := newServeCommand(opts)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newMigrateCommand(opts),
		newVersionCommand(),
		newHealthcheckCommand(),
		newTokenCommand(opts),
		newEventsCommand(),
	)
	return root
}

// Execute runs the CLI. It is called once from main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	return cfg, nil
}
