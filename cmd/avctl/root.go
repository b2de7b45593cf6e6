package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"avelements/internal/platform/config"
	"avelements/internal/platform/logger"
)

type rootOptions struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "avctl",
		Short:         "Address verification tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newVerifyCommand(opts),
		newAutocompleteCommand(opts),
		newEventsCommand(opts),
	)
	return cmd
}

// load reads the same environment and config file as the server.
func (o *rootOptions) load(cmd *cobra.Command) (config.Server, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Server{}, nil, err
	}
	return cfg, logger.NewWithWriter(cmd.ErrOrStderr(), o.logLevel), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
