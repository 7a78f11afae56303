package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aqdash/internal/app"
	"aqdash/internal/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(logging.New(opts.cfg, opts.version, appName))
			slog.Info("starting",
				"version", opts.version,
				"env", opts.cfg.AppEnv,
				"log_level", opts.cfg.LogLevel.String(),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.Run(ctx, opts.cfg); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("shutting down")
			return nil
		},
	}
}
