package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roomrelay/roomrelay-server/internal/app"
	"github.com/roomrelay/roomrelay-server/internal/config"
	"github.com/roomrelay/roomrelay-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		addr     string
		dbPath   string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "roomrelay-server",
		Short:         "Room-scoped real-time chat relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, cfgPath)
			if err != nil {
				logger.Error().Err(err).Msg("load config")
				return err
			}

			// Flags win over file and environment.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("startup failed")
				return err
			}

			logger.Info().
				Str("addr", cfg.Addr).
				Str("config", path).
				Msg("starting roomrelay server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}
