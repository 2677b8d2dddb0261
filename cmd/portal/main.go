package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pdt-ict/portal/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:           "portal",
		Usage:          "account and document portal API",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			workerCommand(),
			migrateCommand(),
			usersCommand(),
		},
	}
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		slog.Default().Error("portal", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap loads configuration and the logger shared by every command.
func bootstrap() (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(cfg)
	app.WarnInsecureDefaults(logger, cfg)
	return cfg, logger, nil
}
