package main

import (
	"fmt"
	"os"
	"time"

	"slasher/internal/backend"
	"slasher/internal/cli"
	"slasher/internal/config"
	applog "slasher/internal/log"
	"slasher/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentCLI)

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 5*time.Second, nil)

	res := cli.InitBackend(ctx, logger.Logger, backendCfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", applog.FieldError, err)
		}
	}()

	svc := services.NewTransactionService(res.Store, res.Publisher)
	if err := svc.Init(ctx); err != nil {
		logger.Error("Failed to prepare schema",
			applog.FieldError, err,
			applog.FieldBackend, backendCfg.Type)
		res.Cleanup()
		os.Exit(1)
	}
	logger.Debug("Tracker ready",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, backendCfg.Type,
		"amqp_enabled", res.Publisher != nil)

	menu := cli.NewMenu(svc, os.Stdin, os.Stdout)
	errCh := make(chan error, 1)
	go func() { errCh <- menu.Run(ctx) }()

	// A pending read on stdin cannot be interrupted, so a signal ends the
	// process without waiting for the menu.
	select {
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			logger.Error("Menu stopped", applog.FieldError, err)
		}
	case <-done:
		fmt.Fprintln(os.Stdout)
	}
}
