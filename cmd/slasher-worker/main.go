package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"slasher/internal/amqp"
	"slasher/internal/backend"
	"slasher/internal/cli"
	"slasher/internal/config"
	applog "slasher/internal/log"
	gsheet "slasher/internal/sheets/google"
	"slasher/internal/trace"
	"slasher/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting slasher-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, _ := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	// The worker only reads the store, so it never publishes events itself.
	res := cli.InitBackend(ctx, logger.Logger, backendCfg.WithoutPublisher())
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", applog.FieldError, err)
		}
	}()
	if err := res.Store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to prepare schema", applog.FieldError, err, applog.FieldBackend, backendCfg.Type)
		res.Cleanup()
		os.Exit(1)
	}

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient, cfg.SyncInterval)
	tracer := trace.NewTracer("transaction event")
	handle := trace.Wrap(tracer, syncWorker.HandleEvent)

	g, gctx := errgroup.WithContext(applog.WithContext(ctx, logger))
	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(gctx, handle)
	})
	g.Go(func() error {
		return syncWorker.RunResync(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldError, err)
		return
	}
	m := tracer.GetMetrics()
	logger.Info("Worker shutdown complete",
		applog.FieldOperation, applog.OpShutdown,
		"events_handled", m.Handled,
		"events_failed", m.Failed)
}
