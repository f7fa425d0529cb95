// Package cli holds the interactive menu and the start-up steps shared by
// cmd/slasher and cmd/slasher-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"slasher/internal/backend"
	"slasher/internal/config"
	applog "slasher/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default. Logs go to stderr so they never mix with menu output.
func SetupLogger(component string) *applog.Logger {
	level, err := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := applog.New(applog.Config{
		Level:     level,
		Component: component,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown LOG_LEVEL, using info", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it with validate.
// It exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured store and returns it with its cleanup.
// The schema is left to the caller. It exits the process on failure.
func InitBackend(ctx context.Context, logger *slog.Logger, cfg backend.Config) *backend.BackendResult {
	res, err := backend.NewFactory(logger).CreateBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err,
			applog.FieldBackend, cfg.Type)
		os.Exit(1)
	}
	return res
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs after cancellation, bounded by timeout. done is closed when it returns.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received",
			applog.FieldOperation, applog.OpShutdown,
			"signal", sig.String())
		cancel()

		if cleanup == nil {
			return
		}
		finished := make(chan struct{})
		go func() {
			cleanup()
			close(finished)
		}()
		select {
		case <-finished:
			logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
		}
	}()

	return ctx, done
}
