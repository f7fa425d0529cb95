package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"slasher/internal/amqp"
	applog "slasher/internal/log"
	"slasher/internal/storage"
	"slasher/internal/storage/memory"
	"slasher/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured store and, when AMQP is configured,
// a change publisher. A broker that cannot be reached is logged and the
// backend is returned without a publisher.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}

	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				applog.FieldError, err)
			client = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close AMQP client: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		return errors.Join(errs...)
	}

	return result, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend",
			applog.FieldBackend, config.Type,
			"db_path", config.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := postgres.New(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres backend", applog.FieldBackend, config.Type)
		return repo, nil

	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend", applog.FieldBackend, config.Type)
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
