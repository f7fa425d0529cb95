package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"slasher/internal/core"
	applog "slasher/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores transactions in a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath.
// The schema is created by EnsureSchema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureSchema runs pending migrations. Safe to call on every start.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if err := RunMigrations(r.path); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.InfoContext(ctx, "SQLite schema ready", "path", r.path)
	return nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, d core.Draft) (int64, error) {
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Date:        d.Date.String(),
		Description: d.Description,
		Tags:        d.Tags,
		AmountCents: d.Amount.Cents,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		applog.FieldID, id,
		applog.FieldDate, d.Date.String(),
		applog.FieldAmountCents, d.Amount.Cents)

	return id, nil
}

func (r *SQLiteRepository) SelectTransactions(ctx context.Context, order core.Order) ([]core.Transaction, error) {
	var (
		rows []Transaction
		err  error
	)
	switch order {
	case core.OrderByID:
		rows, err = r.queries.ListTransactionsByID(ctx)
	default:
		rows, err = r.queries.ListTransactionsByDate(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// GetTransaction returns the row with id, or core.ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, d core.Draft) (int64, error) {
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Date:        d.Date.String(),
		Description: d.Description,
		Tags:        d.Tags,
		AmountCents: d.Amount.Cents,
		ID:          id,
	})
	if err != nil {
		return 0, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return n, nil
}

func (t Transaction) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: stored date %q: %w", t.ID, t.Date, err)
	}
	return core.Transaction{
		ID:          t.ID,
		Date:        date,
		Description: t.Description,
		Tags:        t.Tags,
		Amount:      core.Money{Cents: t.AmountCents},
	}, nil
}
