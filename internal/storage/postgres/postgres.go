// Package postgres stores transactions in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"slasher/internal/core"
	applog "slasher/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	insertTransaction = `
INSERT INTO transactions (date, description, tags, amount_cents)
VALUES ($1, $2, $3, $4)
RETURNING id`

	selectColumns = `SELECT id, date, description, tags, amount_cents FROM transactions`

	selectByDate = selectColumns + ` ORDER BY date ASC, id ASC`
	selectByID   = selectColumns + ` ORDER BY id ASC`
	selectOne    = selectColumns + ` WHERE id = $1`

	updateTransaction = `
UPDATE transactions
SET date = $1, description = $2, tags = $3, amount_cents = $4, updated_at = now()
WHERE id = $5`

	deleteTransaction = `DELETE FROM transactions WHERE id = $1`
)

// Repository is a PostgreSQL transaction store.
type Repository struct {
	db  *sql.DB
	dsn string
}

// New connects to dsn and verifies the connection.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db, dsn: dsn}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema applies the embedded migrations on a dedicated connection.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	migrateDB, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratepg.WithInstance(migrateDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	slog.InfoContext(ctx, "Postgres schema ready",
		applog.FieldOperation, applog.OpMigrate,
		applog.FieldBackend, "postgres")
	return nil
}

func (r *Repository) InsertTransaction(ctx context.Context, d core.Draft) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertTransaction,
		d.Date.Time, d.Description, d.Tags, d.Amount.Cents).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

func (r *Repository) SelectTransactions(ctx context.Context, order core.Order) ([]core.Transaction, error) {
	query := selectByDate
	if order == core.OrderByID {
		query = selectByID
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction returns the row with id, or core.ErrNotFound.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, selectOne, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, err
}

func (r *Repository) UpdateTransaction(ctx context.Context, id int64, d core.Draft) (int64, error) {
	res, err := r.db.ExecContext(ctx, updateTransaction,
		d.Date.Time, d.Description, d.Tags, d.Amount.Cents, id)
	if err != nil {
		return 0, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date time.Time
	)
	if err := s.Scan(&tx.ID, &date, &tx.Description, &tx.Tags, &tx.Amount.Cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	y, m, d := date.Date()
	tx.Date = core.NewDate(y, int(m), d)
	return tx, nil
}
