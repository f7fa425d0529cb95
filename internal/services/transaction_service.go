package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"slasher/internal/amqp"
	"slasher/internal/core"
	applog "slasher/internal/log"
)

// Store is the CRUD contract the service depends on. Implementations live in
// internal/storage, internal/storage/postgres and internal/storage/memory.
type Store interface {
	// EnsureSchema creates the transactions table if missing.
	EnsureSchema(ctx context.Context) error
	// InsertTransaction stores d and returns a new, never reused id.
	InsertTransaction(ctx context.Context, d core.Draft) (int64, error)
	// SelectTransactions returns every row in the requested order.
	SelectTransactions(ctx context.Context, order core.Order) ([]core.Transaction, error)
	// UpdateTransaction replaces all mutable fields of id; 0 means id is absent.
	UpdateTransaction(ctx context.Context, id int64, d core.Draft) (int64, error)
	// DeleteTransaction removes id; 0 means id is absent.
	DeleteTransaction(ctx context.Context, id int64) (int64, error)
}

// Publisher announces committed changes. It is optional.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, id int64, op amqp.Operation) error
	Close() error
}

// TransactionService is the core of the tracker: it validates input,
// translates listing indices to storage ids and aggregates totals. It never
// hands storage ids to its callers.
//
// Indices come from the most recent List and are only valid until the next
// mutation; callers must re-list before reusing them. Edit and Remove always
// resolve against a freshly read listing.
type TransactionService struct {
	store     Store
	publisher Publisher
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// Init ensures the storage schema exists. Call it once before anything else.
func (s *TransactionService) Init(ctx context.Context) error {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Add validates in and stores it. Nothing is written when validation fails.
// The returned entry carries the index the new row has in the current listing.
func (s *TransactionService) Add(ctx context.Context, in core.Input) (core.Entry, error) {
	d, err := core.ParseInput(in)
	if err != nil {
		slog.DebugContext(ctx, "Rejected transaction input",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		return core.Entry{}, err
	}

	id, err := s.store.InsertTransaction(ctx, d)
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldDate, d.Date.String(),
		applog.FieldAmountCents, d.Amount.Cents,
		applog.FieldKind, d.Amount.Kind())

	s.publish(ctx, id, amqp.OpUpsert)

	return s.entryFor(ctx, id)
}

// List returns every transaction ordered by date then id, each paired with
// its 0-based index in that order.
func (s *TransactionService) List(ctx context.Context) ([]core.Entry, error) {
	txs, err := s.listOrdered(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]core.Entry, len(txs))
	for i, tx := range txs {
		entries[i] = tx.Entry(i)
	}
	slog.DebugContext(ctx, "Transactions listed",
		applog.FieldOperation, applog.OpList,
		applog.FieldCount, len(entries))
	return entries, nil
}

// Edit applies c to the transaction at index. Every supplied change is
// validated before anything is written and the row is replaced in a single
// update, so either all changes land or none do. The returned entry carries
// the index of the row after the edit, which differs from index when the
// date moved.
func (s *TransactionService) Edit(ctx context.Context, index int, c core.Changes) (core.Entry, error) {
	tx, err := s.resolve(ctx, index)
	if err != nil {
		return core.Entry{}, err
	}

	next, err := c.Apply(tx.Draft())
	if err != nil {
		return core.Entry{}, err
	}

	n, err := s.store.UpdateTransaction(ctx, tx.ID, next)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.Entry{}, core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldIndex, index,
		applog.FieldAmountCents, next.Amount.Cents)

	s.publish(ctx, tx.ID, amqp.OpUpsert)

	return s.entryFor(ctx, tx.ID)
}

// Remove deletes the transaction at index and returns what was removed.
func (s *TransactionService) Remove(ctx context.Context, index int) (core.Entry, error) {
	tx, err := s.resolve(ctx, index)
	if err != nil {
		return core.Entry{}, err
	}

	n, err := s.store.DeleteTransaction(ctx, tx.ID)
	if err != nil {
		return core.Entry{}, fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.Entry{}, core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldIndex, index)

	s.publish(ctx, tx.ID, amqp.OpDelete)

	return tx.Entry(index), nil
}

// Totals returns income, expenses and net computed from one read.
func (s *TransactionService) Totals(ctx context.Context) (core.Totals, error) {
	txs, err := s.store.SelectTransactions(ctx, core.OrderByID)
	if err != nil {
		return core.Totals{}, fmt.Errorf("select transactions: %w", err)
	}
	t := core.Summarize(txs)
	slog.DebugContext(ctx, "Totals computed",
		applog.FieldOperation, applog.OpTotals,
		applog.FieldCount, len(txs),
		"net_cents", t.Net.Cents)
	return t, nil
}

// TotalIncome is the sum of all positive amounts.
func (s *TransactionService) TotalIncome(ctx context.Context) (core.Money, error) {
	t, err := s.Totals(ctx)
	return t.Income, err
}

// TotalExpenses is the sum of the magnitudes of all negative amounts.
func (s *TransactionService) TotalExpenses(ctx context.Context) (core.Money, error) {
	t, err := s.Totals(ctx)
	return t.Expenses, err
}

// NetSavings is TotalIncome minus TotalExpenses.
func (s *TransactionService) NetSavings(ctx context.Context) (core.Money, error) {
	t, err := s.Totals(ctx)
	return t.Net, err
}

// NetValue is the same figure as NetSavings.
func (s *TransactionService) NetValue(ctx context.Context) (core.Money, error) {
	return s.NetSavings(ctx)
}

// Close releases the publisher. The store is owned by whoever created it.
func (s *TransactionService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}

func (s *TransactionService) listOrdered(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.SelectTransactions(ctx, core.OrderByDateID)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) resolve(ctx context.Context, index int) (core.Transaction, error) {
	txs, err := s.listOrdered(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if index < 0 || index >= len(txs) {
		return core.Transaction{}, &core.IndexError{Index: index, Size: len(txs)}
	}
	return txs[index], nil
}

// entryFor reports row id at its position in a fresh listing.
func (s *TransactionService) entryFor(ctx context.Context, id int64) (core.Entry, error) {
	txs, err := s.listOrdered(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	for i, tx := range txs {
		if tx.ID == id {
			return tx.Entry(i), nil
		}
	}
	return core.Entry{}, core.ErrNotFound
}

func (s *TransactionService) publish(ctx context.Context, id int64, op amqp.Operation) {
	if s.publisher == nil {
		return
	}
	// The row is already committed; a lost event is repaired by the worker's resync.
	if err := s.publisher.PublishTransactionEvent(ctx, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id,
			applog.FieldOperation, string(op),
			applog.FieldError, err)
	}
}

// IsNotFound reports whether err means the addressed transaction does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, core.ErrValidation)
}
