// Package worker keeps the spreadsheet mirror in line with the transaction
// store. It reacts to change events from AMQP and periodically rewrites the
// whole sheet to repair anything a lost event left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slasher/internal/amqp"
	"slasher/internal/core"
	applog "slasher/internal/log"
	"slasher/internal/sheets"
)

// Reader is the read side of a transaction store.
type Reader interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	SelectTransactions(ctx context.Context, order core.Order) ([]core.Transaction, error)
}

// SyncWorker applies transaction events to a sheets.Mirror.
type SyncWorker struct {
	store    Reader
	mirror   sheets.Mirror
	interval time.Duration
}

func NewSyncWorker(store Reader, mirror sheets.Mirror, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		store:    store,
		mirror:   mirror,
		interval: interval,
	}
}

// HandleEvent mirrors one change. An upsert for a row that no longer exists
// is treated as a delete, so events may arrive late or out of order.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	logger := applog.FromContext(ctx)
	logger.DebugContext(ctx, "Processing transaction event",
		applog.FieldID, ev.ID,
		applog.FieldOperation, string(ev.Op),
		"timestamp", ev.Timestamp)

	switch ev.Op {
	case amqp.OpUpsert:
		tx, err := w.store.GetTransaction(ctx, ev.ID)
		if errors.Is(err, core.ErrNotFound) {
			logger.InfoContext(ctx, "Transaction gone before it was mirrored", applog.FieldID, ev.ID)
			return w.remove(ctx, ev.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction %d: %w", ev.ID, err)
		}
		if err := w.mirror.Upsert(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", ev.ID, err)
		}
		logger.InfoContext(ctx, "Mirrored transaction",
			applog.NewFields().WithOperation(string(ev.Op)).WithTransaction(tx).ToSlice()...)
		return nil
	case amqp.OpDelete:
		return w.remove(ctx, ev.ID)
	default:
		return fmt.Errorf("unknown operation %q", ev.Op)
	}
}

func (w *SyncWorker) remove(ctx context.Context, id int64) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove transaction %d from mirror: %w", id, err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Removed transaction from mirror", applog.FieldID, id)
	return nil
}

// Resync rewrites the mirror from the store in display order.
func (w *SyncWorker) Resync(ctx context.Context) error {
	txs, err := w.store.SelectTransactions(ctx, core.OrderByDateID)
	if err != nil {
		return fmt.Errorf("select transactions: %w", err)
	}
	if err := w.mirror.Replace(ctx, txs); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Mirror resynced",
		applog.FieldOperation, applog.OpSync,
		applog.FieldCount, len(txs))
	return nil
}

// RunResync resyncs once at start and then on every interval until ctx is
// done. Failed passes are logged and retried on the next tick.
func (w *SyncWorker) RunResync(ctx context.Context) error {
	logger := applog.FromContext(ctx)
	if err := w.Resync(ctx); err != nil && ctx.Err() == nil {
		logger.ErrorContext(ctx, "Startup resync failed",
			applog.NewFields().WithOperation(applog.OpSync).WithError(err).ToSlice()...)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorContext(ctx, "Periodic resync failed",
					applog.NewFields().WithOperation(applog.OpSync).WithError(err).ToSlice()...)
			}
		}
	}
}
