package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"slasher/internal/amqp"
	"slasher/internal/core"
	sheetsmem "slasher/internal/sheets/memory"
	"slasher/internal/storage/memory"
)

func draft(y, m, d int, desc string, cents int64) core.Draft {
	return core.Draft{Date: core.NewDate(y, m, d), Description: desc, Amount: core.Money{Cents: cents}}
}

func event(id int64, op amqp.Operation) *amqp.TransactionEvent {
	return &amqp.TransactionEvent{ID: id, Op: op, Timestamp: time.Now()}
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.New(draft(2024, 1, 5, "Salary", 100000), draft(2024, 1, 3, "Groceries", -5000))
	mirror := sheetsmem.New()
	w := NewSyncWorker(store, mirror, time.Minute)

	if err := w.HandleEvent(ctx, event(1, amqp.OpUpsert)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := w.HandleEvent(ctx, event(2, amqp.OpUpsert)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 2 || rows[0].Description != "Salary" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// Edit then mirror again.
	if _, err := store.UpdateTransaction(ctx, 1, draft(2024, 1, 6, "Salary Jan", 100000)); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleEvent(ctx, event(1, amqp.OpUpsert)); err != nil {
		t.Fatalf("upsert after edit: %v", err)
	}
	if rows := mirror.Rows(); rows[0].Description != "Salary Jan" {
		t.Fatalf("edit not mirrored: %+v", rows)
	}

	if err := w.HandleEvent(ctx, event(2, amqp.OpDelete)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("unexpected rows after delete: %+v", rows)
	}
}

func TestHandleEvent_UpsertForMissingRowRemoves(t *testing.T) {
	ctx := context.Background()
	store := memory.New(draft(2024, 1, 1, "a", 100))
	mirror := sheetsmem.New()
	w := NewSyncWorker(store, mirror, time.Minute)

	if err := w.HandleEvent(ctx, event(1, amqp.OpUpsert)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.DeleteTransaction(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleEvent(ctx, event(1, amqp.OpUpsert)); err != nil {
		t.Fatalf("late upsert: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 0 {
		t.Fatalf("stale row left in mirror: %+v", rows)
	}
}

func TestHandleEvent_UnknownOperation(t *testing.T) {
	w := NewSyncWorker(memory.New(), sheetsmem.New(), time.Minute)
	if err := w.HandleEvent(context.Background(), event(1, "rename")); err == nil {
		t.Fatal("expected an error for an unknown operation")
	}
}

type brokenMirror struct{ *sheetsmem.Mirror }

func (brokenMirror) Upsert(context.Context, core.Transaction) error {
	return errors.New("quota exceeded")
}

func TestHandleEvent_MirrorFailureIsReturned(t *testing.T) {
	store := memory.New(draft(2024, 1, 1, "a", 100))
	w := NewSyncWorker(store, brokenMirror{sheetsmem.New()}, time.Minute)
	if err := w.HandleEvent(context.Background(), event(1, amqp.OpUpsert)); err == nil {
		t.Fatal("expected the mirror error so the event is requeued")
	}
}

func TestResync(t *testing.T) {
	ctx := context.Background()
	store := memory.New(draft(2024, 1, 5, "b", 100), draft(2024, 1, 3, "a", -100))
	mirror := sheetsmem.New()
	_ = mirror.Upsert(ctx, core.Transaction{ID: 42, Description: "orphan"})

	w := NewSyncWorker(store, mirror, time.Minute)
	if err := w.Resync(ctx); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}

	rows := mirror.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	for _, r := range rows {
		if r.ID == 42 {
			t.Fatal("orphan row survived resync")
		}
	}
}

func TestRunResync_StopsOnCancel(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewSyncWorker(memory.New(draft(2024, 1, 1, "a", 100)), mirror, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	err := w.RunResync(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunResync() error = %v", err)
	}
	if _, _, replaces := mirror.Calls(); replaces < 2 {
		t.Errorf("expected the startup pass plus periodic passes, got %d", replaces)
	}
}
