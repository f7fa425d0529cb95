package memory

import (
	"context"
	"testing"

	"slasher/internal/core"
)

func tx(id int64, desc string) core.Transaction {
	return core.Transaction{ID: id, Date: core.NewDate(2024, 1, 1), Description: desc, Amount: core.Money{Cents: 100}}
}

func TestMirror_UpsertRemove(t *testing.T) {
	m := New()
	ctx := context.Background()

	if err := m.Upsert(ctx, tx(2, "b")); err != nil {
		t.Fatal(err)
	}
	if err := m.Upsert(ctx, tx(1, "a")); err != nil {
		t.Fatal(err)
	}
	if err := m.Upsert(ctx, tx(2, "b2")); err != nil {
		t.Fatal(err)
	}

	rows := m.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].Description != "b2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	if err := m.Remove(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(ctx, 99); err != nil {
		t.Fatalf("removing an unknown id: %v", err)
	}
	if rows := m.Rows(); len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("unexpected rows after remove: %+v", rows)
	}

	ups, rms, reps := m.Calls()
	if ups != 3 || rms != 2 || reps != 0 {
		t.Errorf("Calls() = %d, %d, %d", ups, rms, reps)
	}
}

func TestMirror_Replace(t *testing.T) {
	m := New()
	ctx := context.Background()
	_ = m.Upsert(ctx, tx(5, "stale"))

	if err := m.Replace(ctx, []core.Transaction{tx(1, "a"), tx(3, "c")}); err != nil {
		t.Fatal(err)
	}
	rows := m.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestMirror_CancelledContext(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Upsert(ctx, tx(1, "a")); err == nil {
		t.Error("Upsert should fail on a cancelled context")
	}
	if err := m.Replace(ctx, nil); err == nil {
		t.Error("Replace should fail on a cancelled context")
	}
	if len(m.Rows()) != 0 {
		t.Error("nothing should have been stored")
	}
}
