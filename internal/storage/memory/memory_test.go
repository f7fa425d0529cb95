package memory

import (
	"context"
	"errors"
	"testing"

	"slasher/internal/core"
)

func d(y, m, day int, desc string, cents int64) core.Draft {
	return core.Draft{Date: core.NewDate(y, m, day), Description: desc, Amount: core.Money{Cents: cents}}
}

func TestMemoryStoreOrdering(t *testing.T) {
	ctx := context.Background()
	s := New(
		d(2024, 1, 9, "c", -1),
		d(2024, 1, 1, "a", 2),
		d(2024, 1, 9, "b", -3),
	)

	byDate, err := s.SelectTransactions(ctx, core.OrderByDateID)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	got := ""
	for _, tx := range byDate {
		got += tx.Description
	}
	if got != "acb" {
		t.Fatalf("date order = %q, want %q", got, "acb")
	}

	byID, _ := s.SelectTransactions(ctx, core.OrderByID)
	got = ""
	for _, tx := range byID {
		got += tx.Description
	}
	if got != "cab" {
		t.Fatalf("id order = %q, want %q", got, "cab")
	}
}

func TestMemoryStoreUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, _ := s.InsertTransaction(ctx, d(2024, 2, 1, "x", 10))
	if n, _ := s.UpdateTransaction(ctx, id, d(2024, 2, 2, "y", -10)); n != 1 {
		t.Fatalf("update count = %d", n)
	}
	tx, err := s.GetTransaction(ctx, id)
	if err != nil || tx.Description != "y" || tx.Amount.Cents != -10 {
		t.Fatalf("unexpected row: %+v, %v", tx, err)
	}
	if n, _ := s.UpdateTransaction(ctx, 99, d(2024, 2, 2, "z", 1)); n != 0 {
		t.Fatalf("update of missing id = %d", n)
	}
	if n, _ := s.DeleteTransaction(ctx, id); n != 1 {
		t.Fatalf("delete count = %d", n)
	}
	if n, _ := s.DeleteTransaction(ctx, id); n != 0 {
		t.Fatalf("second delete count = %d", n)
	}
	if _, err := s.GetTransaction(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get after delete = %v", err)
	}

	next, _ := s.InsertTransaction(ctx, d(2024, 2, 3, "w", 1))
	if next <= id {
		t.Fatalf("id %d reused", next)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().InsertTransaction(ctx, d(2024, 1, 1, "a", 1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("insert with cancelled ctx = %v", err)
	}
}
