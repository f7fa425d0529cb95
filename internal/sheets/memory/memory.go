// Package memory is an in-process sheets.Mirror for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"slasher/internal/core"
	"slasher/internal/sheets"
)

var _ sheets.Mirror = (*Mirror)(nil)

type Mirror struct {
	mu       sync.Mutex
	rows     map[int64]core.Transaction
	upserts  int
	removes  int
	replaces int
}

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Transaction)}
}

func (m *Mirror) Upsert(ctx context.Context, tx core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tx.ID] = tx
	m.upserts++
	return nil
}

// Remove drops id. An id that was never mirrored is ignored.
func (m *Mirror) Remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	m.removes++
	return nil
}

func (m *Mirror) Replace(ctx context.Context, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make(map[int64]core.Transaction, len(txs))
	for _, tx := range txs {
		rows[tx.ID] = tx
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
	m.replaces++
	return nil
}

// Rows returns the mirrored transactions ordered by ID.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.rows))
	for _, tx := range m.rows {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Calls reports how many times each operation succeeded.
func (m *Mirror) Calls() (upserts, removes, replaces int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts, m.removes, m.replaces
}
