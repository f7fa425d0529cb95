// Package memory is a process-local transaction store. Nothing survives a
// restart; it backs tests and DATA_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"slasher/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Transaction
}

// New returns an empty store. Seed drafts are inserted in order.
func New(seed ...core.Draft) *Store {
	s := &Store{items: make(map[int64]core.Transaction)}
	for _, d := range seed {
		s.insert(d)
	}
	return s
}

func (s *Store) EnsureSchema(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// InsertTransaction stores d. Ids only ever grow, so a deleted id is never reused.
func (s *Store) InsertTransaction(ctx context.Context, d core.Draft) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(d), nil
}

func (s *Store) insert(d core.Draft) int64 {
	s.nextID++
	s.items[s.nextID] = core.Transaction{
		ID:          s.nextID,
		Date:        d.Date,
		Description: d.Description,
		Tags:        d.Tags,
		Amount:      d.Amount,
	}
	return s.nextID
}

func (s *Store) SelectTransactions(ctx context.Context, order core.Order) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		out = append(out, tx)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if order == core.OrderByDateID && !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetTransaction returns the row with id, or core.ErrNotFound.
func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id int64, d core.Draft) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	s.items[id] = core.Transaction{
		ID:          id,
		Date:        d.Date,
		Description: d.Description,
		Tags:        d.Tags,
		Amount:      d.Amount,
	}
	return 1, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	return 1, nil
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
