package sheets

import (
	"context"

	"slasher/internal/core"
)

// Mirror is a read-only copy of the transactions kept outside the store,
// one row per transaction keyed by storage id.
type Mirror interface {
	// Upsert writes tx, replacing the row with the same id if there is one.
	Upsert(ctx context.Context, tx core.Transaction) error
	// Remove drops the row for id. Removing an absent id is not an error.
	Remove(ctx context.Context, id int64) error
	// Replace rewrites the whole mirror with txs, in order.
	Replace(ctx context.Context, txs []core.Transaction) error
}
