package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Transaction is one row of the transactions table.
type Transaction struct {
	ID          int64
	Date        string
	Description string
	Tags        string
	AmountCents int64
}

const createTransaction = `
INSERT INTO transactions (date, description, tags, amount_cents)
VALUES (?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	Date        string
	Description string
	Tags        string
	AmountCents int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Date,
		arg.Description,
		arg.Tags,
		arg.AmountCents,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getTransaction = `
SELECT id, date, description, tags, amount_cents
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Description,
		&i.Tags,
		&i.AmountCents,
	)
	return i, err
}

const listTransactionsByDate = `
SELECT id, date, description, tags, amount_cents
FROM transactions
ORDER BY date ASC, id ASC
`

func (q *Queries) ListTransactionsByDate(ctx context.Context) ([]Transaction, error) {
	return q.listTransactions(ctx, listTransactionsByDate)
}

const listTransactionsByID = `
SELECT id, date, description, tags, amount_cents
FROM transactions
ORDER BY id ASC
`

func (q *Queries) ListTransactionsByID(ctx context.Context) ([]Transaction, error) {
	return q.listTransactions(ctx, listTransactionsByID)
}

func (q *Queries) listTransactions(ctx context.Context, query string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Description,
			&i.Tags,
			&i.AmountCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `
UPDATE transactions
SET date = ?, description = ?, tags = ?, amount_cents = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateTransactionParams struct {
	Date        string
	Description string
	Tags        string
	AmountCents int64
	ID          int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date,
		arg.Description,
		arg.Tags,
		arg.AmountCents,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions
WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
