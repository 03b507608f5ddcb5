package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL used by SQLiteRepository, one method per statement.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Saving is a row of the savings table.
type Saving struct {
	Category    string
	Target      int64
	TotalSaving int64
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID             int64
	Time           string
	SavingCategory string
	GoldPrice      int64
	GoldQuantity   string
	Product        string
}

const listSavings = `
SELECT category, target, total_saving FROM savings ORDER BY rowid
`

func (q *Queries) ListSavings(ctx context.Context) ([]Saving, error) {
	rows, err := q.db.QueryContext(ctx, listSavings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Saving
	for rows.Next() {
		var i Saving
		if err := rows.Scan(&i.Category, &i.Target, &i.TotalSaving); err != nil {
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

const upsertSavingTarget = `
INSERT INTO savings (category, target, total_saving) VALUES (?, ?, 0)
ON CONFLICT(category) DO UPDATE SET target = excluded.target
`

func (q *Queries) UpsertSavingTarget(ctx context.Context, category string, target int64) error {
	_, err := q.db.ExecContext(ctx, upsertSavingTarget, category, target)
	return err
}

const addToSavingTotal = `
INSERT INTO savings (category, target, total_saving) VALUES (?, 0, ?)
ON CONFLICT(category) DO UPDATE SET total_saving = total_saving + excluded.total_saving
`

func (q *Queries) AddToSavingTotal(ctx context.Context, category string, amount int64) error {
	_, err := q.db.ExecContext(ctx, addToSavingTotal, category, amount)
	return err
}

const subtractFromSavingTotal = `
UPDATE savings SET total_saving = MAX(total_saving - ?, 0) WHERE category = ?
`

func (q *Queries) SubtractFromSavingTotal(ctx context.Context, category string, amount int64) error {
	_, err := q.db.ExecContext(ctx, subtractFromSavingTotal, amount, category)
	return err
}

const deleteSaving = `
DELETE FROM savings WHERE category = ?
`

func (q *Queries) DeleteSaving(ctx context.Context, category string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSaving, category)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createTransaction = `
INSERT INTO transactions (time, saving_category, gold_price, gold_quantity, product)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	Time           string
	SavingCategory string
	GoldPrice      int64
	GoldQuantity   string
	Product        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Time,
		arg.SavingCategory,
		arg.GoldPrice,
		arg.GoldQuantity,
		arg.Product,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getTransaction = `
SELECT id, time, saving_category, gold_price, gold_quantity, product
FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(&i.ID, &i.Time, &i.SavingCategory, &i.GoldPrice, &i.GoldQuantity, &i.Product)
	return i, err
}

const listTransactions = `
SELECT id, time, saving_category, gold_price, gold_quantity, product
FROM transactions ORDER BY id DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.Time, &i.SavingCategory, &i.GoldPrice, &i.GoldQuantity, &i.Product); err != nil {
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

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}
