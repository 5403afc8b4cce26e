package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type TransactionRow struct {
	ID          string
	AmountCents int64
	Category    string
	Description string
	Date        string
	Kind        string
}

const listTransactions = `
SELECT id, amount_cents, category, description, date, kind
FROM transactions
ORDER BY seq`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.AmountCents, &i.Category, &i.Description, &i.Date, &i.Kind); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertTransaction = `
INSERT INTO transactions (id, amount_cents, category, description, date, kind)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.AmountCents, arg.Category, arg.Description, arg.Date, arg.Kind)
	return err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}

type BudgetRow struct {
	Category   string
	LimitCents int64
}

const listBudgets = `SELECT category, limit_cents FROM budgets ORDER BY seq`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetRow
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.Category, &i.LimitCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertBudget = `
INSERT INTO budgets (category, limit_cents)
VALUES (?, ?)
ON CONFLICT (category) DO UPDATE SET
    limit_cents = excluded.limit_cents,
    updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertBudget(ctx context.Context, arg BudgetRow) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, arg.Category, arg.LimitCents)
	return err
}

const deleteBudget = `DELETE FROM budgets WHERE category = ?`

func (q *Queries) DeleteBudget(ctx context.Context, category string) error {
	_, err := q.db.ExecContext(ctx, deleteBudget, category)
	return err
}
