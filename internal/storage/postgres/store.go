// Package postgres stores the ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to url, verifies the connection and migrates the schema.
func Open(ctx context.Context, url string) (*Store, error) {
	if err := RunMigrations(url); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, amount::text, category, description, date, kind
		FROM transactions
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx     core.Transaction
			amount string
			date   time.Time
			kind   string
		)
		if err := rows.Scan(&tx.ID, &amount, &tx.Category, &tx.Description, &date, &kind); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", tx.ID, err)
		}
		tx.Date = core.DateOf(date)
		tx.Kind = core.Kind(kind)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, amount, category, description, date, kind)
		VALUES ($1, $2::numeric, $3, $4, $5, $6)`,
		tx.ID, tx.Amount.StringFixed(2), tx.Category, tx.Description, tx.Date.Time, string(tx.Kind))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) LoadBudgets(ctx context.Context) ([]core.BudgetLimit, error) {
	rows, err := s.pool.Query(ctx, `SELECT category, amount::text FROM budgets ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetLimit
	for rows.Next() {
		var (
			b      core.BudgetLimit
			amount string
		)
		if err := rows.Scan(&b.Category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Limit, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("budget %s limit: %w", b.Category, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (s *Store) SaveBudget(ctx context.Context, b core.BudgetLimit) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO budgets (category, amount)
		VALUES ($1, $2::numeric)
		ON CONFLICT (category) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = now()`,
		b.Category, b.Limit.StringFixed(2))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, category string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM budgets WHERE category = $1`, category); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
