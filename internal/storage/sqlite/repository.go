// Package sqlite stores the ledger in a local SQLite database using the
// pure-Go modernc driver. Amounts are kept as integer cents.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db      *sql.DB
	queries *Queries
}

// Open creates the database file if needed and migrates it.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, queries: NewQueries(db)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
		}
		out = append(out, core.Transaction{
			ID:          r.ID,
			Amount:      core.FromCents(r.AmountCents),
			Category:    r.Category,
			Description: r.Description,
			Date:        date,
			Kind:        core.Kind(r.Kind),
		})
	}
	return out, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	err := s.queries.InsertTransaction(ctx, TransactionRow{
		ID:          tx.ID,
		AmountCents: core.Cents(tx.Amount),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
		Kind:        string(tx.Kind),
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"amount_cents", core.Cents(tx.Amount),
		"date", tx.Date.String())
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.queries.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) LoadBudgets(ctx context.Context) ([]core.BudgetLimit, error) {
	rows, err := s.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.BudgetLimit, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.BudgetLimit{Category: r.Category, Limit: core.FromCents(r.LimitCents)})
	}
	return out, nil
}

func (s *Store) SaveBudget(ctx context.Context, b core.BudgetLimit) error {
	if err := s.queries.UpsertBudget(ctx, BudgetRow{Category: b.Category, LimitCents: core.Cents(b.Limit)}); err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, category string) error {
	if err := s.queries.DeleteBudget(ctx, category); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
