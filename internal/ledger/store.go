package ledger

import (
	"context"

	"spendwise/internal/core"
)

// Store persists the transaction log and budget definitions.
// LoadTransactions and LoadBudgets return records in insertion order.
// Deleting a missing record is not an error.
type Store interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	LoadBudgets(ctx context.Context) ([]core.BudgetLimit, error)
	// SaveBudget inserts or replaces the limit for b.Category.
	SaveBudget(ctx context.Context, b core.BudgetLimit) error
	DeleteBudget(ctx context.Context, category string) error

	Close() error
}
