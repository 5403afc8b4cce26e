package ledger

import (
	"context"
	"time"

	"spendwise/internal/core"
)

// EventType names a ledger mutation.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetUpdated      EventType = "budget.updated"
	BudgetDeleted      EventType = "budget.deleted"
)

// Event describes one successful mutation. Exactly one of Transaction and
// Budget is set.
type Event struct {
	Type        EventType
	Transaction *core.Transaction
	Budget      *core.BudgetLimit
	Revision    uint64
	OccurredAt  time.Time
}

// Observer is notified after each mutation, outside the ledger lock.
type Observer func(ctx context.Context, e Event)
