// Package ledger owns the transaction log and budget definitions. It is the
// single source of truth that the analytics engine reads snapshots from.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendwise/internal/catalog"
	"spendwise/internal/core"
)

// ErrNotFound is returned for unknown transaction ids or budget categories.
var ErrNotFound = errors.New("not found")

// NewTransaction is the caller-supplied part of a transaction.
type NewTransaction struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        core.Date
	Kind        core.Kind
}

// Ledger is safe for concurrent use.
type Ledger struct {
	store Store
	now   func() time.Time
	newID func() string

	mu        sync.RWMutex
	txs       []core.Transaction
	index     map[string]int
	budgets   []core.BudgetLimit
	revision  uint64
	observers map[int]Observer
	nextObs   int
}

// Option configures a Ledger.
type Option func(*options)

type options struct {
	now      func() time.Time
	newID    func() string
	defaults []core.BudgetLimit
}

// WithClock sets the clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces uuid v4 ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithDefaultBudgets replaces the limits seeded into an empty store.
// Passing nil disables seeding.
func WithDefaultBudgets(limits []core.BudgetLimit) Option {
	return func(o *options) { o.defaults = limits }
}

// New loads the log and budgets from store. When the store holds no budgets
// the default set is persisted first.
func New(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	o := options{
		now:      time.Now,
		newID:    uuid.NewString,
		defaults: catalog.DefaultBudgets(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	txs, err := store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	txs = loadableTransactions(ctx, txs)
	budgets, err := store.LoadBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	budgets = loadableBudgets(ctx, budgets)

	if len(budgets) == 0 && len(o.defaults) > 0 {
		for _, b := range o.defaults {
			if err := store.SaveBudget(ctx, b); err != nil {
				return nil, fmt.Errorf("seed budget %s: %w", b.Category, err)
			}
		}
		budgets = slices.Clone(o.defaults)
		slog.InfoContext(ctx, "Seeded default budgets", "count", len(budgets))
	}

	l := &Ledger{
		store:     store,
		now:       o.now,
		newID:     o.newID,
		txs:       txs,
		index:     make(map[string]int, len(txs)),
		budgets:   budgets,
		observers: make(map[int]Observer),
	}
	l.reindex()

	slog.InfoContext(ctx, "Ledger loaded",
		"transactions", len(txs),
		"budgets", len(budgets))
	return l, nil
}

// loadableTransactions drops stored records that fail validation or repeat
// an earlier id. The first occurrence of an id wins.
func loadableTransactions(ctx context.Context, txs []core.Transaction) []core.Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := txs[:0:0]
	for _, tx := range txs {
		if tx.ID == "" {
			slog.WarnContext(ctx, "Skipping stored transaction without id")
			continue
		}
		if err := tx.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid stored transaction", "id", tx.ID, "error", err)
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			slog.WarnContext(ctx, "Skipping duplicate stored transaction", "id", tx.ID)
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, tx)
	}
	return out
}

func loadableBudgets(ctx context.Context, budgets []core.BudgetLimit) []core.BudgetLimit {
	seen := make(map[string]struct{}, len(budgets))
	out := budgets[:0:0]
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid stored budget", "category", b.Category, "error", err)
			continue
		}
		if _, dup := seen[b.Category]; dup {
			slog.WarnContext(ctx, "Skipping duplicate stored budget", "category", b.Category)
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b)
	}
	return out
}

func (l *Ledger) reindex() {
	clear(l.index)
	for i, tx := range l.txs {
		l.index[tx.ID] = i
	}
}

// Add validates, persists and appends a transaction.
func (l *Ledger) Add(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	tx := core.Transaction{
		Amount:      core.RoundCents(in.Amount),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Kind:        in.Kind,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	tx.ID = l.newID()
	if err := l.store.SaveTransaction(ctx, tx); err != nil {
		l.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	l.txs = append(l.txs, tx)
	l.index[tx.ID] = len(l.txs) - 1
	ev := l.eventLocked(TransactionCreated)
	ev.Transaction = &tx
	obs := l.observersLocked()
	l.mu.Unlock()

	slog.InfoContext(ctx, "Transaction added",
		"id", tx.ID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount", tx.Amount.StringFixed(2))
	notify(ctx, obs, ev)
	return tx, nil
}

// Delete removes a transaction by id.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	i, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("delete transaction: %w", err)
	}
	removed := l.txs[i]
	l.txs = slices.Delete(l.txs, i, i+1)
	l.reindex()
	ev := l.eventLocked(TransactionDeleted)
	ev.Transaction = &removed
	obs := l.observersLocked()
	l.mu.Unlock()

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	notify(ctx, obs, ev)
	return nil
}

// Transactions returns a copy of the log in insertion order.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.txs)
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (core.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[id]
	if !ok {
		return core.Transaction{}, false
	}
	return l.txs[i], true
}

// BudgetLimits returns a copy of the budget definitions in insertion order.
func (l *Ledger) BudgetLimits() []core.BudgetLimit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.budgets)
}

// Budgets returns every budget with Spent summed over the expenses of the
// calendar month containing now.
func (l *Ledger) Budgets(now time.Time) []core.Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()

	period := core.PeriodOf(now)
	spent := make(map[string]decimal.Decimal, len(l.budgets))
	for _, tx := range l.txs {
		if tx.IsExpense() && period.Contains(tx.Date) {
			spent[tx.Category] = spent[tx.Category].Add(tx.Amount)
		}
	}

	out := make([]core.Budget, 0, len(l.budgets))
	for _, b := range l.budgets {
		out = append(out, core.Budget{
			Category: b.Category,
			Limit:    b.Limit,
			Spent:    spent[b.Category],
		})
	}
	return out
}

// SetBudget creates or replaces the limit for category.
func (l *Ledger) SetBudget(ctx context.Context, category string, limit decimal.Decimal) (core.BudgetLimit, error) {
	b := core.BudgetLimit{Category: strings.TrimSpace(category), Limit: core.RoundCents(limit)}
	if err := b.Validate(); err != nil {
		return core.BudgetLimit{}, err
	}

	l.mu.Lock()
	if err := l.store.SaveBudget(ctx, b); err != nil {
		l.mu.Unlock()
		return core.BudgetLimit{}, fmt.Errorf("save budget: %w", err)
	}
	if i := l.budgetIndexLocked(b.Category); i >= 0 {
		l.budgets[i] = b
	} else {
		l.budgets = append(l.budgets, b)
	}
	ev := l.eventLocked(BudgetUpdated)
	ev.Budget = &b
	obs := l.observersLocked()
	l.mu.Unlock()

	slog.InfoContext(ctx, "Budget updated", "category", b.Category, "limit", b.Limit.StringFixed(2))
	notify(ctx, obs, ev)
	return b, nil
}

// DeleteBudget removes the limit for category.
func (l *Ledger) DeleteBudget(ctx context.Context, category string) error {
	l.mu.Lock()
	i := l.budgetIndexLocked(category)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("budget %s: %w", category, ErrNotFound)
	}
	if err := l.store.DeleteBudget(ctx, category); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("delete budget: %w", err)
	}
	removed := l.budgets[i]
	l.budgets = slices.Delete(l.budgets, i, i+1)
	ev := l.eventLocked(BudgetDeleted)
	ev.Budget = &removed
	obs := l.observersLocked()
	l.mu.Unlock()

	slog.InfoContext(ctx, "Budget deleted", "category", category)
	notify(ctx, obs, ev)
	return nil
}

// Revision increases by one on every successful mutation.
func (l *Ledger) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}

// Subscribe registers o and returns a function that removes it.
func (l *Ledger) Subscribe(o Observer) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = o
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.observers, id)
			l.mu.Unlock()
		})
	}
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

func (l *Ledger) budgetIndexLocked(category string) int {
	return slices.IndexFunc(l.budgets, func(b core.BudgetLimit) bool {
		return b.Category == category
	})
}

func (l *Ledger) eventLocked(t EventType) Event {
	l.revision++
	return Event{Type: t, Revision: l.revision, OccurredAt: l.now()}
}

func (l *Ledger) observersLocked() []Observer {
	ids := make([]int, 0, len(l.observers))
	for id := range l.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.observers[id])
	}
	return out
}

func notify(ctx context.Context, obs []Observer, e Event) {
	for _, o := range obs {
		o(ctx, e)
	}
}
