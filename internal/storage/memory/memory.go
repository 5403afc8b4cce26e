// Package memory is a process-local ledger store. Nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"spendwise/internal/core"
)

type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.BudgetLimit
}

func New() *Store {
	return &Store{}
}

// NewWith returns a store preloaded with txs and budgets.
func NewWith(txs []core.Transaction, budgets []core.BudgetLimit) *Store {
	return &Store{txs: slices.Clone(txs), budgets: slices.Clone(budgets)}
}

func (s *Store) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), nil
}

func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = slices.DeleteFunc(s.txs, func(tx core.Transaction) bool { return tx.ID == id })
	return nil
}

func (s *Store) LoadBudgets(_ context.Context) ([]core.BudgetLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.budgets), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.BudgetLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].Category == b.Category {
			s.budgets[i] = b
			return nil
		}
	}
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = slices.DeleteFunc(s.budgets, func(b core.BudgetLimit) bool { return b.Category == category })
	return nil
}

func (s *Store) Close() error { return nil }
