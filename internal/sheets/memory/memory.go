// Package memory is an in-process Mirror, used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/sheets"
)

var _ sheets.Mirror = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// AppendTransaction records tx unless a row with its id already exists.
func (s *Store) AppendTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.items, func(x core.Transaction) bool { return x.ID == tx.ID }) {
		return nil
	}
	s.items = append(s.items, tx)
	return nil
}

func (s *Store) RemoveTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(x core.Transaction) bool { return x.ID == id })
	return nil
}

// Rows returns the mirrored rows in append order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, 0, len(s.items))
	for _, tx := range s.items {
		out = append(out, sheets.Row(tx))
	}
	return out
}
