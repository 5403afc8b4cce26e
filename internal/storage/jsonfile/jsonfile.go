// Package jsonfile keeps the ledger in one JSON document on disk. The whole
// document is rewritten on every mutation through a temp file and rename, so
// a crash leaves either the old or the new version.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"spendwise/internal/core"
)

// document is the on-disk layout. Transactions live under "expenses".
type document struct {
	Expenses []core.Transaction `json:"expenses"`
	Budgets  []core.BudgetLimit `json:"budgets,omitempty"`
}

type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open reads path, creating parent directories. A missing file is an empty log.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	case len(b) == 0:
		return s, nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) LoadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.doc.Expenses), nil
}

func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc
	next.Expenses = append(slices.Clone(s.doc.Expenses), tx)
	return s.commitLocked(next)
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.doc.Expenses, func(tx core.Transaction) bool { return tx.ID == id })
	if i < 0 {
		return nil
	}
	next := s.doc
	next.Expenses = slices.Delete(slices.Clone(s.doc.Expenses), i, i+1)
	return s.commitLocked(next)
}

func (s *Store) LoadBudgets(_ context.Context) ([]core.BudgetLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.doc.Budgets), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.BudgetLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc
	next.Budgets = slices.Clone(s.doc.Budgets)
	if i := slices.IndexFunc(next.Budgets, func(x core.BudgetLimit) bool { return x.Category == b.Category }); i >= 0 {
		next.Budgets[i] = b
	} else {
		next.Budgets = append(next.Budgets, b)
	}
	return s.commitLocked(next)
}

func (s *Store) DeleteBudget(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc
	next.Budgets = slices.DeleteFunc(slices.Clone(s.doc.Budgets), func(x core.BudgetLimit) bool { return x.Category == category })
	return s.commitLocked(next)
}

func (s *Store) Close() error { return nil }

// commitLocked writes next to disk and only then makes it current.
func (s *Store) commitLocked(next document) error {
	if next.Expenses == nil {
		next.Expenses = []core.Transaction{}
	}
	b, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.doc = next
	return nil
}
