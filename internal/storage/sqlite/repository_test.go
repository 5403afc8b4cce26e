package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "spendwise.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	in := []core.Transaction{
		{ID: "b", Amount: decimal.RequireFromString("12.34"), Category: "Food", Description: "lunch", Date: core.NewDate(2025, 3, 7), Kind: core.KindExpense},
		{ID: "a", Amount: decimal.RequireFromString("1500"), Category: "Income", Description: "salary", Date: core.NewDate(2025, 3, 1), Kind: core.KindIncome},
		{ID: "c", Amount: decimal.RequireFromString("0.99"), Category: "Books", Description: "ebook", Date: core.NewDate(2024, 12, 31), Kind: core.KindExpense},
	}
	for _, tx := range in {
		if err := s.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("save %s: %v", tx.ID, err)
		}
	}
	if err := s.DeleteTransaction(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("unexpected order %+v", got)
	}
	if !got[0].Amount.Equal(in[0].Amount) || got[0].Date.String() != "2025-03-07" || got[0].Kind != core.KindExpense {
		t.Fatalf("fields not preserved: %+v", got[0])
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	tx := core.Transaction{ID: "x", Amount: decimal.NewFromInt(1), Category: "Food", Description: "a", Date: core.NewDate(2025, 1, 1), Kind: core.KindExpense}
	if err := s.SaveTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTransaction(ctx, tx); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestBudgetsUpsertKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	_ = s.SaveBudget(ctx, core.BudgetLimit{Category: "Food", Limit: decimal.NewFromInt(300)})
	_ = s.SaveBudget(ctx, core.BudgetLimit{Category: "Transport", Limit: decimal.NewFromInt(100)})
	if err := s.SaveBudget(ctx, core.BudgetLimit{Category: "Food", Limit: decimal.RequireFromString("275.50")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.LoadBudgets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Category != "Food" || !got[0].Limit.Equal(decimal.RequireFromString("275.5")) {
		t.Fatalf("unexpected budgets %+v", got)
	}

	_ = s.DeleteBudget(ctx, "Food")
	got, _ = s.LoadBudgets(ctx)
	if len(got) != 1 || got[0].Category != "Transport" {
		t.Fatalf("unexpected budgets after delete %+v", got)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	_, path := openTemp(t)
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}
