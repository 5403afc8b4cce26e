package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

func TestTransactionsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveTransaction(ctx, core.Transaction{ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	if err := s.DeleteTransaction(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}

	got, _ := s.LoadTransactions(ctx)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected log: %+v", got)
	}

	// Returned slices are copies.
	got[0].ID = "changed"
	again, _ := s.LoadTransactions(ctx)
	if again[0].ID != "a" {
		t.Fatalf("store aliased caller slice")
	}
}

func TestSaveBudgetUpserts(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SaveBudget(ctx, core.BudgetLimit{Category: "Food", Limit: decimal.NewFromInt(100)})
	_ = s.SaveBudget(ctx, core.BudgetLimit{Category: "Books", Limit: decimal.NewFromInt(50)})
	_ = s.SaveBudget(ctx, core.BudgetLimit{Category: "Food", Limit: decimal.NewFromInt(300)})

	got, _ := s.LoadBudgets(ctx)
	if len(got) != 2 || got[0].Category != "Food" || !got[0].Limit.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected budgets: %+v", got)
	}

	_ = s.DeleteBudget(ctx, "Food")
	got, _ = s.LoadBudgets(ctx)
	if len(got) != 1 || got[0].Category != "Books" {
		t.Fatalf("unexpected budgets after delete: %+v", got)
	}
}
