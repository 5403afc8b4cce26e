package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

func TestMirrorIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := core.Transaction{
		ID:          "a",
		Amount:      decimal.RequireFromString("3.5"),
		Category:    "Food",
		Description: "coffee",
		Date:        core.NewDate(2025, 3, 1),
		Kind:        core.KindExpense,
	}

	_ = s.AppendTransaction(ctx, tx)
	_ = s.AppendTransaction(ctx, tx)
	rows := s.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][4] != "3.50" || rows[0][5] != "a" || rows[0][0] != "2025-03-01" {
		t.Fatalf("unexpected row %v", rows[0])
	}

	_ = s.RemoveTransaction(ctx, "a")
	_ = s.RemoveTransaction(ctx, "a")
	if len(s.Rows()) != 0 {
		t.Fatalf("row not removed")
	}
}
