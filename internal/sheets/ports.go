package sheets

import (
	"context"

	"spendwise/internal/core"
)

// Mirror keeps a spreadsheet copy of the transaction log. Both operations
// must be idempotent so redelivered events are harmless.
type Mirror interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
	RemoveTransaction(ctx context.Context, id string) error
}

// Header is the first row of a mirror sheet.
var Header = []string{"Date", "Type", "Category", "Description", "Amount", "ID"}

// Row renders tx in Header order.
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		string(tx.Kind),
		tx.Category,
		tx.Description,
		tx.Amount.StringFixed(2),
		tx.ID,
	}
}
