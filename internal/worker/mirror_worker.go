// Package worker applies consumed ledger events to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
	"spendwise/internal/events"
	"spendwise/internal/sheets"
)

type MirrorWorker struct {
	mirror sheets.Mirror
}

func NewMirrorWorker(mirror sheets.Mirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// Handle is an events.Handler. Budget events have no sheet representation
// and are only logged.
func (w *MirrorWorker) Handle(ctx context.Context, msg events.Message) error {
	switch msg.Type {
	case events.TransactionCreated:
		slog.InfoContext(ctx, "Mirroring new transaction",
			"id", msg.Transaction.ID,
			"revision", msg.Revision)
		if err := w.mirror.AppendTransaction(ctx, *msg.Transaction); err != nil {
			return fmt.Errorf("append transaction %s: %w", msg.Transaction.ID, err)
		}

	case events.TransactionDeleted:
		slog.InfoContext(ctx, "Removing mirrored transaction",
			"id", msg.Transaction.ID,
			"revision", msg.Revision)
		if err := w.mirror.RemoveTransaction(ctx, msg.Transaction.ID); err != nil {
			return fmt.Errorf("remove transaction %s: %w", msg.Transaction.ID, err)
		}

	case events.BudgetUpdated, events.BudgetDeleted:
		slog.InfoContext(ctx, "Budget event received",
			"type", msg.Type,
			"category", msg.Budget.Category,
			"revision", msg.Revision)

	default:
		slog.WarnContext(ctx, "Ignoring unknown event", "type", msg.Type)
	}
	return nil
}

// Backfill mirrors every transaction in txs. It recovers rows missed while
// the worker was down; appends are idempotent so existing rows are skipped.
func (w *MirrorWorker) Backfill(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		slog.InfoContext(ctx, "No transactions to backfill")
		return 0, nil
	}
	slog.InfoContext(ctx, "Backfilling sheet mirror", "count", len(txs))

	synced, failed := 0, 0
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.mirror.AppendTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to backfill transaction", "id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Backfill completed", "synced", synced, "failed", failed)
	if failed > 0 {
		return synced, fmt.Errorf("backfill: %d of %d transactions failed", failed, len(txs))
	}
	return synced, nil
}
