// Package worker consumes ledger events and appends them to the durable
// audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/storage"
)

// AuditWorker turns ledger mutation events into audit_log rows.
type AuditWorker struct {
	storage *storage.SQLiteRepository
}

func NewAuditWorker(storage *storage.SQLiteRepository) *AuditWorker {
	return &AuditWorker{storage: storage}
}

// HandleEvent processes a single ledger event. Returning an error requeues
// the delivery, so the write must be safe to repeat; the audit log is a
// trail, duplicates under redelivery are acceptable.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event", msg.Event,
		"transaction_id", msg.TransactionID,
		"display_id", msg.DisplayID)

	err := w.storage.InsertAuditEntry(ctx, storage.AuditEntry{
		Event:         msg.Event,
		UserID:        msg.UserID,
		TransactionID: msg.TransactionID,
		DisplayID:     msg.DisplayID,
		Type:          msg.Type,
		Category:      msg.Category,
		AmountCents:   msg.AmountCents,
		RecordedAt:    msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
