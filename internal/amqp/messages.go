package amqp

import (
	"encoding/json"
	"time"

	"budget/internal/core"
)

const (
	EventRecorded = "transaction.recorded"
	EventUndone   = "transaction.undone"
)

// LedgerEvent describes one ledger mutation. It carries the full row so
// consumers can build an audit trail without a read back into the ledger.
type LedgerEvent struct {
	Event         string    `json:"event"`
	TransactionID int64     `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	DisplayID     string    `json:"display_id"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent builds an event from a ledger row.
func NewLedgerEvent(event string, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		Event:         event,
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		DisplayID:     tx.DisplayID,
		Type:          string(tx.Type),
		Category:      tx.Category,
		AmountCents:   tx.Amount.Cents,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
