// Package events carries ledger mutations to other processes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

// Type names a message. The values match ledger.EventType.
type Type string

const (
	TransactionCreated Type = Type(ledger.TransactionCreated)
	TransactionDeleted Type = Type(ledger.TransactionDeleted)
	BudgetUpdated      Type = Type(ledger.BudgetUpdated)
	BudgetDeleted      Type = Type(ledger.BudgetDeleted)
)

// Message is the JSON envelope published for every ledger mutation.
type Message struct {
	Type        Type              `json:"type"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Budget      *core.BudgetLimit `json:"budget,omitempty"`
	Revision    uint64            `json:"revision"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Handler processes one consumed message. A returned error asks the broker
// to redeliver.
type Handler func(ctx context.Context, msg Message) error

// FromLedger converts a ledger event to its wire form.
func FromLedger(e ledger.Event) Message {
	return Message{
		Type:        Type(e.Type),
		Transaction: e.Transaction,
		Budget:      e.Budget,
		Revision:    e.Revision,
		Timestamp:   e.OccurredAt,
	}
}

// Key identifies the record a message is about. Brokers that partition use
// it so events for the same record stay ordered.
func (m Message) Key() string {
	switch {
	case m.Transaction != nil:
		return m.Transaction.ID
	case m.Budget != nil:
		return m.Budget.Category
	default:
		return ""
	}
}

func (m Message) Validate() error {
	switch m.Type {
	case TransactionCreated, TransactionDeleted:
		if m.Transaction == nil {
			return fmt.Errorf("%s message without transaction", m.Type)
		}
	case BudgetUpdated, BudgetDeleted:
		if m.Budget == nil {
			return fmt.Errorf("%s message without budget", m.Type)
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// Encode marshals m to JSON.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses and validates a JSON message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
