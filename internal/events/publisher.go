package events

import (
	"context"
	"log/slog"
	"time"

	"spendwise/internal/ledger"
)

// Publisher sends messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Consumer delivers broker messages to a handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Publish(context.Context, Message) error { return nil }

func (Nop) Close() error { return nil }

const publishTimeout = 5 * time.Second

// Forwarder publishes every ledger event. Publish failures are logged and
// never reach the caller that mutated the ledger.
type Forwarder struct {
	pub Publisher
}

func NewForwarder(pub Publisher) *Forwarder {
	return &Forwarder{pub: pub}
}

// Attach subscribes the forwarder to l and returns the unsubscribe function.
func (f *Forwarder) Attach(l *ledger.Ledger) func() {
	return l.Subscribe(f.Observe)
}

// Observe is a ledger.Observer.
func (f *Forwarder) Observe(ctx context.Context, e ledger.Event) {
	msg := FromLedger(e)

	// The request context may be cancelled as soon as the handler returns.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := f.pub.Publish(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", msg.Type,
			"key", msg.Key(),
			"revision", msg.Revision,
			"error", err)
		return
	}
	slog.DebugContext(ctx, "Published ledger event", "type", msg.Type, "revision", msg.Revision)
}
