package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/storage/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg Message) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestDecodeValidates(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"created", `{"type":"transaction.created","transaction":{"id":"1","amount":"5","category":"Food","description":"x","date":"2025-03-01","type":"expense"},"revision":1}`, true},
		{"budget", `{"type":"budget.updated","budget":{"category":"Food","limit":"300"},"revision":2}`, true},
		{"missing payload", `{"type":"transaction.deleted","revision":3}`, false},
		{"unknown type", `{"type":"account.closed"}`, false},
		{"garbage", `{not json`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.body))
			if (err == nil) != tc.ok {
				t.Fatalf("Decode err = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	tx := core.Transaction{
		ID:          "abc",
		Amount:      decimal.RequireFromString("9.99"),
		Category:    "Books",
		Description: "novel",
		Date:        core.NewDate(2025, 2, 1),
		Kind:        core.KindExpense,
	}
	msg := Message{Type: TransactionCreated, Transaction: &tx, Revision: 7, Timestamp: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)}
	b, err := msg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Key() != "abc" || got.Revision != 7 || !got.Transaction.Amount.Equal(tx.Amount) {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestForwarderPublishesLedgerEvents(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.New(ctx, memory.New(), ledger.WithDefaultBudgets(nil))
	if err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	unsubscribe := NewForwarder(pub).Attach(l)
	defer unsubscribe()

	tx, err := l.Add(ctx, ledger.NewTransaction{
		Amount:      decimal.NewFromInt(20),
		Category:    "Food",
		Description: "pizza",
		Date:        core.NewDate(2025, 3, 1),
		Kind:        core.KindExpense,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = l.SetBudget(ctx, "Food", decimal.NewFromInt(300))
	_ = l.Delete(ctx, tx.ID)

	if len(pub.msgs) != 3 {
		t.Fatalf("got %d messages", len(pub.msgs))
	}
	want := []Type{TransactionCreated, BudgetUpdated, TransactionDeleted}
	for i, m := range pub.msgs {
		if m.Type != want[i] || m.Revision != uint64(i+1) {
			t.Fatalf("message %d = %s rev %d", i, m.Type, m.Revision)
		}
	}
	if pub.msgs[2].Key() != tx.ID || pub.msgs[1].Key() != "Food" {
		t.Fatalf("unexpected keys")
	}
}

func TestForwarderSurvivesCancelledRequestAndErrors(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.Observe(ctx, ledger.Event{Type: ledger.BudgetDeleted, Budget: &core.BudgetLimit{Category: "Food"}, Revision: 1})
	if len(pub.msgs) != 1 {
		t.Fatalf("cancelled request context blocked publishing")
	}

	pub.err = errors.New("broker down")
	f.Observe(context.Background(), ledger.Event{Type: ledger.BudgetDeleted, Budget: &core.BudgetLimit{Category: "Food"}, Revision: 2})
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Message{}); err != nil {
		t.Fatal(err)
	}
}
