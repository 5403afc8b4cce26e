package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"spendwise/internal/core"
	"spendwise/internal/events"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestPublishKeysByRecord(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, topic: "ledger"}

	tx := core.Transaction{ID: "tx-9", Kind: core.KindExpense}
	if err := p.Publish(context.Background(), events.Message{Type: events.TransactionDeleted, Transaction: &tx, Revision: 3}); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "tx-9" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	if h := w.msgs[0].Headers; len(h) != 1 || string(h[0].Value) != "transaction.deleted" {
		t.Fatalf("unexpected headers %+v", h)
	}
	if _, err := events.Decode(w.msgs[0].Value); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
}

func TestConsumeCommitsAfterHandling(t *testing.T) {
	good := []byte(`{"type":"budget.updated","budget":{"category":"Food","limit":"100"},"revision":1}`)
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: good},
		{Offset: 2, Value: []byte("garbage")},
		{Offset: 3, Value: good},
	}}
	c := &Consumer{reader: r, topic: "ledger"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled int
	err := c.Consume(ctx, func(context.Context, events.Message) error {
		handled++
		if handled == 2 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Consume = %v", err)
	}
	if handled != 2 {
		t.Fatalf("handled %d messages", handled)
	}
	// The undecodable message is committed so it is not redelivered.
	if len(r.committed) < 2 || r.committed[0] != 1 || r.committed[1] != 2 {
		t.Fatalf("committed %v", r.committed)
	}
}

func TestHandleRetriesUntilSuccess(t *testing.T) {
	c := &Consumer{reader: &fakeReader{}}
	good := kafka.Message{Value: []byte(`{"type":"budget.deleted","budget":{"category":"Food","limit":"1"}}`)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts := 0
	err := c.handle(ctx, good, func(context.Context, events.Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("sheet unavailable")
		}
		return nil
	})
	if err != nil || attempts != 2 {
		t.Fatalf("handle = %v after %d attempts", err, attempts)
	}
}
