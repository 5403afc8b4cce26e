// Package kafka publishes and consumes ledger events on a Kafka topic.
// Messages are keyed by record so a partition sees one record's events in
// order.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"spendwise/internal/events"
)

const (
	retryDelay    = time.Second
	maxRetryDelay = 30 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	topic  string
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		topic: topic,
	}
}

func (p *Publisher) Publish(ctx context.Context, msg events.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key()),
		Value: data,
		Time:  msg.Timestamp,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	slog.InfoContext(ctx, "Published ledger event",
		"type", msg.Type,
		"key", msg.Key(),
		"revision", msg.Revision,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

type Consumer struct {
	reader messageReader
	topic  string
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		topic: topic,
	}
}

// Consume fetches messages until ctx is done. Offsets are committed after the
// handler succeeds. A failing handler is retried with backoff on the same
// message; undecodable messages are committed and skipped.
func (c *Consumer) Consume(ctx context.Context, h events.Handler) error {
	slog.InfoContext(ctx, "Started consuming ledger events", "topic", c.topic)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		if err := c.handle(ctx, m, h); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("commit offset %d: %w", m.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message, h events.Handler) error {
	msg, err := events.Decode(m.Value)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable message",
			"partition", m.Partition,
			"offset", m.Offset,
			"error", err)
		return nil
	}

	delay := retryDelay
	for {
		err := h(ctx, msg)
		if err == nil {
			return nil
		}
		slog.ErrorContext(ctx, "Failed to handle message, retrying",
			"type", msg.Type,
			"key", msg.Key(),
			"backoff", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
