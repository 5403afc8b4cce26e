package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/seed"
)

func seedOptions() seed.Options {
	return seed.Options{
		Months:           2,
		ExpensesPerMonth: 4,
		Seed:             7,
		Now:              time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRun(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	memoryCfg := &config.Config{DataBackend: "memory", EventsBackend: "none"}

	t.Run("memory backend", func(t *testing.T) {
		if err := run(context.Background(), logger, memoryCfg, seedOptions()); err != nil {
			t.Fatalf("run: %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{DataBackend: "tape", EventsBackend: "none"}
		if err := run(context.Background(), logger, cfg, seedOptions()); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("cancelled before populating", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := run(ctx, logger, memoryCfg, seedOptions())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
