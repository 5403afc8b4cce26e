package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateWorker)

	ctx, stop := cli.GracefulShutdown(logger.Logger)
	err := run(ctx, logger, cfg)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "Worker exited with error", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Worker stopped gracefully")
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	logger.InfoContext(ctx, "Starting spendwise-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	factory := backend.NewFactory(logger.Logger)

	mirror, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize mirror: %w", err)
	}
	w := worker.NewMirrorWorker(mirror)

	// A memory store lives inside the API process, so there is nothing to
	// recover from it here.
	if backendCfg.Type != backend.MemoryBackend {
		backfill(ctx, logger, factory, backendCfg, w)
	}

	consumer, err := factory.CreateConsumer(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s consumer: %w", backendCfg.Events, err)
	}
	defer consumer.Close()

	if err := consumer.Consume(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume: %w", err)
	}
	return nil
}

// backfill mirrors the persisted log once at start-up. Failures are logged
// and the worker keeps consuming.
func backfill(ctx context.Context, logger *applog.Logger, factory backend.Factory, cfg backend.Config, w *worker.MirrorWorker) {
	store, err := factory.CreateStore(ctx, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Skipping backfill, store unavailable", "error", err)
		return
	}
	defer store.Close()

	txs, err := store.LoadTransactions(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Skipping backfill, cannot load transactions", "error", err)
		return
	}
	if _, err := w.Backfill(ctx, txs); err != nil {
		logger.ErrorContext(ctx, "Backfill incomplete", "error", err)
	}
}
