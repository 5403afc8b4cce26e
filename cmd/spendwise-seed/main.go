package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/events"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	months := flag.Int("months", defaults.Months, "months of history to generate, ending this month")
	perMonth := flag.Int("expenses", defaults.ExpensesPerMonth, "expenses generated per month")
	seedValue := flag.Int64("seed", 0, "random seed; 0 picks one")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentSeed)
	cfg := cli.LoadAndValidateConfig(logger.Logger, nil)

	opts := defaults
	opts.Months, opts.ExpensesPerMonth, opts.Seed = *months, *perMonth, *seedValue

	ctx, stop := cli.GracefulShutdown(logger.Logger)
	err := run(ctx, logger, cfg, opts)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config, opts seed.Options) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.WarnContext(ctx, "Seeding a memory store; data is discarded on exit")
	}

	components, cleanup, err := backend.Build(ctx, backend.NewFactory(logger.Logger), backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", backendCfg.Type, err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup failed", "error", err)
		}
	}()

	l, err := ledger.New(ctx, components.Store)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	// Forward events so a running mirror worker picks up the demo data.
	defer events.NewForwarder(components.Publisher).Attach(l)()

	txs := seed.NewGenerator(opts).Transactions()
	n, err := seed.Populate(ctx, l, txs)
	if err != nil {
		return fmt.Errorf("seeding stopped after %d transactions: %w", n, err)
	}
	logger.InfoContext(ctx, "Seed complete",
		"transactions", n,
		"revision", l.Revision(),
		"backend", backendCfg.Type)
	return nil
}
