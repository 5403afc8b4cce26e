package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/events"
	apphttp "spendwise/internal/http"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

const cacheCleanupInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger, nil)

	ctx, stop := cli.GracefulShutdown(logger.Logger)
	err := run(ctx, logger, cfg)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Server stopped gracefully")
}

// run serves until ctx is cancelled. Deferred cleanup has completed by the
// time it returns.
func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
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
	detach := events.NewForwarder(components.Publisher).Attach(l)
	defer detach()

	caches := cache.NewManager()
	srv := apphttp.NewServer(":"+cfg.Port, l, analytics.NewEngine(), apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		InsightsCacheTTL:   cfg.InsightsCacheTTL,
		InsightsCacheSize:  cfg.InsightsCacheSize,
		Logger:             logger,
		CacheManager:       caches,
	})
	caches.StartCleanup(cacheCleanupInterval)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(ctx, "Starting spendwise server",
			"port", cfg.Port,
			"backend", backendCfg.Type,
			"events", backendCfg.Events)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
