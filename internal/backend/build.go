package backend

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/events"
	"spendwise/internal/ledger"
)

// Components is the infrastructure the API process runs on.
type Components struct {
	Store     ledger.Store
	Publisher events.Publisher
}

// Build opens the store and publisher described by config. The returned
// cleanup closes the publisher before the store and must be called once
// the ledger is no longer used.
func Build(ctx context.Context, f Factory, config Config) (Components, CleanupFunc, error) {
	store, err := f.CreateStore(ctx, config)
	if err != nil {
		return Components{}, nil, err
	}

	pub, err := f.CreatePublisher(ctx, config)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", closeErr))
		}
		return Components{}, nil, err
	}

	cleanup := func() error {
		var errs []error
		if err := pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		return errors.Join(errs...)
	}
	return Components{Store: store, Publisher: pub}, cleanup, nil
}
