package addressloader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/repository"
)

// AddressLoader batches address lookups issued within one request window
// into a single GetByIDs call.
type AddressLoader struct {
	Loader *dataloader.Loader
}

// NewAddressLoader creates a loader over the address repository.
func NewAddressLoader(repo repository.AddressRepository) *AddressLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, key := range keys {
			id, err := uuid.Parse(key.String())
			if err != nil {
				// The batch contract requires one result per key.
				results := make([]*dataloader.Result, len(keys))
				for j := range results {
					results[j] = &dataloader.Result{Error: fmt.Errorf("invalid address key %q: %w", key.String(), err)}
				}
				return results
			}
			ids[i] = id
		}

		resolved, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if address, ok := resolved[id]; ok {
				results[i] = &dataloader.Result{Data: address}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &AddressLoader{Loader: loader}
}

// Load resolves one address through the batch window.
func (l *AddressLoader) Load(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	thunk := l.Loader.Load(ctx, dataloader.StringKey(id.String()))
	raw, err := thunk()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	address, ok := raw.(domain.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected type for address %s", id)
	}
	return &address, nil
}
