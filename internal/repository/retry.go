package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// readRetry retries an idempotent read once on failure. Mutations never go
// through here. Cancellation and no-rows results are surfaced immediately.
func readRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || ctx.Err() != nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fn()
}
