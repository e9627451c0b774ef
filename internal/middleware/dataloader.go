package middleware

import (
	"context"
	"net/http"

	"textile-backoffice/internal/addressloader"
	"textile-backoffice/internal/repository"
)

type ctxKey string

const addressLoaderKey ctxKey = "addressLoader"

// DataLoaderMiddleware attaches a fresh per-request address loader to the
// context so handlers resolving multiple addresses share one batch window.
func DataLoaderMiddleware(repo repository.AddressRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := addressloader.NewAddressLoader(repo)
			ctx := context.WithValue(r.Context(), addressLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AddressLoaderFromContext retrieves the request's address loader, if any.
func AddressLoaderFromContext(ctx context.Context) *addressloader.AddressLoader {
	if l, ok := ctx.Value(addressLoaderKey).(*addressloader.AddressLoader); ok {
		return l
	}
	return nil
}
