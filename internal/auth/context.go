package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const authenticatedKey contextKey = "authenticated"

// ContextWithAuthenticated marks the context as carrying an authenticated
// caller.
func ContextWithAuthenticated(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authenticatedKey, true)
}

// IsAuthenticated reports whether the context carries an authenticated
// caller.
func IsAuthenticated(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	value, ok := ctx.Value(authenticatedKey).(bool)
	return ok && value
}

// Middleware checks the bearer token on every request. The policy is only
// "is the caller authenticated"; there is no per-record authorization.
func Middleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				// No token configured: open instance (local development).
				next.ServeHTTP(w, r.WithContext(ContextWithAuthenticated(r.Context())))
				return
			}
			provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithAuthenticated(r.Context())))
		})
	}
}
