package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks lookups whose id has no row. Handlers surface it as 404.
var ErrNotFound = errors.New("not found")

// ErrValidation marks malformed filter or pagination input, rejected before
// any query executes. Handlers surface it as 400.
var ErrValidation = errors.New("invalid input")

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// ReconcileWarning reports media deletes that failed during a reconcile whose
// record update otherwise succeeded. It is a response field, not an error.
type ReconcileWarning struct {
	FailedDeletes []string `json:"failedDeletes"`
}

// Message renders the warning for response payloads and logs.
func (w *ReconcileWarning) Message() string {
	if w == nil || len(w.FailedDeletes) == 0 {
		return ""
	}
	return fmt.Sprintf("failed to delete %d media handle(s): %s",
		len(w.FailedDeletes), strings.Join(w.FailedDeletes, ", "))
}
