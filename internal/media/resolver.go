package media

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"textile-backoffice/internal/domain"
)

// RawFile is an uploaded file awaiting storage.
type RawFile struct {
	Name string
	Data []byte
}

// Resolver converts stored handles into readable URLs and reconciles a
// record's media collection against a client-submitted retained set.
type Resolver struct {
	store  BlobStore
	urlTTL time.Duration
	fanout int
	logger *zap.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithURLTTL sets the signed URL lifetime.
func WithURLTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.urlTTL = ttl
		}
	}
}

// WithFanout bounds the number of concurrent blob calls per reconcile.
func WithFanout(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.fanout = n
		}
	}
}

// NewResolver creates a media resolver.
func NewResolver(store BlobStore, logger *zap.Logger, opts ...Option) *Resolver {
	resolver := &Resolver{
		store:  store,
		urlTTL: 15 * time.Minute,
		fanout: 4,
		logger: logger,
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// ResolveURL signs a fresh time-bounded URL for the handle. URLs are never
// cached past their window; every call signs anew.
func (r *Resolver) ResolveURL(handle string) (string, error) {
	return r.store.SignURL(handle, r.urlTTL)
}

// EnrichRefs attaches signed URLs to a ref list. A handle that fails to sign
// is logged and left without a URL rather than failing the listing.
func (r *Resolver) EnrichRefs(refs []domain.MediaRef) []domain.MediaRef {
	enriched := make([]domain.MediaRef, len(refs))
	for i, ref := range refs {
		enriched[i] = ref
		url, err := r.store.SignURL(ref.Handle, r.urlTTL)
		if err != nil {
			r.logger.Warn("failed to sign media url", zap.String("handle", ref.Handle), zap.Error(err))
			continue
		}
		enriched[i].URL = url
	}
	return enriched
}

// Diff splits an existing collection into the refs to keep and the refs to
// delete, given the retained handle set. Pure; order of existing is
// preserved in both outputs.
func Diff(existing []domain.MediaRef, retained map[string]struct{}) (keep, drop []domain.MediaRef) {
	keep = make([]domain.MediaRef, 0, len(existing))
	drop = make([]domain.MediaRef, 0)
	for _, ref := range existing {
		if _, ok := retained[ref.Handle]; ok {
			keep = append(keep, ref)
		} else {
			drop = append(drop, ref)
		}
	}
	return keep, drop
}

// RetainedSet builds the lookup set from a submitted handle list.
func RetainedSet(handles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(handles))
	for _, handle := range handles {
		if handle != "" {
			set[handle] = struct{}{}
		}
	}
	return set
}

// Reconcile converges a stored collection with a client submission: handles
// missing from the retained set are deleted, new files are uploaded, and the
// result is retained refs in their original order followed by new uploads in
// submission order. Individual delete failures do not abort the reconcile;
// they are collected into a warning so the record update that already has new
// content ready can proceed. Upload failures fail the call.
func (r *Resolver) Reconcile(
	ctx context.Context,
	existing []domain.MediaRef,
	retainedHandles []string,
	uploads []RawFile,
	notes map[int]string,
	folder string,
) ([]domain.MediaRef, *domain.ReconcileWarning, error) {
	keep, drop := Diff(existing, RetainedSet(retainedHandles))

	failed := r.deleteAll(ctx, drop)

	uploaded := make([]domain.MediaRef, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanout)
	for i, file := range uploads {
		g.Go(func() error {
			result, err := r.store.Upload(gctx, file.Data, file.Name, folder)
			if err != nil {
				return fmt.Errorf("upload %q: %w", file.Name, err)
			}
			uploaded[i] = domain.MediaRef{
				Handle:      result.Handle,
				DisplayName: file.Name,
				Note:        notes[i],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warning *domain.ReconcileWarning
	if len(failed) > 0 {
		warning = &domain.ReconcileWarning{FailedDeletes: failed}
		r.logger.Warn("media reconcile completed with failed deletes",
			zap.Strings("handles", failed))
	}
	return append(keep, uploaded...), warning, nil
}

// Uploaded returns the refs a reconcile added for the given submission: the
// tail of the merged collection past the retained refs. Callers use it to
// remove fresh uploads again when the row write they were uploaded for fails.
func Uploaded(merged []domain.MediaRef, uploads []RawFile) []domain.MediaRef {
	if len(uploads) == 0 || len(merged) < len(uploads) {
		return nil
	}
	return merged[len(merged)-len(uploads):]
}

// DeleteAll removes every handle of a record, used when the record itself is
// deleted. Failures are returned as the handle list that could not be
// removed.
func (r *Resolver) DeleteAll(ctx context.Context, refs []domain.MediaRef) []string {
	return r.deleteAll(ctx, refs)
}

// deleteAll issues bounded-concurrency deletes and keeps going past
// individual failures.
func (r *Resolver) deleteAll(ctx context.Context, refs []domain.MediaRef) []string {
	if len(refs) == 0 {
		return nil
	}
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanout)
	for _, ref := range refs {
		g.Go(func() error {
			if err := r.store.Delete(gctx, ref.Handle); err != nil {
				r.logger.Warn("failed to delete media handle",
					zap.String("handle", ref.Handle), zap.Error(err))
				mu.Lock()
				failed = append(failed, ref.Handle)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(failed)
	return failed
}
