package cache

import (
	"context"
	"errors"

	"github.com/emrgen/lineage/internal/model"
)

// ErrNoRedirect is returned when a handle has no cached redirect.
var ErrNoRedirect = errors.New("no redirect for handle")

// Redirects caches where merged-away handles went, so stale handles held by
// callers can be resolved without walking the merge log.
type Redirects interface {
	// Set records that the object from was merged into to.
	Set(ctx context.Context, kind model.Kind, from, to string) error
	// Lookup returns the handle from was merged into, one hop only.
	Lookup(ctx context.Context, kind model.Kind, from string) (string, error)
	// Delete forgets the redirect of from.
	Delete(ctx context.Context, kind model.Kind, from string) error
}
