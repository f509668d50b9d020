package merge

import (
	"context"
	"errors"
	"testing"

	"github.com/emrgen/lineage/internal/check"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getPerson(t *testing.T, st store.Store, handle string) *model.Person {
	t.Helper()
	p, err := st.GetPerson(context.Background(), handle)
	require.NoError(t, err)
	return p
}

func getFamily(t *testing.T, st store.Store, handle string) *model.Family {
	t.Helper()
	f, err := st.GetFamily(context.Background(), handle)
	require.NoError(t, err)
	return f
}

func assertGone(t *testing.T, st store.Store, kind model.Kind, handle string) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Get(ctx, kind, handle)
	assert.ErrorIs(t, err, store.ErrNotFound)

	refs, err := st.FindBacklinks(ctx, handle)
	require.NoError(t, err)
	assert.Empty(t, refs, "%s %s is still referenced", kind, handle)
}

func assertConsistent(t *testing.T, st store.Store) {
	t.Helper()
	report, err := check.NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Problems)
}

var errInjected = errors.New("injected failure")

// faultyStore fails every commit of one kind, or every removal when remove is set.
type faultyStore struct {
	store.Store
	kind   model.Kind
	remove bool
}

func (f *faultyStore) Transaction(ctx context.Context, label string, fn func(tx store.Store) error) error {
	return f.Store.Transaction(ctx, label, func(tx store.Store) error {
		return fn(&faultyStore{Store: tx, kind: f.kind, remove: f.remove})
	})
}

func (f *faultyStore) Commit(ctx context.Context, obj model.Object) error {
	if !f.remove && obj.Kind() == f.kind {
		return errInjected
	}
	return f.Store.Commit(ctx, obj)
}

func (f *faultyStore) Remove(ctx context.Context, kind model.Kind, handle string) error {
	if f.remove && kind == f.kind {
		return errInjected
	}
	return f.Store.Remove(ctx, kind, handle)
}
