package service

import (
	"context"
	"testing"

	"github.com/emrgen/lineage/internal/cache"
	"github.com/emrgen/lineage/internal/merge"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/emrgen/lineage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tree = `
people:
  - handle: a
    primary_name: {first: John, surname: Smith}
    families: [f1]
  - handle: b
    primary_name: {first: Johnny, surname: Smith}
    families: [f2]
  - handle: c
    primary_name: {first: J., surname: Smith}
  - handle: m
    primary_name: {first: Mary}
    families: [f1, f2]
families:
  - {handle: f1, father: a, mother: m}
  - {handle: f2, father: b, mother: m}
events:
  - {handle: e1, type: Birth, date: "1850"}
  - {handle: e2, type: Birth, date: "1850"}
`

func TestMergeService_MergePeople(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, tree)
	svc := NewMergeService(st, nil)

	res, err := svc.MergePeople(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, &Result{Kind: model.KindPerson, Phoenix: "a", Titanic: "b", Complete: true}, res)

	handle, err := svc.Resolve(ctx, model.KindPerson, "b")
	require.NoError(t, err)
	assert.Equal(t, "a", handle)

	// the cascaded family merge is found through the merge log
	handle, err = svc.Resolve(ctx, model.KindFamily, "f2")
	require.NoError(t, err)
	assert.Equal(t, "f1", handle)
}

func TestMergeService_ResolveFollowsChains(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, tree)
	svc := NewMergeService(st, cache.NewMemoryRedirects())

	_, err := svc.MergePeople(ctx, "a", "b")
	require.NoError(t, err)
	_, err = svc.MergePeople(ctx, "c", "a")
	require.NoError(t, err)

	handle, err := svc.Resolve(ctx, model.KindPerson, "b")
	require.NoError(t, err)
	assert.Equal(t, "c", handle)

	// a fresh cache falls back to the merge log
	fresh := NewMergeService(st, cache.NewMemoryRedirects())
	handle, err = fresh.Resolve(ctx, model.KindPerson, "b")
	require.NoError(t, err)
	assert.Equal(t, "c", handle)

	handle, err = fresh.Resolve(ctx, model.KindPerson, "m")
	require.NoError(t, err)
	assert.Equal(t, "m", handle)

	_, err = fresh.Resolve(ctx, model.KindPerson, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMergeService_ResolveDetectsLoops(t *testing.T) {
	ctx := context.Background()
	redirects := cache.NewMemoryRedirects()
	require.NoError(t, redirects.Set(ctx, model.KindNote, "n1", "n2"))
	require.NoError(t, redirects.Set(ctx, model.KindNote, "n2", "n1"))
	svc := NewMergeService(tester.TestStore(t), redirects)

	_, err := svc.Resolve(ctx, model.KindNote, "n1")
	assert.ErrorIs(t, err, ErrRedirectLoop)
}

func TestMergeService_UndoDropsRedirects(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, tree)
	redirects := cache.NewMemoryRedirects()
	svc := NewMergeService(st, redirects)

	_, err := svc.MergeObjects(ctx, model.KindEvent, "e1", "e2")
	require.NoError(t, err)

	txn, err := svc.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, merge.Label(model.KindEvent), txn.Label)
	_, err = redirects.Lookup(ctx, model.KindEvent, "e2")
	assert.ErrorIs(t, err, cache.ErrNoRedirect)

	handle, err := svc.Resolve(ctx, model.KindEvent, "e2")
	require.NoError(t, err)
	assert.Equal(t, "e2", handle)

	_, err = svc.Redo(ctx)
	require.NoError(t, err)
	to, err := redirects.Lookup(ctx, model.KindEvent, "e2")
	require.NoError(t, err)
	assert.Equal(t, "e1", to)
}

func TestMergeService_MergeFamiliesWithChosenFather(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, tree)
	svc := NewMergeService(st, nil)

	res, err := svc.MergeFamilies(ctx, "f1", "f2", merge.WithFather("b"))
	require.NoError(t, err)
	assert.Equal(t, "f1", res.Phoenix)

	family, err := st.GetFamily(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "b", family.FatherHandle)

	handle, err := svc.Resolve(ctx, model.KindPerson, "a")
	require.NoError(t, err)
	assert.Equal(t, "b", handle)
}

func TestMergeService_Rejections(t *testing.T) {
	ctx := context.Background()
	st := tester.LoadTree(t, tree)
	svc := NewMergeService(st, nil)

	_, err := svc.MergePeople(ctx, "a", "a")
	assert.ErrorIs(t, err, ErrSameObject)
	_, err = svc.MergeObjects(ctx, model.KindEvent, "e1", "e1")
	assert.ErrorIs(t, err, ErrSameObject)

	_, err = svc.MergePeople(ctx, "a", "m")
	assert.True(t, merge.IsMergeError(err))

	_, err = svc.MergeObjects(ctx, model.KindEvent, "e1", "e9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
