package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emrgen/lineage/internal/compress"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/emrgen/lineage/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(handle, first string, families ...string) *model.Person {
	p := model.NewPerson()
	p.Handle = handle
	p.ID = "I-" + handle
	p.PrimaryName = model.Name{First: first, Surname: "Smith"}
	p.FamilyList = families
	return p
}

func family(handle, father, mother string, children ...string) *model.Family {
	f := model.NewFamily()
	f.Handle = handle
	f.FatherHandle = father
	f.MotherHandle = mother
	for _, child := range children {
		f.ChildRefList = append(f.ChildRefList, model.ChildRef{Ref: child})
	}
	return f
}

func TestGormStore_CommitAndGet(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	require.NoError(t, st.Commit(ctx, person("p1", "Ann", "f1")))

	got, err := st.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.PrimaryName.First)
	assert.Equal(t, []string{"f1"}, got.FamilyList)

	_, err = st.Get(ctx, model.KindPerson, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = st.Commit(ctx, model.NewPerson())
	assert.ErrorIs(t, err, store.ErrMissingHandle)
}

func TestGormStore_FindBacklinks(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	require.NoError(t, st.Transaction(ctx, "setup", func(tx store.Store) error {
		for _, obj := range []model.Object{
			person("p1", "Ann", "f1"),
			person("p2", "Bob", "f1"),
			family("f1", "p2", "p1", "c1"),
			&model.Note{Base: model.Base{Handle: "n1"}, Links: []model.Ref{{Kind: model.KindPerson, Handle: "p1"}}},
		} {
			if err := tx.Commit(ctx, obj); err != nil {
				return err
			}
		}
		return nil
	}))

	refs, err := st.FindBacklinks(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Ref{
		{Kind: model.KindFamily, Handle: "f1"},
		{Kind: model.KindNote, Handle: "n1"},
	}, refs)

	refs, err = st.FindBacklinks(ctx, "p1", model.KindNote)
	require.NoError(t, err)
	assert.Equal(t, []model.Ref{{Kind: model.KindNote, Handle: "n1"}}, refs)

	require.NoError(t, st.Remove(ctx, model.KindFamily, "f1"))
	refs, err = st.FindBacklinks(ctx, "p1", model.KindFamily)
	require.NoError(t, err)
	assert.Empty(t, refs)

	err = st.Remove(ctx, model.KindFamily, "f1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGormStore_NestedTransactionRollsBackAsOne(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)
	boom := errors.New("boom")

	err := st.Transaction(ctx, "outer", func(tx store.Store) error {
		if err := tx.Commit(ctx, person("p1", "Ann")); err != nil {
			return err
		}
		return tx.Transaction(ctx, "inner", func(inner store.Store) error {
			if err := inner.Commit(ctx, person("p2", "Bob")); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	for _, handle := range []string{"p1", "p2"} {
		_, err := st.GetPerson(ctx, handle)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}

	history, err := st.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGormStore_UndoRedo(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	require.NoError(t, st.Commit(ctx, person("p1", "Ann")))
	require.NoError(t, st.Transaction(ctx, "rename", func(tx store.Store) error {
		p, err := tx.GetPerson(ctx, "p1")
		if err != nil {
			return err
		}
		p.PrimaryName.First = "Anne"
		if err := tx.Commit(ctx, p); err != nil {
			return err
		}
		if err := tx.Commit(ctx, person("p2", "Bob")); err != nil {
			return err
		}
		return tx.SetDefaultPersonHandle(ctx, "p2")
	}))

	txn, err := st.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rename", txn.Label)

	p, err := st.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.PrimaryName.First)
	_, err = st.GetPerson(ctx, "p2")
	assert.ErrorIs(t, err, store.ErrNotFound)
	home, err := st.DefaultPersonHandle(ctx)
	require.NoError(t, err)
	assert.Empty(t, home)

	txn, err = st.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rename", txn.Label)

	p, err = st.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Anne", p.PrimaryName.First)
	home, err = st.DefaultPersonHandle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", home)

	_, err = st.Redo(ctx)
	assert.ErrorIs(t, err, store.ErrNothingToRedo)
}

func TestGormStore_NewTransactionClearsRedo(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	require.NoError(t, st.Commit(ctx, person("p1", "Ann")))
	_, err := st.Undo(ctx)
	require.NoError(t, err)

	require.NoError(t, st.Commit(ctx, person("p2", "Bob")))
	_, err = st.Redo(ctx)
	assert.ErrorIs(t, err, store.ErrNothingToRedo)

	_, err = st.Undo(ctx)
	require.NoError(t, err)
	_, err = st.Undo(ctx)
	assert.ErrorIs(t, err, store.ErrNothingToUndo)
}

func TestGormStore_PruneHistory(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	for _, handle := range []string{"p1", "p2", "p3"} {
		require.NoError(t, st.Commit(ctx, person(handle, handle)))
	}

	pruned, err := st.PruneHistory(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pruned)

	history, err := st.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = st.Undo(ctx)
	require.NoError(t, err)
	_, err = st.Undo(ctx)
	assert.ErrorIs(t, err, store.ErrNothingToUndo)

	// pruning only forgets history, never data
	_, err = st.GetPerson(ctx, "p1")
	assert.NoError(t, err)
}

func TestGormStore_FindMergeIgnoresUndone(t *testing.T) {
	ctx := context.Background()
	st := tester.TestStore(t)

	require.NoError(t, st.Transaction(ctx, "Merge Person", func(tx store.Store) error {
		return tx.RecordMerge(ctx, &model.MergeRecord{Kind: "Person", Phoenix: "p1", Titanic: "p2", Complete: true})
	}))

	rec, err := st.FindMerge(ctx, model.KindPerson, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.Phoenix)

	merges, err := st.Merges(ctx, rec.TxnID)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "p2", merges[0].Titanic)

	_, err = st.Undo(ctx)
	require.NoError(t, err)
	_, err = st.FindMerge(ctx, model.KindPerson, "p2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGormStore_ReadsOtherCodecs(t *testing.T) {
	ctx := context.Background()
	db := tester.TestDB(t)

	require.NoError(t, store.NewGormStore(db, compress.NewLZ4()).Commit(ctx, person("p1", "Ann")))

	st := store.NewGormStore(db, compress.NewBrotli())
	p, err := st.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.PrimaryName.First)

	// undo restores the lz4 image written before the switch
	p.PrimaryName.First = "Anne"
	require.NoError(t, st.Commit(ctx, p))
	_, err = st.Undo(ctx)
	require.NoError(t, err)
	p, err = st.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.PrimaryName.First)
}

func TestTreeProvider(t *testing.T) {
	opened := 0
	provider := store.NewTreeProvider(func(tree string) (store.Store, error) {
		opened++
		return tester.TestStore(t), nil
	})

	a, err := provider.Provide("smith")
	require.NoError(t, err)
	b, err := provider.Provide("smith")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, opened)

	_, err = store.NewTreeProvider(nil).Provide("jones")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}
