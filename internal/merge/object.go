package merge

import (
	"context"
	"fmt"

	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

// mergeable is a primary object without relationship invariants.
type mergeable[T any] interface {
	*T
	model.Object
	Merge(acquisition *T)
}

// ObjectQuery merges two objects of a kind that only needs its backlinks
// repointed: events, places, sources, citations, repositories, media and notes.
type ObjectQuery[T any, P mergeable[T]] struct {
	db      store.Store
	phoenix P
	titanic P
}

func newObjectQuery[T any, P mergeable[T]](db store.Store, phoenix, titanic P) (*ObjectQuery[T, P], error) {
	if phoenix.GetHandle() == titanic.GetHandle() {
		return nil, errSameObject
	}

	return &ObjectQuery[T, P]{
		db:      db,
		phoenix: phoenix,
		titanic: titanic,
	}, nil
}

func NewEventQuery(db store.Store, phoenix, titanic *model.Event) (*ObjectQuery[model.Event, *model.Event], error) {
	return newObjectQuery(db, phoenix, titanic)
}

// NewPlaceQuery refuses to merge a place with a place directly enclosing it.
func NewPlaceQuery(db store.Store, phoenix, titanic *model.Place) (*ObjectQuery[model.Place, *model.Place], error) {
	if phoenix.EnclosedBy(titanic.Handle) || titanic.EnclosedBy(phoenix.Handle) {
		return nil, errEnclosedPlace
	}

	return newObjectQuery(db, phoenix, titanic)
}

func NewSourceQuery(db store.Store, phoenix, titanic *model.Source) (*ObjectQuery[model.Source, *model.Source], error) {
	return newObjectQuery(db, phoenix, titanic)
}

func NewCitationQuery(db store.Store, phoenix, titanic *model.Citation) (*ObjectQuery[model.Citation, *model.Citation], error) {
	return newObjectQuery(db, phoenix, titanic)
}

func NewRepositoryQuery(db store.Store, phoenix, titanic *model.Repository) (*ObjectQuery[model.Repository, *model.Repository], error) {
	return newObjectQuery(db, phoenix, titanic)
}

func NewMediaQuery(db store.Store, phoenix, titanic *model.Media) (*ObjectQuery[model.Media, *model.Media], error) {
	return newObjectQuery(db, phoenix, titanic)
}

func NewNoteQuery(db store.Store, phoenix, titanic *model.Note) (*ObjectQuery[model.Note, *model.Note], error) {
	return newObjectQuery(db, phoenix, titanic)
}

// Execute runs the merge in its own transaction.
func (q *ObjectQuery[T, P]) Execute(ctx context.Context) error {
	return q.db.Transaction(ctx, Label(q.phoenix.Kind()), func(tx store.Store) error {
		return q.ExecuteTx(ctx, tx)
	})
}

// ExecuteTx folds the titanic into the phoenix inside tx and repoints every
// backlink of the titanic.
func (q *ObjectQuery[T, P]) ExecuteTx(ctx context.Context, tx store.Store) error {
	kind := q.phoenix.Kind()
	newHandle := q.phoenix.GetHandle()
	oldHandle := q.titanic.GetHandle()
	logrus.Infof("merging %s %s into %s", kind, oldHandle, newHandle)

	q.phoenix.Merge(q.titanic)
	if err := tx.Commit(ctx, q.phoenix); err != nil {
		return err
	}

	refs, err := tx.FindBacklinks(ctx, oldHandle)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		switch {
		case ref.Kind == kind && ref.Handle == oldHandle:
			continue
		case ref.Kind == kind && ref.Handle == newHandle:
			q.phoenix.ReplaceHandleReference(kind, oldHandle, newHandle)
			if err := tx.Commit(ctx, q.phoenix); err != nil {
				return err
			}
			continue
		}
		if err := repoint(ctx, tx, ref, kind, oldHandle, newHandle); err != nil {
			return err
		}
	}

	if err := recordMerge(ctx, tx, kind, newHandle, oldHandle, true); err != nil {
		return err
	}

	return tx.Remove(ctx, kind, oldHandle)
}

// Query is a merge that can join a caller's transaction.
type Query interface {
	Execute(ctx context.Context) error
	ExecuteTx(ctx context.Context, tx store.Store) error
}

var _ Query = (*FamilyQuery)(nil)

// NewObjectQuery builds the query for two objects of one of the kinds without
// relationship invariants.
func NewObjectQuery(db store.Store, phoenix, titanic model.Object) (Query, error) {
	if phoenix.Kind() != titanic.Kind() {
		return nil, fmt.Errorf("cannot merge %s into %s", titanic.Kind(), phoenix.Kind())
	}

	switch p := phoenix.(type) {
	case *model.Event:
		return asQuery(NewEventQuery(db, p, titanic.(*model.Event)))
	case *model.Place:
		return asQuery(NewPlaceQuery(db, p, titanic.(*model.Place)))
	case *model.Source:
		return asQuery(NewSourceQuery(db, p, titanic.(*model.Source)))
	case *model.Citation:
		return asQuery(NewCitationQuery(db, p, titanic.(*model.Citation)))
	case *model.Repository:
		return asQuery(NewRepositoryQuery(db, p, titanic.(*model.Repository)))
	case *model.Media:
		return asQuery(NewMediaQuery(db, p, titanic.(*model.Media)))
	case *model.Note:
		return asQuery(NewNoteQuery(db, p, titanic.(*model.Note)))
	}

	return nil, fmt.Errorf("%s merges need a dedicated query", phoenix.Kind())
}

func asQuery[Q Query](q Q, err error) (Query, error) {
	if err != nil {
		return nil, err
	}
	return q, nil
}
