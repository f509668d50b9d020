package merge

import (
	"context"
	"errors"

	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

// repoint moves the reference held by ref from oldHandle to newHandle. A
// referencing object that has disappeared meanwhile is skipped.
func repoint(ctx context.Context, tx store.Store, ref model.Ref, kind model.Kind, oldHandle, newHandle string) error {
	obj, err := tx.Get(ctx, ref.Kind, ref.Handle)
	if errors.Is(err, store.ErrNotFound) {
		logrus.Warnf("backlink %s to %s %s is gone", ref, kind, oldHandle)
		return nil
	}
	if err != nil {
		return err
	}
	if !obj.HasHandleReference(kind, oldHandle) {
		logrus.Warnf("backlink %s does not reference %s %s", ref, kind, oldHandle)
		return nil
	}

	obj.ReplaceHandleReference(kind, oldHandle, newHandle)
	return tx.Commit(ctx, obj)
}

// optionalPerson loads a person, returning nil for an empty or unknown handle.
func optionalPerson(ctx context.Context, tx store.Store, handle string) (*model.Person, error) {
	if handle == "" {
		return nil, nil
	}

	person, err := tx.GetPerson(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		logrus.Warnf("person %s referenced by a family is missing", handle)
		return nil, nil
	}

	return person, err
}

func recordMerge(ctx context.Context, tx store.Store, kind model.Kind, phoenix, titanic string, complete bool) error {
	return tx.RecordMerge(ctx, &model.MergeRecord{
		Kind:     string(kind),
		Phoenix:  phoenix,
		Titanic:  titanic,
		Label:    Label(kind),
		Complete: complete,
	})
}
