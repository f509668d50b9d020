package merge

import (
	"context"
	"errors"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

// PersonQuery merges the titanic person into the phoenix person.
type PersonQuery struct {
	db      store.Store
	phoenix *model.Person
	titanic *model.Person
}

// NewPersonQuery refuses to merge two people who are spouses of each other or
// parent and child of each other.
func NewPersonQuery(db store.Store, phoenix, titanic *model.Person) (*PersonQuery, error) {
	if phoenix.Handle == titanic.Handle {
		return nil, errSameObject
	}

	phoenixFamilies := mapset.NewSet(phoenix.FamilyList...)
	titanicFamilies := mapset.NewSet(titanic.FamilyList...)
	if !phoenixFamilies.Intersect(titanicFamilies).IsEmpty() {
		return nil, errSpouses
	}
	if !phoenixFamilies.Intersect(mapset.NewSet(titanic.ParentFamilyList...)).IsEmpty() ||
		!titanicFamilies.Intersect(mapset.NewSet(phoenix.ParentFamilyList...)).IsEmpty() {
		return nil, errParentChild
	}

	return &PersonQuery{
		db:      db,
		phoenix: phoenix,
		titanic: titanic,
	}, nil
}

// Execute runs the merge in its own transaction with family merging enabled.
// It returns false when duplicate families were left for manual cleanup.
func (q *PersonQuery) Execute(ctx context.Context) (bool, error) {
	var complete bool
	err := q.db.Transaction(ctx, Label(model.KindPerson), func(tx store.Store) error {
		var err error
		complete, err = q.ExecuteTx(ctx, tx, true)
		return err
	})
	if err != nil {
		return false, err
	}

	return complete, nil
}

// ExecuteTx runs the merge inside tx. With familyMerger set, a family of the
// phoenix that ends up with the same parents as an earlier one is merged into it.
func (q *PersonQuery) ExecuteTx(ctx context.Context, tx store.Store, familyMerger bool) (bool, error) {
	newHandle := q.phoenix.Handle
	oldHandle := q.titanic.Handle
	logrus.Infof("merging person %s into %s", oldHandle, newHandle)

	q.phoenix.Merge(q.titanic)
	if err := tx.Commit(ctx, q.phoenix); err != nil {
		return false, err
	}

	// associations and note links
	refs, err := tx.FindBacklinks(ctx, oldHandle, model.KindPerson, model.KindNote)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if err := q.repoint(ctx, tx, ref, model.KindPerson, oldHandle); err != nil {
			return false, err
		}
	}

	for _, familyHandle := range slices.Clone(q.phoenix.ParentFamilyList) {
		family, err := tx.GetFamily(ctx, familyHandle)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if family.HasHandleReference(model.KindPerson, oldHandle) {
			family.ReplaceHandleReference(model.KindPerson, oldHandle, newHandle)
			if err := tx.Commit(ctx, family); err != nil {
				return false, err
			}
		}
	}

	complete, err := q.repointSpouseFamilies(ctx, tx, familyMerger)
	if err != nil {
		return false, err
	}

	// families or other objects whose link back to the titanic was one-sided
	refs, err = tx.FindBacklinks(ctx, oldHandle)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref.Kind == model.KindPerson && ref.Handle == oldHandle {
			continue
		}
		logrus.Warnf("%s still references person %s, repointing", ref, oldHandle)
		if err := q.repoint(ctx, tx, ref, model.KindPerson, oldHandle); err != nil {
			return false, err
		}
	}

	home, err := tx.DefaultPersonHandle(ctx)
	if err != nil {
		return false, err
	}
	if home == oldHandle {
		if err := tx.SetDefaultPersonHandle(ctx, newHandle); err != nil {
			return false, err
		}
	}

	if err := recordMerge(ctx, tx, model.KindPerson, newHandle, oldHandle, complete); err != nil {
		return false, err
	}
	if err := tx.Remove(ctx, model.KindPerson, oldHandle); err != nil {
		return false, err
	}

	return complete, nil
}

// repointSpouseFamilies moves the families the titanic was a parent of over to
// the phoenix, folding at most one duplicate family on the way.
func (q *PersonQuery) repointSpouseFamilies(ctx context.Context, tx store.Store, familyMerger bool) (bool, error) {
	newHandle := q.phoenix.Handle
	oldHandle := q.titanic.Handle

	complete := true
	merged := false
	var parentList [][2]string
	var familyHandles []string

	for _, familyHandle := range slices.Clone(q.phoenix.FamilyList) {
		family, err := tx.GetFamily(ctx, familyHandle)
		if errors.Is(err, store.ErrNotFound) {
			logrus.Warnf("person %s lists missing family %s", newHandle, familyHandle)
			continue
		}
		if err != nil {
			return false, err
		}

		parents := family.Parents()
		if family.HasHandleReference(model.KindPerson, oldHandle) {
			family.ReplaceHandleReference(model.KindPerson, oldHandle, newHandle)
			parents = family.Parents()

			seen := countPairs(parentList, parents)
			switch {
			case familyMerger && seen == 1 && !merged:
				main := familyHandles[slices.Index(parentList, parents)]
				if err := q.mergeFamilies(ctx, tx, main, family); err != nil {
					return false, err
				}
				merged = true
				continue
			case familyMerger && seen == 1:
				logrus.Warnf("family %s duplicates another family but a family was already merged", familyHandle)
				complete = false
			case familyMerger && seen > 1:
				logrus.Warnf("family %s has %d duplicates, not merging", familyHandle, seen)
				complete = false
			}

			if err := tx.Commit(ctx, family); err != nil {
				return false, err
			}
		}

		parentList = append(parentList, parents)
		familyHandles = append(familyHandles, familyHandle)
	}

	return complete, nil
}

// mergeFamilies folds family into the family mainHandle, which already has the
// same father and mother.
func (q *PersonQuery) mergeFamilies(ctx context.Context, tx store.Store, mainHandle string, family *model.Family) error {
	familyHandle := family.Handle
	logrus.Infof("merging duplicate family %s into %s", familyHandle, mainHandle)

	main, err := tx.GetFamily(ctx, mainHandle)
	if err != nil {
		return err
	}
	main.Merge(family)

	for _, childHandle := range family.ChildHandles() {
		child, err := q.person(ctx, tx, childHandle)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		if slices.Contains(child.ParentFamilyList, mainHandle) {
			child.RemoveHandleReferences(model.KindFamily, []string{familyHandle})
		} else {
			child.ReplaceHandleReference(model.KindFamily, familyHandle, mainHandle)
		}
		if err := tx.Commit(ctx, child); err != nil {
			return err
		}
	}

	q.phoenix.RemoveFamilyHandle(familyHandle)
	if err := tx.Commit(ctx, q.phoenix); err != nil {
		return err
	}

	spouseHandle := family.FatherHandle
	if spouseHandle == q.phoenix.Handle {
		spouseHandle = family.MotherHandle
	}
	spouse, err := q.person(ctx, tx, spouseHandle)
	if err != nil {
		return err
	}
	if spouse != nil && spouse != q.phoenix {
		spouse.RemoveFamilyHandle(familyHandle)
		if err := tx.Commit(ctx, spouse); err != nil {
			return err
		}
	}

	// lds ordinances and notes
	refs, err := tx.FindBacklinks(ctx, familyHandle, model.KindPerson, model.KindNote)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if ref.Kind == model.KindPerson && ref.Handle == q.titanic.Handle {
			continue
		}
		if ref.Kind == model.KindPerson && ref.Handle == q.phoenix.Handle {
			q.phoenix.ReplaceHandleReference(model.KindFamily, familyHandle, mainHandle)
			if err := tx.Commit(ctx, q.phoenix); err != nil {
				return err
			}
			continue
		}
		if err := repoint(ctx, tx, ref, model.KindFamily, familyHandle, mainHandle); err != nil {
			return err
		}
	}

	if err := recordMerge(ctx, tx, model.KindFamily, mainHandle, familyHandle, true); err != nil {
		return err
	}
	if err := tx.Remove(ctx, model.KindFamily, familyHandle); err != nil {
		return err
	}

	return tx.Commit(ctx, main)
}

// repoint moves a reference to the titanic over to the phoenix. The phoenix
// itself is changed in memory so later commits keep the change.
func (q *PersonQuery) repoint(ctx context.Context, tx store.Store, ref model.Ref, kind model.Kind, oldHandle string) error {
	switch {
	case ref.Kind == model.KindPerson && ref.Handle == q.titanic.Handle:
		return nil
	case ref.Kind == model.KindPerson && ref.Handle == q.phoenix.Handle:
		q.phoenix.ReplaceHandleReference(kind, oldHandle, q.phoenix.Handle)
		return tx.Commit(ctx, q.phoenix)
	}

	return repoint(ctx, tx, ref, kind, oldHandle, q.phoenix.Handle)
}

// person loads a person, answering with the in-memory phoenix when asked for it.
func (q *PersonQuery) person(ctx context.Context, tx store.Store, handle string) (*model.Person, error) {
	if handle == q.phoenix.Handle {
		return q.phoenix, nil
	}
	if handle == q.titanic.Handle {
		return nil, nil
	}

	return optionalPerson(ctx, tx, handle)
}

func countPairs(list [][2]string, pair [2]string) int {
	count := 0
	for _, p := range list {
		if p == pair {
			count++
		}
	}
	return count
}
