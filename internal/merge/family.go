package merge

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

type parentRole int

const (
	roleFather parentRole = iota
	roleMother
)

func (r parentRole) String() string {
	if r == roleFather {
		return "father"
	}
	return "mother"
}

type familyOptions struct {
	father *string
	mother *string
}

type FamilyOption func(*familyOptions)

// WithFather chooses the father of the merged family. It must be the father of
// one of the two families.
func WithFather(handle string) FamilyOption {
	return func(o *familyOptions) {
		o.father = &handle
	}
}

// WithMother chooses the mother of the merged family. It must be the mother of
// one of the two families.
func WithMother(handle string) FamilyOption {
	return func(o *familyOptions) {
		o.mother = &handle
	}
}

// FamilyQuery merges the titanic family into the phoenix family. Parents that
// differ between the two families are merged as people first.
type FamilyQuery struct {
	db      store.Store
	phoenix *model.Family
	titanic *model.Family

	phoenixFH, phoenixMH string
	titanicFH, titanicMH string
	fatherSwapped        bool
	motherSwapped        bool
}

// NewFamilyQuery checks that the chosen father and mother each belong to one of
// the two families and works out which parents need merging.
func NewFamilyQuery(db store.Store, phoenix, titanic *model.Family, opts ...FamilyOption) (*FamilyQuery, error) {
	if phoenix.Handle == titanic.Handle {
		return nil, errSameObject
	}

	o := &familyOptions{}
	for _, opt := range opts {
		opt(o)
	}

	q := &FamilyQuery{
		db:        db,
		phoenix:   phoenix,
		titanic:   titanic,
		phoenixFH: phoenix.FatherHandle,
		phoenixMH: phoenix.MotherHandle,
	}
	if o.father != nil {
		q.phoenixFH = *o.father
	}
	if o.mother != nil {
		q.phoenixMH = *o.mother
	}

	if sameCoupleSwapped(phoenix, titanic) {
		if err := q.keepCouple(o, phoenix); err != nil {
			return nil, err
		}
		return q, nil
	}

	var err error
	q.titanicFH, q.fatherSwapped, err = pickParent(roleFather, q.phoenixFH, phoenix.FatherHandle, titanic.FatherHandle)
	if err != nil {
		return nil, err
	}
	q.titanicMH, q.motherSwapped, err = pickParent(roleMother, q.phoenixMH, phoenix.MotherHandle, titanic.MotherHandle)
	if err != nil {
		return nil, err
	}

	return q, nil
}

// sameCoupleSwapped reports whether the two families hold the same two people
// in opposite parent slots.
func sameCoupleSwapped(phoenix, titanic *model.Family) bool {
	return phoenix.FatherHandle != "" && phoenix.MotherHandle != "" &&
		phoenix.FatherHandle != phoenix.MotherHandle &&
		phoenix.FatherHandle == titanic.MotherHandle &&
		phoenix.MotherHandle == titanic.FatherHandle
}

// keepCouple settles the parents when both families share a swapped couple.
// Nobody is merged; the chosen slots decide who ends up father and mother.
func (q *FamilyQuery) keepCouple(o *familyOptions, phoenix *model.Family) error {
	a, b := phoenix.FatherHandle, phoenix.MotherHandle
	partner := func(handle string) string {
		if handle == a {
			return b
		}
		return a
	}
	if o.father != nil && o.mother == nil {
		q.phoenixMH = partner(q.phoenixFH)
	}
	if o.mother != nil && o.father == nil {
		q.phoenixFH = partner(q.phoenixMH)
	}

	if q.phoenixFH != a && q.phoenixFH != b {
		return newMergeError(fmt.Sprintf("%s %q belongs to neither family", roleFather, q.phoenixFH))
	}
	if q.phoenixMH != a && q.phoenixMH != b {
		return newMergeError(fmt.Sprintf("%s %q belongs to neither family", roleMother, q.phoenixMH))
	}
	if q.phoenixFH == q.phoenixMH {
		return newMergeError(fmt.Sprintf("%q cannot be both father and mother", q.phoenixFH))
	}

	q.titanicFH, q.titanicMH = q.phoenixFH, q.phoenixMH
	q.fatherSwapped = q.phoenixFH != a
	q.motherSwapped = q.phoenixMH != b
	return nil
}

// pickParent returns the parent that gets merged into the chosen one, and
// whether the chosen parent comes from the titanic family.
func pickParent(role parentRole, chosen, phoenixParent, titanicParent string) (string, bool, error) {
	switch chosen {
	case phoenixParent:
		return titanicParent, false, nil
	case titanicParent:
		return phoenixParent, true, nil
	}

	return "", false, newMergeError(fmt.Sprintf("%s %q belongs to neither family", role, chosen))
}

// FatherSwapped reports whether the surviving father comes from the titanic family.
func (q *FamilyQuery) FatherSwapped() bool {
	return q.fatherSwapped
}

// MotherSwapped reports whether the surviving mother comes from the titanic family.
func (q *FamilyQuery) MotherSwapped() bool {
	return q.motherSwapped
}

// Execute runs the merge in its own transaction.
func (q *FamilyQuery) Execute(ctx context.Context) error {
	return q.db.Transaction(ctx, Label(model.KindFamily), func(tx store.Store) error {
		return q.ExecuteTx(ctx, tx)
	})
}

// ExecuteTx runs the merge inside tx, merging differing parents first.
func (q *FamilyQuery) ExecuteTx(ctx context.Context, tx store.Store) error {
	newHandle := q.phoenix.Handle
	oldHandle := q.titanic.Handle
	logrus.Infof("merging family %s into %s", oldHandle, newHandle)

	if err := tx.Commit(ctx, q.phoenix); err != nil {
		return err
	}

	if q.phoenixFH != q.titanicFH {
		if err := q.mergeParent(ctx, tx, roleFather, q.phoenixFH, q.titanicFH); err != nil {
			return err
		}
	}
	if q.phoenixMH != q.titanicMH {
		if err := q.mergeParent(ctx, tx, roleMother, q.phoenixMH, q.titanicMH); err != nil {
			return err
		}
	}

	// the parent merges may have rewritten both families
	phoenix, err := tx.GetFamily(ctx, newHandle)
	if err != nil {
		return err
	}
	titanic, err := tx.GetFamily(ctx, oldHandle)
	if err != nil {
		return err
	}
	q.phoenix, q.titanic = phoenix, titanic

	father, err := optionalPerson(ctx, tx, q.phoenixFH)
	if err != nil {
		return err
	}
	mother, err := optionalPerson(ctx, tx, q.phoenixMH)
	if err != nil {
		return err
	}
	if father != nil {
		q.phoenix.FatherHandle = q.phoenixFH
	}
	if mother != nil {
		q.phoenix.MotherHandle = q.phoenixMH
	}

	q.phoenix.Merge(q.titanic)
	if err := tx.Commit(ctx, q.phoenix); err != nil {
		return err
	}

	for _, childHandle := range q.titanic.ChildHandles() {
		child, err := optionalPerson(ctx, tx, childHandle)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		if slices.Contains(child.ParentFamilyList, newHandle) {
			child.RemoveHandleReferences(model.KindFamily, []string{oldHandle})
		} else {
			child.ReplaceHandleReference(model.KindFamily, oldHandle, newHandle)
		}
		if err := tx.Commit(ctx, child); err != nil {
			return err
		}
	}

	for _, parent := range []*model.Person{father, mother} {
		if parent != nil && parent.RemoveFamilyHandle(oldHandle) {
			if err := tx.Commit(ctx, parent); err != nil {
				return err
			}
		}
	}

	// lds ordinances and notes
	refs, err := tx.FindBacklinks(ctx, oldHandle, model.KindPerson, model.KindNote)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if q.mergedAway(ref) {
			continue
		}
		if err := repoint(ctx, tx, ref, model.KindFamily, oldHandle, newHandle); err != nil {
			return err
		}
	}

	if err := recordMerge(ctx, tx, model.KindFamily, newHandle, oldHandle, true); err != nil {
		return err
	}

	return tx.Remove(ctx, model.KindFamily, oldHandle)
}

// mergedAway reports whether ref is a titanic parent absorbed by a parent merge.
func (q *FamilyQuery) mergedAway(ref model.Ref) bool {
	if ref.Kind != model.KindPerson {
		return false
	}
	return (ref.Handle == q.titanicFH && q.titanicFH != q.phoenixFH) ||
		(ref.Handle == q.titanicMH && q.titanicMH != q.phoenixMH)
}

func (q *FamilyQuery) mergeParent(ctx context.Context, tx store.Store, role parentRole, phoenixHandle, titanicHandle string) error {
	phoenix, err := optionalPerson(ctx, tx, phoenixHandle)
	if err != nil {
		return err
	}
	titanic, err := optionalPerson(ctx, tx, titanicHandle)
	if err != nil {
		return err
	}

	err = q.mergePerson(ctx, tx, role, phoenix, titanic)
	var mergeErr *MergeError
	if errors.As(err, &mergeErr) {
		return &MergeError{msg: fmt.Sprintf("error during merge of %s", role), err: mergeErr}
	}

	return err
}

// mergePerson merges the titanic parent into the phoenix parent. When only the
// phoenix parent exists it is promoted into the family lacking that parent.
func (q *FamilyQuery) mergePerson(ctx context.Context, tx store.Store, role parentRole, phoenix, titanic *model.Person) error {
	if phoenix == nil {
		if titanic != nil {
			return errMissingPhoenix
		}
		return nil
	}

	if titanic == nil {
		swapped := q.fatherSwapped
		if role == roleMother {
			swapped = q.motherSwapped
		}
		targetHandle := q.titanic.Handle
		if swapped {
			targetHandle = q.phoenix.Handle
		}

		target, err := tx.GetFamily(ctx, targetHandle)
		if err != nil {
			return err
		}
		if target.HasChild(phoenix.Handle) {
			return errSelfParent
		}

		if role == roleFather {
			target.FatherHandle = phoenix.Handle
		} else {
			target.MotherHandle = phoenix.Handle
		}
		phoenix.AddFamilyHandle(target.Handle)
		logrus.Debugf("promoted %s to %s of family %s", phoenix.Handle, role, target.Handle)

		if err := tx.Commit(ctx, target); err != nil {
			return err
		}
		return tx.Commit(ctx, phoenix)
	}

	query, err := NewPersonQuery(tx, phoenix, titanic)
	if err != nil {
		return err
	}
	_, err = query.ExecuteTx(ctx, tx, false)
	return err
}
