// Package check verifies the referential integrity of a family tree.
package check

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

type ProblemKind string

const (
	// Dangling references point at an object that does not exist.
	Dangling ProblemKind = "dangling"
	// OneSided links between a person and a family are missing on the other side.
	OneSided ProblemKind = "one-sided"
	// MissingHome means the default person does not exist.
	MissingHome ProblemKind = "missing-home"
)

type Problem struct {
	Kind   ProblemKind
	Source model.Ref
	Target model.Ref
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s -> %s", p.Kind, p.Source, p.Target)
}

type Report struct {
	Objects  int
	Problems []Problem
}

func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(kind ProblemKind, source, target model.Ref) {
	r.Problems = append(r.Problems, Problem{Kind: kind, Source: source, Target: target})
}

type Checker struct {
	store store.Store
}

func NewChecker(store store.Store) *Checker {
	return &Checker{store: store}
}

func (c *Checker) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	existing := mapset.NewThreadUnsafeSet[model.Ref]()
	people := make(map[string]*model.Person)
	families := make(map[string]*model.Family)

	for _, kind := range model.AllKinds {
		objects, err := c.store.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			existing.Add(model.Ref{Kind: kind, Handle: obj.GetHandle()})
			switch o := obj.(type) {
			case *model.Person:
				people[o.Handle] = o
			case *model.Family:
				families[o.Handle] = o
			}
		}
	}
	report.Objects = existing.Cardinality()

	refs, err := c.store.ListReferences(ctx)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		target := model.Ref{Kind: model.Kind(ref.TargetKind), Handle: ref.TargetHandle}
		if !existing.Contains(target) {
			report.add(Dangling, model.Ref{Kind: model.Kind(ref.SourceKind), Handle: ref.SourceHandle}, target)
		}
	}

	checkLinks(report, people, families)

	home, err := c.store.DefaultPersonHandle(ctx)
	if err != nil {
		return nil, err
	}
	if home != "" && people[home] == nil {
		report.add(MissingHome, model.Ref{Kind: model.KindMeta, Handle: model.MetaDefaultPerson}, model.Ref{Kind: model.KindPerson, Handle: home})
	}

	for _, problem := range report.Problems {
		logrus.Warnf("integrity: %s", problem)
	}

	return report, nil
}

// checkLinks reports person and family links that only one side records.
// Missing targets are already reported as dangling.
func checkLinks(report *Report, people map[string]*model.Person, families map[string]*model.Family) {
	for _, person := range people {
		source := model.Ref{Kind: model.KindPerson, Handle: person.Handle}
		for _, handle := range person.FamilyList {
			family := families[handle]
			if family != nil && family.FatherHandle != person.Handle && family.MotherHandle != person.Handle {
				report.add(OneSided, source, model.Ref{Kind: model.KindFamily, Handle: handle})
			}
		}
		for _, handle := range person.ParentFamilyList {
			family := families[handle]
			if family != nil && !family.HasChild(person.Handle) {
				report.add(OneSided, source, model.Ref{Kind: model.KindFamily, Handle: handle})
			}
		}
	}

	for _, family := range families {
		source := model.Ref{Kind: model.KindFamily, Handle: family.Handle}
		for _, handle := range family.Parents() {
			person := people[handle]
			if person != nil && !slices.Contains(person.FamilyList, family.Handle) {
				report.add(OneSided, source, model.Ref{Kind: model.KindPerson, Handle: handle})
			}
		}
		for _, handle := range family.ChildHandles() {
			person := people[handle]
			if person != nil && !slices.Contains(person.ParentFamilyList, family.Handle) {
				report.add(OneSided, source, model.Ref{Kind: model.KindPerson, Handle: handle})
			}
		}
	}
}
