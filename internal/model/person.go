package model

import "slices"

// Gender of a person.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// MergedIDAttribute is the attribute type recording the ID of a person absorbed by a merge.
const MergedIDAttribute = "Merged ID"

// Person is an individual in the family tree.
//
// FamilyList holds the families in which the person is a spouse or parent,
// ParentFamilyList the families in which the person is a child. Both sides of those
// links are expected to agree with the family records.
type Person struct {
	Base             `yaml:",inline"`
	Gender           Gender      `json:"gender,omitempty" yaml:"gender,omitempty"`
	PrimaryName      Name        `json:"primary_name" yaml:"primary_name"`
	AlternateNames   []Name      `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty"`
	EventRefList     []EventRef  `json:"events,omitempty" yaml:"events,omitempty"`
	BirthRef         string      `json:"birth,omitempty" yaml:"birth,omitempty"`
	DeathRef         string      `json:"death,omitempty" yaml:"death,omitempty"`
	FamilyList       []string    `json:"families,omitempty" yaml:"families,omitempty"`
	ParentFamilyList []string    `json:"parent_families,omitempty" yaml:"parent_families,omitempty"`
	PersonRefList    []PersonRef `json:"associations,omitempty" yaml:"associations,omitempty"`
	LdsOrdList       []LdsOrd    `json:"lds_ordinances,omitempty" yaml:"lds_ordinances,omitempty"`
	MediaList        []MediaRef  `json:"media,omitempty" yaml:"media,omitempty"`
	Attributes       []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations      `yaml:",inline"`
}

func NewPerson() *Person {
	return &Person{Gender: GenderUnknown}
}

func (p *Person) Kind() Kind { return KindPerson }

func (p *Person) allAnnotations() []*Annotations {
	list := []*Annotations{&p.Annotations, &p.PrimaryName.Annotations}
	list = append(list, annotationsOf(p.AlternateNames)...)
	for i := range p.EventRefList {
		list = append(list, p.EventRefList[i].allAnnotations()...)
	}
	list = append(list, annotationsOf(p.PersonRefList)...)
	list = append(list, annotationsOf(p.LdsOrdList)...)
	list = append(list, annotationsOf(p.MediaList)...)
	list = append(list, annotationsOf(p.Attributes)...)
	return list
}

func (p *Person) References() []Ref {
	var c refCollector
	c.add(KindFamily, p.FamilyList...)
	c.add(KindFamily, p.ParentFamilyList...)
	for _, o := range p.LdsOrdList {
		c.add(KindFamily, o.Famc)
	}
	c.add(KindPlace, ldsPlaces(p.LdsOrdList)...)
	c.add(KindEvent, refHandles(p.EventRefList)...)
	c.add(KindEvent, p.BirthRef, p.DeathRef)
	c.add(KindPerson, refHandles(p.PersonRefList)...)
	c.addMedia(p.MediaList)
	c.addAnnotations(p.allAnnotations())
	return c.result()
}

func (p *Person) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindEvent:
		return hasRef(p.EventRefList, handle) || p.BirthRef == handle || p.DeathRef == handle
	case KindPerson:
		return hasRef(p.PersonRefList, handle)
	case KindFamily:
		return slices.Contains(p.FamilyList, handle) || slices.Contains(p.ParentFamilyList, handle) ||
			slices.ContainsFunc(p.LdsOrdList, func(o LdsOrd) bool { return o.Famc == handle })
	case KindPlace:
		return slices.Contains(ldsPlaces(p.LdsOrdList), handle)
	case KindMedia:
		return hasRef(p.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(p.allAnnotations(), kind, handle)
	}
	return false
}

func (p *Person) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindEvent:
		p.EventRefList = replaceRefs(p.EventRefList, oldHandle, newHandle)
		if p.BirthRef == oldHandle {
			p.BirthRef = newHandle
		}
		if p.DeathRef == oldHandle {
			p.DeathRef = newHandle
		}
	case KindPerson:
		p.PersonRefList = replaceRefs(p.PersonRefList, oldHandle, newHandle)
	case KindFamily:
		p.FamilyList = replaceHandle(p.FamilyList, oldHandle, newHandle)
		p.ParentFamilyList = replaceHandle(p.ParentFamilyList, oldHandle, newHandle)
		for i := range p.LdsOrdList {
			if p.LdsOrdList[i].Famc == oldHandle {
				p.LdsOrdList[i].Famc = newHandle
			}
		}
	case KindPlace:
		replaceLdsPlace(p.LdsOrdList, oldHandle, newHandle)
	case KindMedia:
		p.MediaList = replaceRefs(p.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(p.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (p *Person) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindEvent:
		p.EventRefList = removeRefs(p.EventRefList, handles)
		if slices.Contains(handles, p.BirthRef) {
			p.BirthRef = ""
		}
		if slices.Contains(handles, p.DeathRef) {
			p.DeathRef = ""
		}
	case KindPerson:
		p.PersonRefList = removeRefs(p.PersonRefList, handles)
	case KindFamily:
		p.FamilyList = removeHandles(p.FamilyList, handles)
		p.ParentFamilyList = removeHandles(p.ParentFamilyList, handles)
		for i := range p.LdsOrdList {
			if slices.Contains(handles, p.LdsOrdList[i].Famc) {
				p.LdsOrdList[i].Famc = ""
			}
		}
	case KindPlace:
		removeLdsPlaces(p.LdsOrdList, handles)
	case KindMedia:
		p.MediaList = removeRefs(p.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(p.allAnnotations(), kind, handles)
	}
}

// Merge folds acquisition into p. The acquisition's ID is kept as an attribute,
// its names become alternate names and its family links are added to p's.
func (p *Person) Merge(acquisition *Person) {
	if acquisition.ID != "" {
		p.Attributes = append(p.Attributes, Attribute{Type: MergedIDAttribute, Value: acquisition.ID})
	}
	p.mergeBase(&acquisition.Base)
	if p.Gender == GenderUnknown || p.Gender == "" {
		p.Gender = acquisition.Gender
	}

	names := append([]Name{acquisition.PrimaryName}, acquisition.AlternateNames...)
	p.mergeAlternateNames(names)
	p.mergeEventRefList(acquisition)
	p.LdsOrdList = mergeList(p.LdsOrdList, acquisition.LdsOrdList)
	p.MediaList = mergeList(p.MediaList, acquisition.MediaList)
	p.Attributes = mergeList(p.Attributes, acquisition.Attributes)
	p.PersonRefList = mergeList(p.PersonRefList, acquisition.PersonRefList)
	p.Annotations.merge(&acquisition.Annotations)

	for _, handle := range acquisition.ParentFamilyList {
		p.AddParentFamilyHandle(handle)
	}
	for _, handle := range acquisition.FamilyList {
		p.AddFamilyHandle(handle)
	}
}

func (p *Person) mergeAlternateNames(addenda []Name) {
	existing := len(p.AlternateNames)
	for i := range addenda {
		addendum := &addenda[i]
		if addendum.IsEmpty() {
			continue
		}
		matched := false
		if !p.PrimaryName.IsEmpty() {
			switch p.PrimaryName.IsEquivalent(addendum) {
			case Identical:
				matched = true
			case Equal:
				p.PrimaryName.Merge(addendum)
				matched = true
			}
		}
		for j := 0; j < existing && !matched; j++ {
			switch p.AlternateNames[j].IsEquivalent(addendum) {
			case Identical:
				matched = true
			case Equal:
				p.AlternateNames[j].Merge(addendum)
				matched = true
			}
		}
		if !matched {
			p.AlternateNames = append(p.AlternateNames, *addendum)
		}
	}
}

func (p *Person) mergeEventRefList(acquisition *Person) {
	p.EventRefList = mergeList(p.EventRefList, acquisition.EventRefList)
	if p.BirthRef == "" {
		p.BirthRef = acquisition.BirthRef
	}
	if p.DeathRef == "" {
		p.DeathRef = acquisition.DeathRef
	}
}

// AddFamilyHandle records a family in which p is a parent. The family record is not touched.
func (p *Person) AddFamilyHandle(handle string) {
	p.FamilyList = appendHandle(p.FamilyList, handle)
}

func (p *Person) RemoveFamilyHandle(handle string) bool {
	if !slices.Contains(p.FamilyList, handle) {
		return false
	}
	p.FamilyList = removeHandles(p.FamilyList, []string{handle})
	return true
}

// AddParentFamilyHandle records a family in which p is a child. The family record is not touched.
func (p *Person) AddParentFamilyHandle(handle string) {
	p.ParentFamilyList = appendHandle(p.ParentFamilyList, handle)
}

func (p *Person) RemoveParentFamilyHandle(handle string) bool {
	if !slices.Contains(p.ParentFamilyList, handle) {
		return false
	}
	p.ParentFamilyList = removeHandles(p.ParentFamilyList, []string{handle})
	return true
}

// BirthEventRef returns the reference to the birth event, if any.
func (p *Person) BirthEventRef() *EventRef {
	return p.eventRef(p.BirthRef)
}

// DeathEventRef returns the reference to the death event, if any.
func (p *Person) DeathEventRef() *EventRef {
	return p.eventRef(p.DeathRef)
}

func (p *Person) eventRef(handle string) *EventRef {
	if handle == "" {
		return nil
	}
	for i := range p.EventRefList {
		if p.EventRefList[i].Ref == handle {
			return &p.EventRefList[i]
		}
	}
	return nil
}
