package model

import "slices"

// FamilyRelType is the relationship between the father and mother of a family.
type FamilyRelType string

const (
	FamilyMarried    FamilyRelType = "Married"
	FamilyUnmarried  FamilyRelType = "Unmarried"
	FamilyCivilUnion FamilyRelType = "Civil Union"
	FamilyUnknown    FamilyRelType = "Unknown"
)

// Family joins up to two parents and their children.
type Family struct {
	Base         `yaml:",inline"`
	FatherHandle string        `json:"father,omitempty" yaml:"father,omitempty"`
	MotherHandle string        `json:"mother,omitempty" yaml:"mother,omitempty"`
	Type         FamilyRelType `json:"type,omitempty" yaml:"type,omitempty"`
	ChildRefList []ChildRef    `json:"children,omitempty" yaml:"children,omitempty"`
	EventRefList []EventRef    `json:"events,omitempty" yaml:"events,omitempty"`
	LdsOrdList   []LdsOrd      `json:"lds_ordinances,omitempty" yaml:"lds_ordinances,omitempty"`
	MediaList    []MediaRef    `json:"media,omitempty" yaml:"media,omitempty"`
	Attributes   []Attribute   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations  `yaml:",inline"`
}

func NewFamily() *Family {
	return &Family{Type: FamilyUnknown}
}

func (f *Family) Kind() Kind { return KindFamily }

func (f *Family) allAnnotations() []*Annotations {
	list := []*Annotations{&f.Annotations}
	list = append(list, annotationsOf(f.ChildRefList)...)
	for i := range f.EventRefList {
		list = append(list, f.EventRefList[i].allAnnotations()...)
	}
	list = append(list, annotationsOf(f.LdsOrdList)...)
	list = append(list, annotationsOf(f.MediaList)...)
	list = append(list, annotationsOf(f.Attributes)...)
	return list
}

func (f *Family) References() []Ref {
	var c refCollector
	c.add(KindPerson, f.FatherHandle, f.MotherHandle)
	c.add(KindPerson, refHandles(f.ChildRefList)...)
	c.add(KindEvent, refHandles(f.EventRefList)...)
	c.add(KindPlace, ldsPlaces(f.LdsOrdList)...)
	c.addMedia(f.MediaList)
	c.addAnnotations(f.allAnnotations())
	return c.result()
}

func (f *Family) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindPerson:
		return handle != "" && (f.FatherHandle == handle || f.MotherHandle == handle || hasRef(f.ChildRefList, handle))
	case KindEvent:
		return hasRef(f.EventRefList, handle)
	case KindPlace:
		return slices.Contains(ldsPlaces(f.LdsOrdList), handle)
	case KindMedia:
		return hasRef(f.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(f.allAnnotations(), kind, handle)
	}
	return false
}

func (f *Family) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindPerson:
		f.ChildRefList = replaceRefs(f.ChildRefList, oldHandle, newHandle)
		if f.FatherHandle == oldHandle {
			f.FatherHandle = newHandle
		}
		if f.MotherHandle == oldHandle {
			f.MotherHandle = newHandle
		}
	case KindEvent:
		f.EventRefList = replaceRefs(f.EventRefList, oldHandle, newHandle)
	case KindPlace:
		replaceLdsPlace(f.LdsOrdList, oldHandle, newHandle)
	case KindMedia:
		f.MediaList = replaceRefs(f.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(f.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (f *Family) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindPerson:
		f.ChildRefList = removeRefs(f.ChildRefList, handles)
		if slices.Contains(handles, f.FatherHandle) {
			f.FatherHandle = ""
		}
		if slices.Contains(handles, f.MotherHandle) {
			f.MotherHandle = ""
		}
	case KindEvent:
		f.EventRefList = removeRefs(f.EventRefList, handles)
	case KindPlace:
		removeLdsPlaces(f.LdsOrdList, handles)
	case KindMedia:
		f.MediaList = removeRefs(f.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(f.allAnnotations(), kind, handles)
	}
}

// Merge folds acquisition into f. The acquisition's handle, ID, father and mother are
// not carried over; its relationship type only replaces an unknown one.
func (f *Family) Merge(acquisition *Family) {
	if f.Type != acquisition.Type && (f.Type == FamilyUnknown || f.Type == "") {
		f.Type = acquisition.Type
	}
	f.mergeBase(&acquisition.Base)
	f.EventRefList = mergeList(f.EventRefList, acquisition.EventRefList)
	f.LdsOrdList = mergeList(f.LdsOrdList, acquisition.LdsOrdList)
	f.MediaList = mergeList(f.MediaList, acquisition.MediaList)
	f.ChildRefList = mergeList(f.ChildRefList, acquisition.ChildRefList)
	f.Attributes = mergeList(f.Attributes, acquisition.Attributes)
	f.Annotations.merge(&acquisition.Annotations)
}

// Parents returns the (father, mother) pair.
func (f *Family) Parents() [2]string {
	return [2]string{f.FatherHandle, f.MotherHandle}
}

func (f *Family) HasChild(handle string) bool {
	return hasRef(f.ChildRefList, handle)
}

func (f *Family) AddChildRef(ref ChildRef) {
	if !f.HasChild(ref.Ref) {
		f.ChildRefList = append(f.ChildRefList, ref)
	}
}

func (f *Family) RemoveChildHandle(handle string) {
	f.ChildRefList = removeRefs(f.ChildRefList, []string{handle})
}

func (f *Family) ChildHandles() []string {
	return refHandles(f.ChildRefList)
}
