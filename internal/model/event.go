package model

// Event is something that happened at a date and place, e.g. a birth.
type Event struct {
	Base        `yaml:",inline"`
	Type        string      `json:"type,omitempty" yaml:"type,omitempty"`
	Date        string      `json:"date,omitempty" yaml:"date,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Place       string      `json:"place,omitempty" yaml:"place,omitempty"`
	MediaList   []MediaRef  `json:"media,omitempty" yaml:"media,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations `yaml:",inline"`
}

func (e *Event) Kind() Kind { return KindEvent }

func (e *Event) allAnnotations() []*Annotations {
	list := []*Annotations{&e.Annotations}
	list = append(list, annotationsOf(e.MediaList)...)
	return append(list, annotationsOf(e.Attributes)...)
}

func (e *Event) References() []Ref {
	var c refCollector
	c.add(KindPlace, e.Place)
	c.addMedia(e.MediaList)
	c.addAnnotations(e.allAnnotations())
	return c.result()
}

func (e *Event) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindPlace:
		return handle != "" && e.Place == handle
	case KindMedia:
		return hasRef(e.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(e.allAnnotations(), kind, handle)
	}
	return false
}

func (e *Event) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindPlace:
		if e.Place == oldHandle {
			e.Place = newHandle
		}
	case KindMedia:
		e.MediaList = replaceRefs(e.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(e.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (e *Event) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindPlace:
		if len(removeHandles([]string{e.Place}, handles)) == 0 {
			e.Place = ""
		}
	case KindMedia:
		e.MediaList = removeRefs(e.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(e.allAnnotations(), kind, handles)
	}
}

// Merge folds acquisition into e. Type, date, description and place of e win.
func (e *Event) Merge(acquisition *Event) {
	e.mergeBase(&acquisition.Base)
	if e.Place == "" {
		e.Place = acquisition.Place
	}
	e.Attributes = mergeList(e.Attributes, acquisition.Attributes)
	e.MediaList = mergeList(e.MediaList, acquisition.MediaList)
	e.Annotations.merge(&acquisition.Annotations)
}
