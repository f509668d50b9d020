package model

import "slices"

// Place is a location. PlaceRefList lists the places enclosing it.
type Place struct {
	Base         `yaml:",inline"`
	Title        string     `json:"title,omitempty" yaml:"title,omitempty"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type         string     `json:"type,omitempty" yaml:"type,omitempty"`
	AltNames     []string   `json:"alt_names,omitempty" yaml:"alt_names,omitempty"`
	PlaceRefList []PlaceRef `json:"enclosed_by,omitempty" yaml:"enclosed_by,omitempty"`
	URLs         []string   `json:"urls,omitempty" yaml:"urls,omitempty"`
	MediaList    []MediaRef `json:"media,omitempty" yaml:"media,omitempty"`
	Annotations  `yaml:",inline"`
}

func (p *Place) Kind() Kind { return KindPlace }

func (p *Place) allAnnotations() []*Annotations {
	list := []*Annotations{&p.Annotations}
	list = append(list, annotationsOf(p.PlaceRefList)...)
	return append(list, annotationsOf(p.MediaList)...)
}

func (p *Place) References() []Ref {
	var c refCollector
	c.add(KindPlace, refHandles(p.PlaceRefList)...)
	c.addMedia(p.MediaList)
	c.addAnnotations(p.allAnnotations())
	return c.result()
}

func (p *Place) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindPlace:
		return hasRef(p.PlaceRefList, handle)
	case KindMedia:
		return hasRef(p.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(p.allAnnotations(), kind, handle)
	}
	return false
}

func (p *Place) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindPlace:
		p.PlaceRefList = replaceRefs(p.PlaceRefList, oldHandle, newHandle)
	case KindMedia:
		p.MediaList = replaceRefs(p.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(p.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (p *Place) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindPlace:
		p.PlaceRefList = removeRefs(p.PlaceRefList, handles)
	case KindMedia:
		p.MediaList = removeRefs(p.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(p.allAnnotations(), kind, handles)
	}
}

// Merge folds acquisition into p. The acquisition's name survives as an alternate name.
func (p *Place) Merge(acquisition *Place) {
	p.mergeBase(&acquisition.Base)
	names := append([]string{acquisition.Name}, acquisition.AltNames...)
	for _, name := range names {
		if name != p.Name {
			p.AltNames = appendHandle(p.AltNames, name)
		}
	}
	for _, url := range acquisition.URLs {
		p.URLs = appendHandle(p.URLs, url)
	}
	p.PlaceRefList = mergeList(p.PlaceRefList, acquisition.PlaceRefList)
	p.MediaList = mergeList(p.MediaList, acquisition.MediaList)
	p.Annotations.merge(&acquisition.Annotations)
}

// EnclosedBy reports whether p is directly enclosed by the given place.
func (p *Place) EnclosedBy(handle string) bool {
	return slices.Contains(refHandles(p.PlaceRefList), handle)
}
