package model

// Source is a publication or record that citations point into.
type Source struct {
	Base        `yaml:",inline"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Author      string      `json:"author,omitempty" yaml:"author,omitempty"`
	PubInfo     string      `json:"pubinfo,omitempty" yaml:"pubinfo,omitempty"`
	Abbrev      string      `json:"abbrev,omitempty" yaml:"abbrev,omitempty"`
	RepoRefList []RepoRef   `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	MediaList   []MediaRef  `json:"media,omitempty" yaml:"media,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations `yaml:",inline"`
}

func (s *Source) Kind() Kind { return KindSource }

func (s *Source) allAnnotations() []*Annotations {
	list := []*Annotations{&s.Annotations}
	list = append(list, annotationsOf(s.RepoRefList)...)
	list = append(list, annotationsOf(s.MediaList)...)
	return append(list, annotationsOf(s.Attributes)...)
}

func (s *Source) References() []Ref {
	var c refCollector
	c.add(KindRepository, refHandles(s.RepoRefList)...)
	c.addMedia(s.MediaList)
	c.addAnnotations(s.allAnnotations())
	return c.result()
}

func (s *Source) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindRepository:
		return hasRef(s.RepoRefList, handle)
	case KindMedia:
		return hasRef(s.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(s.allAnnotations(), kind, handle)
	}
	return false
}

func (s *Source) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindRepository:
		s.RepoRefList = replaceRefs(s.RepoRefList, oldHandle, newHandle)
	case KindMedia:
		s.MediaList = replaceRefs(s.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(s.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (s *Source) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindRepository:
		s.RepoRefList = removeRefs(s.RepoRefList, handles)
	case KindMedia:
		s.MediaList = removeRefs(s.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(s.allAnnotations(), kind, handles)
	}
}

func (s *Source) Merge(acquisition *Source) {
	s.mergeBase(&acquisition.Base)
	s.RepoRefList = mergeList(s.RepoRefList, acquisition.RepoRefList)
	s.MediaList = mergeList(s.MediaList, acquisition.MediaList)
	s.Attributes = mergeList(s.Attributes, acquisition.Attributes)
	s.Annotations.merge(&acquisition.Annotations)
}
