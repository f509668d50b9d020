package model

// Citation points at a specific location (page) within a source.
type Citation struct {
	Base         `yaml:",inline"`
	Page         string      `json:"page,omitempty" yaml:"page,omitempty"`
	Date         string      `json:"date,omitempty" yaml:"date,omitempty"`
	Confidence   int         `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	SourceHandle string      `json:"source,omitempty" yaml:"source,omitempty"`
	MediaList    []MediaRef  `json:"media,omitempty" yaml:"media,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations  `yaml:",inline"`
}

func (c *Citation) Kind() Kind { return KindCitation }

func (c *Citation) allAnnotations() []*Annotations {
	list := []*Annotations{&c.Annotations}
	list = append(list, annotationsOf(c.MediaList)...)
	return append(list, annotationsOf(c.Attributes)...)
}

func (c *Citation) References() []Ref {
	var rc refCollector
	rc.add(KindSource, c.SourceHandle)
	rc.addMedia(c.MediaList)
	rc.addAnnotations(c.allAnnotations())
	return rc.result()
}

func (c *Citation) HasHandleReference(kind Kind, handle string) bool {
	switch kind {
	case KindSource:
		return handle != "" && c.SourceHandle == handle
	case KindMedia:
		return hasRef(c.MediaList, handle)
	case KindCitation, KindNote:
		return hasAnnotation(c.allAnnotations(), kind, handle)
	}
	return false
}

func (c *Citation) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	switch kind {
	case KindSource:
		if c.SourceHandle == oldHandle {
			c.SourceHandle = newHandle
		}
	case KindMedia:
		c.MediaList = replaceRefs(c.MediaList, oldHandle, newHandle)
	case KindCitation, KindNote:
		replaceAnnotation(c.allAnnotations(), kind, oldHandle, newHandle)
	}
}

func (c *Citation) RemoveHandleReferences(kind Kind, handles []string) {
	switch kind {
	case KindSource:
		if len(removeHandles([]string{c.SourceHandle}, handles)) == 0 {
			c.SourceHandle = ""
		}
	case KindMedia:
		c.MediaList = removeRefs(c.MediaList, handles)
	case KindCitation, KindNote:
		removeAnnotations(c.allAnnotations(), kind, handles)
	}
}

// Merge folds acquisition into c. Page, date, confidence and source of c win.
func (c *Citation) Merge(acquisition *Citation) {
	c.mergeBase(&acquisition.Base)
	c.MediaList = mergeList(c.MediaList, acquisition.MediaList)
	c.Attributes = mergeList(c.Attributes, acquisition.Attributes)
	c.Annotations.merge(&acquisition.Annotations)
}
