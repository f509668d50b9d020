package model

// Media is an external file such as a photograph or scan.
type Media struct {
	Base        `yaml:",inline"`
	Path        string      `json:"path,omitempty" yaml:"path,omitempty"`
	Mime        string      `json:"mime,omitempty" yaml:"mime,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string      `json:"date,omitempty" yaml:"date,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations `yaml:",inline"`
}

func (m *Media) Kind() Kind { return KindMedia }

func (m *Media) allAnnotations() []*Annotations {
	return append([]*Annotations{&m.Annotations}, annotationsOf(m.Attributes)...)
}

func (m *Media) References() []Ref {
	var c refCollector
	c.addAnnotations(m.allAnnotations())
	return c.result()
}

func (m *Media) HasHandleReference(kind Kind, handle string) bool {
	return hasAnnotation(m.allAnnotations(), kind, handle)
}

func (m *Media) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	replaceAnnotation(m.allAnnotations(), kind, oldHandle, newHandle)
}

func (m *Media) RemoveHandleReferences(kind Kind, handles []string) {
	removeAnnotations(m.allAnnotations(), kind, handles)
}

func (m *Media) Merge(acquisition *Media) {
	m.mergeBase(&acquisition.Base)
	m.Attributes = mergeList(m.Attributes, acquisition.Attributes)
	m.Annotations.merge(&acquisition.Annotations)
}
