package model

// Repository is an archive or library holding sources.
type Repository struct {
	Base        `yaml:",inline"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	URLs        []string `json:"urls,omitempty" yaml:"urls,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *Repository) Kind() Kind { return KindRepository }

func (r *Repository) References() []Ref {
	var c refCollector
	c.addAnnotations([]*Annotations{&r.Annotations})
	return c.result()
}

func (r *Repository) HasHandleReference(kind Kind, handle string) bool {
	return hasAnnotation([]*Annotations{&r.Annotations}, kind, handle)
}

func (r *Repository) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	replaceAnnotation([]*Annotations{&r.Annotations}, kind, oldHandle, newHandle)
}

func (r *Repository) RemoveHandleReferences(kind Kind, handles []string) {
	removeAnnotations([]*Annotations{&r.Annotations}, kind, handles)
}

func (r *Repository) Merge(acquisition *Repository) {
	r.mergeBase(&acquisition.Base)
	for _, url := range acquisition.URLs {
		r.URLs = appendHandle(r.URLs, url)
	}
	r.Annotations.merge(&acquisition.Annotations)
}
