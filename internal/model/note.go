package model

import "slices"

// Note is free text. Links are the objects the text links to.
type Note struct {
	Base  `yaml:",inline"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Links []Ref  `json:"links,omitempty" yaml:"links,omitempty"`
}

func (n *Note) Kind() Kind { return KindNote }

func (n *Note) References() []Ref {
	var c refCollector
	for _, link := range n.Links {
		c.add(link.Kind, link.Handle)
	}
	return c.result()
}

func (n *Note) HasHandleReference(kind Kind, handle string) bool {
	return slices.Contains(n.Links, Ref{Kind: kind, Handle: handle})
}

func (n *Note) ReplaceHandleReference(kind Kind, oldHandle, newHandle string) {
	if oldHandle == newHandle {
		return
	}
	out := n.Links[:0:0]
	for _, link := range n.Links {
		if link.Kind == kind && link.Handle == oldHandle {
			link.Handle = newHandle
		}
		if !slices.Contains(out, link) {
			out = append(out, link)
		}
	}
	n.Links = out
}

func (n *Note) RemoveHandleReferences(kind Kind, handles []string) {
	n.Links = slices.DeleteFunc(n.Links, func(link Ref) bool {
		return link.Kind == kind && slices.Contains(handles, link.Handle)
	})
}

// Merge folds acquisition into n. The text of n wins.
func (n *Note) Merge(acquisition *Note) {
	n.mergeBase(&acquisition.Base)
}
