package model

import (
	"slices"

	"github.com/google/uuid"
)

// NewHandle returns a fresh opaque handle.
func NewHandle() string {
	return uuid.NewString()
}

func appendHandle(list []string, handle string) []string {
	if handle == "" || slices.Contains(list, handle) {
		return list
	}
	return append(list, handle)
}

// replaceHandle repoints oldHandle to newHandle, keeping the first position either
// handle occupied and dropping the resulting duplicate.
func replaceHandle(list []string, oldHandle, newHandle string) []string {
	if oldHandle == newHandle || !slices.Contains(list, oldHandle) {
		return list
	}
	out := make([]string, 0, len(list))
	for _, handle := range list {
		if handle == oldHandle {
			handle = newHandle
		}
		if slices.Contains(out, handle) {
			continue
		}
		out = append(out, handle)
	}
	return out
}

func removeHandles(list []string, handles []string) []string {
	if len(list) == 0 {
		return list
	}
	out := list[:0:0]
	for _, handle := range list {
		if !slices.Contains(handles, handle) {
			out = append(out, handle)
		}
	}
	return out
}

// refCollector accumulates references without duplicates.
type refCollector struct {
	seen map[Ref]struct{}
	refs []Ref
}

func (c *refCollector) add(kind Kind, handles ...string) {
	if c.seen == nil {
		c.seen = make(map[Ref]struct{})
	}
	for _, handle := range handles {
		if handle == "" {
			continue
		}
		ref := Ref{Kind: kind, Handle: handle}
		if _, ok := c.seen[ref]; ok {
			continue
		}
		c.seen[ref] = struct{}{}
		c.refs = append(c.refs, ref)
	}
}

func (c *refCollector) addAnnotations(list []*Annotations) {
	for _, a := range list {
		c.add(KindCitation, a.CitationList...)
		c.add(KindNote, a.NoteList...)
	}
}

func (c *refCollector) addMedia(list []MediaRef) {
	for _, ref := range list {
		c.add(KindMedia, ref.Ref)
	}
}

func (c *refCollector) result() []Ref {
	return c.refs
}
