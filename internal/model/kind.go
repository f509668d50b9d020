package model

import (
	"fmt"
	"strings"
)

// Kind names a primary object type stored in a family tree.
type Kind string

const (
	KindPerson     Kind = "Person"
	KindFamily     Kind = "Family"
	KindEvent      Kind = "Event"
	KindPlace      Kind = "Place"
	KindSource     Kind = "Source"
	KindCitation   Kind = "Citation"
	KindRepository Kind = "Repository"
	KindMedia      Kind = "Media"
	KindNote       Kind = "Note"
)

// AllKinds lists every primary object kind in dependency order.
var AllKinds = []Kind{
	KindPerson,
	KindFamily,
	KindEvent,
	KindPlace,
	KindSource,
	KindCitation,
	KindRepository,
	KindMedia,
	KindNote,
}

var constructors = map[Kind]func() Object{
	KindPerson:     func() Object { return NewPerson() },
	KindFamily:     func() Object { return NewFamily() },
	KindEvent:      func() Object { return &Event{} },
	KindPlace:      func() Object { return &Place{} },
	KindSource:     func() Object { return &Source{} },
	KindCitation:   func() Object { return &Citation{} },
	KindRepository: func() Object { return &Repository{} },
	KindMedia:      func() Object { return &Media{} },
	KindNote:       func() Object { return &Note{} },
}

// ParseKind accepts a kind name in any case.
func ParseKind(name string) (Kind, error) {
	for _, kind := range AllKinds {
		if strings.EqualFold(string(kind), name) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown object kind %q", name)
}

// New returns an empty object of the given kind.
func New(kind Kind) (Object, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown object kind %q", kind)
	}
	return ctor(), nil
}

// Ref is a (kind, handle) pair pointing at a primary object.
type Ref struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Handle string `json:"handle" yaml:"handle"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.Handle
}

// Object is implemented by every primary object.
type Object interface {
	Kind() Kind
	GetHandle() string
	GetID() string
	// References returns every primary object this one points at, without duplicates.
	References() []Ref
	HasHandleReference(kind Kind, handle string) bool
	// ReplaceHandleReference repoints references of the given kind from oldHandle to
	// newHandle. References that become equivalent to an existing one are folded into it.
	ReplaceHandleReference(kind Kind, oldHandle, newHandle string)
	RemoveHandleReferences(kind Kind, handles []string)
}

// Base holds the fields shared by every primary object.
type Base struct {
	Handle  string   `json:"handle" yaml:"handle"`
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Private bool     `json:"private,omitempty" yaml:"private,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func (b *Base) GetHandle() string {
	return b.Handle
}

func (b *Base) GetID() string {
	return b.ID
}

func (b *Base) mergeBase(acquisition *Base) {
	b.Private = b.Private || acquisition.Private
	for _, tag := range acquisition.Tags {
		b.Tags = appendHandle(b.Tags, tag)
	}
}
