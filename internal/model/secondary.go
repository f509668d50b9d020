package model

import "slices"

// Annotations carries the citation and note handles every secondary object may have.
type Annotations struct {
	CitationList []string `json:"citations,omitempty" yaml:"citations,omitempty"`
	NoteList     []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (a *Annotations) merge(acquisition *Annotations) {
	for _, handle := range acquisition.CitationList {
		a.CitationList = appendHandle(a.CitationList, handle)
	}
	for _, handle := range acquisition.NoteList {
		a.NoteList = appendHandle(a.NoteList, handle)
	}
}

func (a *Annotations) same(other *Annotations) bool {
	return slices.Equal(a.CitationList, other.CitationList) && slices.Equal(a.NoteList, other.NoteList)
}

func (a *Annotations) list(kind Kind) *[]string {
	switch kind {
	case KindCitation:
		return &a.CitationList
	case KindNote:
		return &a.NoteList
	}
	return nil
}

func hasAnnotation(list []*Annotations, kind Kind, handle string) bool {
	for _, a := range list {
		if handles := a.list(kind); handles != nil && slices.Contains(*handles, handle) {
			return true
		}
	}
	return false
}

func replaceAnnotation(list []*Annotations, kind Kind, oldHandle, newHandle string) {
	for _, a := range list {
		if handles := a.list(kind); handles != nil {
			*handles = replaceHandle(*handles, oldHandle, newHandle)
		}
	}
}

func removeAnnotations(list []*Annotations, kind Kind, removed []string) {
	for _, a := range list {
		if handles := a.list(kind); handles != nil {
			*handles = removeHandles(*handles, removed)
		}
	}
}

// Name is a person's name.
type Name struct {
	First       string `json:"first,omitempty" yaml:"first,omitempty"`
	Surname     string `json:"surname,omitempty" yaml:"surname,omitempty"`
	Suffix      string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Nick        string `json:"nick,omitempty" yaml:"nick,omitempty"`
	Call        string `json:"call,omitempty" yaml:"call,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (n *Name) IsEmpty() bool {
	return n.First == "" && n.Surname == "" && n.Suffix == "" && n.Title == "" && n.Nick == "" && n.Call == ""
}

func (n *Name) IsEquivalent(other *Name) Equivalence {
	sameCore := n.First == other.First && n.Surname == other.Surname && n.Suffix == other.Suffix &&
		n.Title == other.Title && n.Nick == other.Nick && n.Call == other.Call && n.Type == other.Type
	return classify(sameCore, n.Private == other.Private && n.Annotations.same(&other.Annotations))
}

func (n *Name) Merge(acquisition *Name) {
	n.Private = n.Private || acquisition.Private
	n.Annotations.merge(&acquisition.Annotations)
}

func (n *Name) annotations() *Annotations { return &n.Annotations }

func (n Name) String() string {
	switch {
	case n.First == "":
		return n.Surname
	case n.Surname == "":
		return n.First
	}
	return n.First + " " + n.Surname
}

// Attribute is a typed key/value annotation.
type Attribute struct {
	Type        string `json:"type" yaml:"type"`
	Value       string `json:"value" yaml:"value"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (a *Attribute) IsEquivalent(other *Attribute) Equivalence {
	return classify(a.Type == other.Type && a.Value == other.Value,
		a.Private == other.Private && a.Annotations.same(&other.Annotations))
}

func (a *Attribute) Merge(acquisition *Attribute) {
	a.Private = a.Private || acquisition.Private
	a.Annotations.merge(&acquisition.Annotations)
}

func (a *Attribute) annotations() *Annotations { return &a.Annotations }

// EventRef links a person or family to an event in a given role.
type EventRef struct {
	Ref         string      `json:"ref" yaml:"ref"`
	Role        string      `json:"role,omitempty" yaml:"role,omitempty"`
	Private     bool        `json:"private,omitempty" yaml:"private,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *EventRef) RefHandle() string         { return r.Ref }
func (r *EventRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *EventRef) annotations() *Annotations  { return &r.Annotations }

func (r *EventRef) IsEquivalent(other *EventRef) Equivalence {
	return classify(r.Ref == other.Ref && r.Role == other.Role,
		r.Private == other.Private && r.Annotations.same(&other.Annotations) &&
			slices.EqualFunc(r.Attributes, other.Attributes, func(a, b Attribute) bool { return a.IsEquivalent(&b) == Identical }))
}

func (r *EventRef) Merge(acquisition *EventRef) {
	r.Private = r.Private || acquisition.Private
	r.Attributes = mergeList(r.Attributes, acquisition.Attributes)
	r.Annotations.merge(&acquisition.Annotations)
}

func (r *EventRef) allAnnotations() []*Annotations {
	return append([]*Annotations{&r.Annotations}, annotationsOf(r.Attributes)...)
}

// ChildRef links a family to one of its children.
type ChildRef struct {
	Ref         string `json:"ref" yaml:"ref"`
	FatherRel   string `json:"father_rel,omitempty" yaml:"father_rel,omitempty"`
	MotherRel   string `json:"mother_rel,omitempty" yaml:"mother_rel,omitempty"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *ChildRef) RefHandle() string         { return r.Ref }
func (r *ChildRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *ChildRef) annotations() *Annotations  { return &r.Annotations }

func (r *ChildRef) IsEquivalent(other *ChildRef) Equivalence {
	return classify(r.Ref == other.Ref,
		r.FatherRel == other.FatherRel && r.MotherRel == other.MotherRel &&
			r.Private == other.Private && r.Annotations.same(&other.Annotations))
}

func (r *ChildRef) Merge(acquisition *ChildRef) {
	r.Private = r.Private || acquisition.Private
	r.Annotations.merge(&acquisition.Annotations)
}

// PersonRef is an association between two people, e.g. a godfather.
type PersonRef struct {
	Ref         string `json:"ref" yaml:"ref"`
	Relation    string `json:"relation,omitempty" yaml:"relation,omitempty"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *PersonRef) RefHandle() string         { return r.Ref }
func (r *PersonRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *PersonRef) annotations() *Annotations  { return &r.Annotations }

func (r *PersonRef) IsEquivalent(other *PersonRef) Equivalence {
	return classify(r.Ref == other.Ref && r.Relation == other.Relation,
		r.Private == other.Private && r.Annotations.same(&other.Annotations))
}

func (r *PersonRef) Merge(acquisition *PersonRef) {
	r.Private = r.Private || acquisition.Private
	r.Annotations.merge(&acquisition.Annotations)
}

// MediaRef links an object to a media file.
type MediaRef struct {
	Ref         string `json:"ref" yaml:"ref"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *MediaRef) RefHandle() string         { return r.Ref }
func (r *MediaRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *MediaRef) annotations() *Annotations  { return &r.Annotations }

func (r *MediaRef) IsEquivalent(other *MediaRef) Equivalence {
	return classify(r.Ref == other.Ref, r.Private == other.Private && r.Annotations.same(&other.Annotations))
}

func (r *MediaRef) Merge(acquisition *MediaRef) {
	r.Private = r.Private || acquisition.Private
	r.Annotations.merge(&acquisition.Annotations)
}

// RepoRef links a source to the repository holding it.
type RepoRef struct {
	Ref         string `json:"ref" yaml:"ref"`
	CallNumber  string `json:"call_number,omitempty" yaml:"call_number,omitempty"`
	MediaType   string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *RepoRef) RefHandle() string         { return r.Ref }
func (r *RepoRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *RepoRef) annotations() *Annotations  { return &r.Annotations }

func (r *RepoRef) IsEquivalent(other *RepoRef) Equivalence {
	return classify(r.Ref == other.Ref && r.CallNumber == other.CallNumber,
		r.MediaType == other.MediaType && r.Private == other.Private && r.Annotations.same(&other.Annotations))
}

func (r *RepoRef) Merge(acquisition *RepoRef) {
	r.Private = r.Private || acquisition.Private
	if r.MediaType == "" {
		r.MediaType = acquisition.MediaType
	}
	r.Annotations.merge(&acquisition.Annotations)
}

// PlaceRef says a place is enclosed by another place.
type PlaceRef struct {
	Ref         string `json:"ref" yaml:"ref"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Annotations `yaml:",inline"`
}

func (r *PlaceRef) RefHandle() string         { return r.Ref }
func (r *PlaceRef) SetRefHandle(handle string) { r.Ref = handle }
func (r *PlaceRef) annotations() *Annotations  { return &r.Annotations }

func (r *PlaceRef) IsEquivalent(other *PlaceRef) Equivalence {
	return classify(r.Ref == other.Ref, r.Date == other.Date && r.Annotations.same(&other.Annotations))
}

func (r *PlaceRef) Merge(acquisition *PlaceRef) {
	r.Annotations.merge(&acquisition.Annotations)
}

// LdsOrd is a Latter-day Saint ordinance. Famc points at the family a sealing refers to.
type LdsOrd struct {
	Type        string `json:"type" yaml:"type"`
	Temple      string `json:"temple,omitempty" yaml:"temple,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Famc        string `json:"famc,omitempty" yaml:"famc,omitempty"`
	Place       string `json:"place,omitempty" yaml:"place,omitempty"`
	Private     bool   `json:"private,omitempty" yaml:"private,omitempty"`
	Annotations `yaml:",inline"`
}

func (o *LdsOrd) annotations() *Annotations { return &o.Annotations }

func (o *LdsOrd) IsEquivalent(other *LdsOrd) Equivalence {
	return classify(o.Type == other.Type && o.Temple == other.Temple && o.Status == other.Status &&
		o.Date == other.Date && o.Famc == other.Famc && o.Place == other.Place,
		o.Private == other.Private && o.Annotations.same(&other.Annotations))
}

func (o *LdsOrd) Merge(acquisition *LdsOrd) {
	o.Private = o.Private || acquisition.Private
	o.Annotations.merge(&acquisition.Annotations)
}

func ldsPlaces(list []LdsOrd) []string {
	var out []string
	for _, o := range list {
		out = append(out, o.Place)
	}
	return out
}

func replaceLdsPlace(list []LdsOrd, oldHandle, newHandle string) {
	for i := range list {
		if list[i].Place == oldHandle {
			list[i].Place = newHandle
		}
	}
}

func removeLdsPlaces(list []LdsOrd, handles []string) {
	for i := range list {
		if slices.Contains(handles, list[i].Place) {
			list[i].Place = ""
		}
	}
}
