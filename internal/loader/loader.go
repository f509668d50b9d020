// Package loader reads and writes whole family trees as YAML documents.
package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Tree is the document form of a family tree.
type Tree struct {
	DefaultPerson string              `yaml:"default_person,omitempty"`
	People        []*model.Person     `yaml:"people,omitempty"`
	Families      []*model.Family     `yaml:"families,omitempty"`
	Events        []*model.Event      `yaml:"events,omitempty"`
	Places        []*model.Place      `yaml:"places,omitempty"`
	Sources       []*model.Source     `yaml:"sources,omitempty"`
	Citations     []*model.Citation   `yaml:"citations,omitempty"`
	Repositories  []*model.Repository `yaml:"repositories,omitempty"`
	Media         []*model.Media      `yaml:"media,omitempty"`
	Notes         []*model.Note       `yaml:"notes,omitempty"`
}

// Objects returns every object of the tree in kind order.
func (t *Tree) Objects() []model.Object {
	var objects []model.Object
	for _, p := range t.People {
		objects = append(objects, p)
	}
	for _, f := range t.Families {
		objects = append(objects, f)
	}
	for _, e := range t.Events {
		objects = append(objects, e)
	}
	for _, p := range t.Places {
		objects = append(objects, p)
	}
	for _, s := range t.Sources {
		objects = append(objects, s)
	}
	for _, c := range t.Citations {
		objects = append(objects, c)
	}
	for _, r := range t.Repositories {
		objects = append(objects, r)
	}
	for _, m := range t.Media {
		objects = append(objects, m)
	}
	for _, n := range t.Notes {
		objects = append(objects, n)
	}

	return objects
}

// Add appends obj to the list matching its kind.
func (t *Tree) Add(obj model.Object) {
	switch o := obj.(type) {
	case *model.Person:
		t.People = append(t.People, o)
	case *model.Family:
		t.Families = append(t.Families, o)
	case *model.Event:
		t.Events = append(t.Events, o)
	case *model.Place:
		t.Places = append(t.Places, o)
	case *model.Source:
		t.Sources = append(t.Sources, o)
	case *model.Citation:
		t.Citations = append(t.Citations, o)
	case *model.Repository:
		t.Repositories = append(t.Repositories, o)
	case *model.Media:
		t.Media = append(t.Media, o)
	case *model.Note:
		t.Notes = append(t.Notes, o)
	}
}

// Decode parses a tree document. Unknown fields are rejected.
func Decode(r io.Reader) (*Tree, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	tree := &Tree{}
	if err := dec.Decode(tree); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode tree: %w", err)
	}

	return tree, nil
}

// Load decodes a tree document and imports it.
func Load(ctx context.Context, st store.Store, r io.Reader) (*Tree, error) {
	tree, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return tree, Import(ctx, st, tree)
}

// Import commits every object of the tree in one transaction.
func Import(ctx context.Context, st store.Store, tree *Tree) error {
	objects := tree.Objects()
	for _, obj := range objects {
		if obj.GetHandle() == "" {
			return fmt.Errorf("%w: %s %q", store.ErrMissingHandle, obj.Kind(), obj.GetID())
		}
	}

	err := st.Transaction(ctx, "Import", func(tx store.Store) error {
		for _, obj := range objects {
			if err := tx.Commit(ctx, obj); err != nil {
				return err
			}
		}
		if tree.DefaultPerson != "" {
			return tx.SetDefaultPersonHandle(ctx, tree.DefaultPerson)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logrus.Infof("imported %d objects", len(objects))

	return nil
}

// Export reads the whole tree back from the store.
func Export(ctx context.Context, st store.Store) (*Tree, error) {
	tree := &Tree{}
	for _, kind := range model.AllKinds {
		objects, err := st.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			tree.Add(obj)
		}
	}

	handle, err := st.DefaultPersonHandle(ctx)
	if err != nil {
		return nil, err
	}
	tree.DefaultPerson = handle

	return tree, nil
}

// Write encodes a tree document.
func Write(w io.Writer, tree *Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}

	return enc.Close()
}
