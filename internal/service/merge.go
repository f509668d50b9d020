package service

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/lineage/internal/cache"
	"github.com/emrgen/lineage/internal/merge"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/sirupsen/logrus"
)

// maxRedirectHops bounds how many merges Resolve follows for one handle.
const maxRedirectHops = 32

// Result describes a finished merge.
type Result struct {
	Kind    model.Kind
	Phoenix string
	Titanic string
	// Complete is false when a person merge left duplicate families behind.
	Complete bool
}

// NewMergeService creates a new MergeService. A nil redirects cache falls back to memory.
func NewMergeService(store store.Store, redirects cache.Redirects) *MergeService {
	if redirects == nil {
		redirects = cache.NewMemoryRedirects()
	}

	return &MergeService{
		store:     store,
		redirects: redirects,
	}
}

// MergeService merges objects of a tree by handle and resolves handles of
// objects that were merged away.
type MergeService struct {
	store     store.Store
	redirects cache.Redirects
}

// MergePeople merges the titanic person into the phoenix person.
func (s *MergeService) MergePeople(ctx context.Context, phoenix, titanic string) (*Result, error) {
	if phoenix == titanic {
		return nil, ErrSameObject
	}

	p, err := s.store.GetPerson(ctx, phoenix)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetPerson(ctx, titanic)
	if err != nil {
		return nil, err
	}

	query, err := merge.NewPersonQuery(s.store, p, t)
	if err != nil {
		return nil, err
	}
	complete, err := query.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if !complete {
		logrus.Warnf("merge of person %s into %s left duplicate families", titanic, phoenix)
	}

	return s.done(ctx, model.KindPerson, phoenix, titanic, complete), nil
}

// MergeFamilies merges the titanic family into the phoenix family. Options
// choose which father or mother survives.
func (s *MergeService) MergeFamilies(ctx context.Context, phoenix, titanic string, opts ...merge.FamilyOption) (*Result, error) {
	if phoenix == titanic {
		return nil, ErrSameObject
	}

	p, err := s.store.GetFamily(ctx, phoenix)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetFamily(ctx, titanic)
	if err != nil {
		return nil, err
	}

	query, err := merge.NewFamilyQuery(s.store, p, t, opts...)
	if err != nil {
		return nil, err
	}
	if err := query.Execute(ctx); err != nil {
		return nil, err
	}

	return s.done(ctx, model.KindFamily, phoenix, titanic, true), nil
}

// MergeObjects merges two objects of any kind.
func (s *MergeService) MergeObjects(ctx context.Context, kind model.Kind, phoenix, titanic string) (*Result, error) {
	switch kind {
	case model.KindPerson:
		return s.MergePeople(ctx, phoenix, titanic)
	case model.KindFamily:
		return s.MergeFamilies(ctx, phoenix, titanic)
	}
	if phoenix == titanic {
		return nil, ErrSameObject
	}

	p, err := s.store.Get(ctx, kind, phoenix)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, kind, titanic)
	if err != nil {
		return nil, err
	}

	query, err := merge.NewObjectQuery(s.store, p, t)
	if err != nil {
		return nil, err
	}
	if err := query.Execute(ctx); err != nil {
		return nil, err
	}

	return s.done(ctx, kind, phoenix, titanic, true), nil
}

func (s *MergeService) done(ctx context.Context, kind model.Kind, phoenix, titanic string, complete bool) *Result {
	if err := s.redirects.Set(ctx, kind, titanic, phoenix); err != nil {
		logrus.Warnf("failed to cache redirect of %s %s: %v", kind, titanic, err)
	}

	return &Result{
		Kind:     kind,
		Phoenix:  phoenix,
		Titanic:  titanic,
		Complete: complete,
	}
}

// Resolve returns the live handle for handle, following merges that absorbed it.
func (s *MergeService) Resolve(ctx context.Context, kind model.Kind, handle string) (string, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for range maxRedirectHops {
		_, err := s.store.Get(ctx, kind, handle)
		if err == nil {
			return handle, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		if !seen.Add(handle) {
			break
		}

		next, err := s.next(ctx, kind, handle)
		if err != nil {
			return "", err
		}
		logrus.Debugf("%s %s was merged into %s", kind, handle, next)
		handle = next
	}

	return "", fmt.Errorf("%w: %s %s", ErrRedirectLoop, kind, handle)
}

// next finds the object handle was merged into, preferring the cache over the merge log.
func (s *MergeService) next(ctx context.Context, kind model.Kind, handle string) (string, error) {
	to, err := s.redirects.Lookup(ctx, kind, handle)
	if err == nil {
		return to, nil
	}
	if !errors.Is(err, cache.ErrNoRedirect) {
		logrus.Warnf("redirect cache lookup of %s %s failed: %v", kind, handle, err)
	}

	record, err := s.store.FindMerge(ctx, kind, handle)
	if err != nil {
		return "", err
	}
	if err := s.redirects.Set(ctx, kind, handle, record.Phoenix); err != nil {
		logrus.Warnf("failed to cache redirect of %s %s: %v", kind, handle, err)
	}

	return record.Phoenix, nil
}

// Undo reverts the latest transaction and forgets the redirects of the merges it ran.
func (s *MergeService) Undo(ctx context.Context) (*model.UndoTransaction, error) {
	txn, err := s.store.Undo(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Merges(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := s.redirects.Delete(ctx, model.Kind(record.Kind), record.Titanic); err != nil {
			logrus.Warnf("failed to drop redirect of %s %s: %v", record.Kind, record.Titanic, err)
		}
	}

	return txn, nil
}

// Redo re-applies the earliest undone transaction and restores its redirects.
func (s *MergeService) Redo(ctx context.Context) (*model.UndoTransaction, error) {
	txn, err := s.store.Redo(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Merges(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := s.redirects.Set(ctx, model.Kind(record.Kind), record.Titanic, record.Phoenix); err != nil {
			logrus.Warnf("failed to cache redirect of %s %s: %v", record.Kind, record.Titanic, err)
		}
	}

	return txn, nil
}
