package store

import (
	"errors"
	"sync"
)

var ErrStoreNotFound = errors.New("store not found")

// TreeStoreProvider returns the store holding a named family tree.
type TreeStoreProvider interface {
	Provide(tree string) (Store, error)
}

// TreeProvider opens tree stores on first use and keeps them open.
type TreeProvider struct {
	mu     sync.Mutex
	open   func(tree string) (Store, error)
	stores map[string]Store
}

func NewTreeProvider(open func(tree string) (Store, error)) *TreeProvider {
	return &TreeProvider{
		open:   open,
		stores: make(map[string]Store),
	}
}

func (p *TreeProvider) Provide(tree string) (Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if store, ok := p.stores[tree]; ok {
		return store, nil
	}
	if p.open == nil {
		return nil, ErrStoreNotFound
	}

	store, err := p.open(tree)
	if err != nil {
		return nil, err
	}
	p.stores[tree] = store

	return store, nil
}

// Register makes an already opened store available under a tree name.
func (p *TreeProvider) Register(tree string, store Store) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stores[tree] = store
}

// DefaultProvider serves one store for every tree name.
type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide(tree string) (Store, error) {
	return p.store, nil
}
