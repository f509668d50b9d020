package cache

import (
	"context"
	"sync"

	"github.com/emrgen/lineage/internal/model"
)

var _ Redirects = (*MemoryRedirects)(nil)

// MemoryRedirects is the process-local cache used when no redis is configured.
type MemoryRedirects struct {
	mu        sync.RWMutex
	redirects map[model.Kind]map[string]string
}

func NewMemoryRedirects() *MemoryRedirects {
	return &MemoryRedirects{redirects: make(map[model.Kind]map[string]string)}
}

func (m *MemoryRedirects) Set(_ context.Context, kind model.Kind, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redirects[kind] == nil {
		m.redirects[kind] = make(map[string]string)
	}
	m.redirects[kind][from] = to

	return nil
}

func (m *MemoryRedirects) Lookup(_ context.Context, kind model.Kind, from string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	to, ok := m.redirects[kind][from]
	if !ok {
		return "", ErrNoRedirect
	}

	return to, nil
}

func (m *MemoryRedirects) Delete(_ context.Context, kind model.Kind, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.redirects[kind], from)
	return nil
}
