package index

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// MemoryRegistry provides in-memory storage of folder-key mappings.
// It acts as a fallback when Redis is unavailable; mappings are lost on restart.
type MemoryRegistry struct {
	mu       sync.RWMutex
	mappings map[string]domain.FolderMapping // key -> mapping
	now      func() time.Time
}

// NewMemoryRegistry creates an empty registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		mappings: make(map[string]domain.FolderMapping),
		now:      time.Now,
	}
}

// Get retrieves the mapping for key
func (r *MemoryRegistry) Get(_ context.Context, key string) (domain.FolderMapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappings[key]
	return m, ok, nil
}

// Put adds or replaces the mapping for m.Key
func (r *MemoryRegistry) Put(_ context.Context, m domain.FolderMapping) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mappings[m.Key] = m
	return nil
}

// Delete removes the mapping for key
func (r *MemoryRegistry) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.mappings, key)
	return nil
}

// List returns every mapping sorted by key
func (r *MemoryRegistry) List(_ context.Context) ([]domain.FolderMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FolderMapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Ping always succeeds
func (r *MemoryRegistry) Ping(context.Context) error { return nil }

// Close is a no-op
func (r *MemoryRegistry) Close() error { return nil }
