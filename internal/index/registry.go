// Package index holds the in-process state of the daemon: the in-memory
// folder-key registry and the save history.
package index

import (
	"context"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Registry maps stable folder keys to bookmark store folder ids.
// Implemented by MemoryRegistry and the Redis store.
type Registry interface {
	Get(ctx context.Context, key string) (domain.FolderMapping, bool, error)
	Put(ctx context.Context, m domain.FolderMapping) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]domain.FolderMapping, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ Registry = (*MemoryRegistry)(nil)
