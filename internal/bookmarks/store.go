// Package bookmarks is the bookmark store tabsaver writes saved sessions into.
package bookmarks

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// RootID is the default folder new top-level folders are created under.
const RootID = "unfiled_____"

// ErrRootFolder is returned when a caller tries to remove the store root.
var ErrRootFolder = errors.New("cannot remove the root folder")

// CreateParams holds parameters for creating a folder or bookmark entry.
type CreateParams struct {
	Title    string
	URL      string
	Type     domain.NodeType
	ParentID string // empty => RootID
}

// Store is the bookmark store contract used by the pipelines.
type Store interface {
	// Search returns every node whose title equals title, oldest first.
	Search(ctx context.Context, title string) ([]domain.Node, error)
	// Get returns a node by id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.Node, error)
	// Children returns the direct children of a folder, oldest first.
	Children(ctx context.Context, parentID string) ([]domain.Node, error)
	// Create adds a folder or bookmark entry.
	Create(ctx context.Context, params CreateParams) (domain.Node, error)
	// RemoveTree deletes a node and its entire subtree.
	RemoveTree(ctx context.Context, id string) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
