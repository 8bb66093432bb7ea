// Package persister writes tabs as bookmark entries into a folder.
package persister

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Persister creates one bookmark entry per tab.
type Persister struct {
	store bookmarks.Store
	limit int
}

// New creates a persister. maxConcurrency caps concurrent creations.
func New(store bookmarks.Store, maxConcurrency int) *Persister {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Persister{store: store, limit: maxConcurrency}
}

// Persist creates an entry for every tab under parentID and returns them
// in tab order. The first failure cancels outstanding creations and is
// returned; entries already created are left in place.
func (p *Persister) Persist(ctx context.Context, tabs []domain.Tab, parentID string) ([]domain.Node, error) {
	if len(tabs) == 0 {
		return nil, nil
	}

	entries := make([]domain.Node, len(tabs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for i, tab := range tabs {
		g.Go(func() error {
			n, err := p.store.Create(gctx, bookmarks.CreateParams{
				Title:    tab.Title,
				URL:      tab.URL,
				Type:     domain.NodeBookmark,
				ParentID: parentID,
			})
			if err != nil {
				return fmt.Errorf("create entry for %q: %w", tab.URL, err)
			}
			entries[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
