// Package folder finds or creates the bookmark folder a save is written into.
package folder

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

var (
	// ErrSearchFailed is returned when the store could not be searched.
	ErrSearchFailed = errors.New("folder search failed")
	// ErrDeleteFailed is returned when a folder could not be emptied.
	ErrDeleteFailed = errors.New("folder removal failed")
	// ErrCreateFailed is returned when the folder could not be created.
	ErrCreateFailed = errors.New("folder creation failed")
)

// Resolver implements find-or-create with optional forced emptying.
type Resolver struct {
	store    bookmarks.Store
	registry index.Registry
	log      logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry enables keyed lookups through reg.
func WithRegistry(reg index.Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

// New creates a resolver over store.
func New(store bookmarks.Store, log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{store: store, log: log.Named("folder")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the folder titled title, creating it under the default
// root when absent. With forceEmpty a found folder is removed and
// recreated, so the returned folder has no children.
func (r *Resolver) Resolve(ctx context.Context, title string, forceEmpty bool) (domain.Node, error) {
	return r.resolve(ctx, r.searchTitle(ctx, title), title, forceEmpty)
}

// ResolveKeyed behaves like Resolve but looks the folder up by key in the
// registry first. Title search is the fallback for unmapped or stale keys.
// The mapping is updated with the resolved folder.
func (r *Resolver) ResolveKeyed(ctx context.Context, key, title string, forceEmpty bool) (domain.Node, error) {
	if r.registry == nil || key == "" {
		return r.Resolve(ctx, title, forceEmpty)
	}

	res := r.lookupKey(ctx, key)
	if res.kind == lookupNotFound {
		res = r.searchTitle(ctx, title)
	}

	folder, err := r.resolve(ctx, res, title, forceEmpty)
	if err != nil {
		return domain.Node{}, err
	}

	m := domain.FolderMapping{Key: key, FolderID: folder.ID, Title: folder.Title}
	if err := r.registry.Put(ctx, m); err != nil {
		r.log.Warn("failed to record folder mapping",
			logger.String("key", key),
			logger.String("folder_id", folder.ID),
			logger.Error(err))
	}
	return folder, nil
}

func (r *Resolver) resolve(ctx context.Context, res lookup, title string, forceEmpty bool) (domain.Node, error) {
	r.log.Debug("folder lookup",
		logger.String("title", title),
		logger.String("outcome", res.kind.String()))

	switch res.kind {
	case lookupSearchError:
		return domain.Node{}, fmt.Errorf("%w: %q: %w", ErrSearchFailed, title, res.err)

	case lookupFound:
		if !forceEmpty {
			return res.folder, nil
		}
		rm := r.remove(ctx, res.folder)
		r.log.Debug("folder emptied",
			logger.String("folder_id", res.folder.ID),
			logger.String("outcome", rm.kind.String()))
		if rm.kind == removalError {
			return domain.Node{}, fmt.Errorf("%w: %q: %w", ErrDeleteFailed, title, rm.err)
		}
	}

	return r.create(ctx, title)
}

func (r *Resolver) lookupKey(ctx context.Context, key string) lookup {
	m, ok, err := r.registry.Get(ctx, key)
	if err != nil {
		r.log.Warn("folder registry lookup failed, falling back to title search",
			logger.String("key", key),
			logger.Error(err))
		return notFound()
	}
	if !ok {
		return notFound()
	}

	n, err := r.store.Get(ctx, m.FolderID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return searchError(err)
	case n.IsFolder():
		return found(n)
	}

	r.log.Debug("dropping stale folder mapping",
		logger.String("key", key),
		logger.String("folder_id", m.FolderID))
	if err := r.registry.Delete(ctx, key); err != nil {
		r.log.Warn("failed to drop stale folder mapping",
			logger.String("key", key),
			logger.Error(err))
	}
	return notFound()
}

// searchTitle returns the first folder whose title matches exactly.
func (r *Resolver) searchTitle(ctx context.Context, title string) lookup {
	nodes, err := r.store.Search(ctx, title)
	if err != nil {
		return searchError(err)
	}
	for _, n := range nodes {
		if n.IsFolder() {
			return found(n)
		}
	}
	return notFound()
}

func (r *Resolver) remove(ctx context.Context, folder domain.Node) removal {
	if err := r.store.RemoveTree(ctx, folder.ID); err != nil {
		return removal{kind: removalError, err: err}
	}
	return removal{kind: removalDeleted}
}

func (r *Resolver) create(ctx context.Context, title string) (domain.Node, error) {
	n, err := r.store.Create(ctx, bookmarks.CreateParams{
		Title:    title,
		Type:     domain.NodeFolder,
		ParentID: bookmarks.RootID,
	})
	if err != nil {
		return domain.Node{}, fmt.Errorf("%w: %q: %w", ErrCreateFailed, title, err)
	}

	r.log.Info("folder created",
		logger.String("title", title),
		logger.String("folder_id", n.ID))
	return n, nil
}
