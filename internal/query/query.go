// Package query gathers windows and tabs from the browser for a save.
package query

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/tabsaver/internal/browser"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Layer wraps window and tab enumeration.
type Layer struct {
	browser browser.Browser
	limit   int
}

// New creates a query layer. maxConcurrency caps concurrent tab queries.
func New(b browser.Browser, maxConcurrency int) *Layer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Layer{browser: b, limit: maxConcurrency}
}

// CurrentWindow returns the window currently in focus.
func (l *Layer) CurrentWindow(ctx context.Context) (domain.Window, error) {
	w, err := l.browser.CurrentWindow(ctx)
	if err != nil {
		return domain.Window{}, fmt.Errorf("current window: %w", err)
	}
	return w, nil
}

// AllWindows returns every normal window in platform order.
func (l *Layer) AllWindows(ctx context.Context) ([]domain.Window, error) {
	windows, err := l.browser.Windows(ctx, domain.WindowTypeNormal)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return windows, nil
}

// TabsOf returns the tabs of one window in platform order.
func (l *Layer) TabsOf(ctx context.Context, windowID int64) ([]domain.Tab, error) {
	tabs, err := l.browser.Tabs(ctx, windowID)
	if err != nil {
		return nil, fmt.Errorf("tabs of window %d: %w", windowID, err)
	}
	return tabs, nil
}

// TabsOfMany queries every window concurrently and concatenates the
// results in window order. The first failure fails the whole call.
func (l *Layer) TabsOfMany(ctx context.Context, windows []domain.Window) ([]domain.Tab, error) {
	perWindow := make([][]domain.Tab, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	for i, w := range windows {
		g.Go(func() error {
			tabs, err := l.TabsOf(gctx, w.ID)
			if err != nil {
				return err
			}
			perWindow[i] = tabs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.Flatten(perWindow), nil
}

// AllTabs returns the tabs of every normal window.
func (l *Layer) AllTabs(ctx context.Context) ([]domain.Tab, error) {
	windows, err := l.AllWindows(ctx)
	if err != nil {
		return nil, err
	}
	return l.TabsOfMany(ctx, windows)
}

// CurrentTabs returns the tabs of the focused window only.
func (l *Layer) CurrentTabs(ctx context.Context) ([]domain.Tab, error) {
	w, err := l.CurrentWindow(ctx)
	if err != nil {
		return nil, err
	}
	return l.TabsOf(ctx, w.ID)
}
