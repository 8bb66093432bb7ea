// Package browser enumerates windows and tabs of a running browser.
package browser

import (
	"context"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Browser is the window/tab enumeration service of the host browser.
type Browser interface {
	// CurrentWindow returns the focused window or domain.ErrNoFocusedWindow.
	CurrentWindow(ctx context.Context) (domain.Window, error)
	// Windows returns windows of the given type in platform order.
	Windows(ctx context.Context, windowType string) ([]domain.Window, error)
	// Tabs returns the tabs of one window in platform order.
	Tabs(ctx context.Context, windowID int64) ([]domain.Tab, error)
}
