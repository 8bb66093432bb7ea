package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

const targetTypePage = "page"

// internalURLPrefixes are pages that never count as user tabs.
var internalURLPrefixes = []string{
	"devtools://",
	"chrome-extension://",
}

// CDP talks to a Chromium-family browser over the DevTools protocol.
type CDP struct {
	browser *chromedp.Browser
	logger  logger.Logger
}

// pageTarget is a page target together with the window that holds it.
type pageTarget struct {
	info     *target.Info
	windowID int64
}

// ConnectOptions controls how the browser connection is established.
type ConnectOptions struct {
	Endpoint      string        // http:// or ws:// DevTools endpoint
	Timeout       time.Duration // total time to keep retrying
	RetryInterval time.Duration // wait between attempts
}

// Connect dials the browser, retrying until opts.Timeout elapses.
// The connection lives until ctx is cancelled.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*CDP, error) {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 2 * time.Second
	}

	deadline := time.Now().Add(opts.Timeout)
	attempt := 0

	for {
		attempt++

		wsURL, err := ResolveWebSocketURL(ctx, opts.Endpoint)
		if err == nil {
			var b *chromedp.Browser
			b, err = chromedp.NewBrowser(ctx, wsURL)
			if err == nil {
				log.Info("connected to browser",
					logger.String("endpoint", opts.Endpoint),
					logger.Int("attempts", attempt))
				return &CDP{browser: b, logger: log}, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("browser unavailable at %s after %d attempts: %w", opts.Endpoint, attempt, err)
		}

		log.Warn("browser connection failed, retrying",
			logger.String("endpoint", opts.Endpoint),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", opts.RetryInterval),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}
}

// CurrentWindow returns the window holding the most recently activated page.
// Chrome lists page targets in activation order, so that is the first one.
func (c *CDP) CurrentWindow(ctx context.Context) (domain.Window, error) {
	pages, err := c.pages(ctx)
	if err != nil {
		return domain.Window{}, err
	}
	windows := windowsOf(pages)
	if len(windows) == 0 {
		return domain.Window{}, domain.ErrNoFocusedWindow
	}
	return windows[0], nil
}

// Windows returns the windows that hold at least one user page.
func (c *CDP) Windows(ctx context.Context, kind string) ([]domain.Window, error) {
	pages, err := c.pages(ctx)
	if err != nil {
		return nil, err
	}
	return windowsOfKind(windowsOf(pages), kind), nil
}

// windowsOfKind keeps windows of the given kind; an empty kind keeps all.
func windowsOfKind(windows []domain.Window, kind string) []domain.Window {
	var out []domain.Window
	for _, w := range windows {
		if kind == "" || w.Type == kind {
			out = append(out, w)
		}
	}
	return out
}

// Tabs returns the pages of one window.
func (c *CDP) Tabs(ctx context.Context, windowID int64) ([]domain.Tab, error) {
	pages, err := c.pages(ctx)
	if err != nil {
		return nil, err
	}
	return tabsOf(pages, windowID), nil
}

// pages lists user page targets and resolves their windows.
func (c *CDP) pages(ctx context.Context) ([]pageTarget, error) {
	execCtx := cdp.WithExecutor(ctx, c.browser)

	targets, err := target.GetTargets().Do(execCtx)
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}

	pages := make([]pageTarget, 0, len(targets))
	for _, t := range targets {
		if !isUserPage(t) {
			continue
		}

		windowID, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(t.TargetID).Do(execCtx)
		if err != nil {
			// The target may have closed between the two calls.
			c.logger.Debug("skipping target without window",
				logger.String("target_id", string(t.TargetID)),
				logger.Error(err))
			continue
		}

		pages = append(pages, pageTarget{info: t, windowID: int64(windowID)})
	}

	return pages, nil
}

func isUserPage(t *target.Info) bool {
	if t == nil || t.Type != targetTypePage {
		return false
	}
	for _, prefix := range internalURLPrefixes {
		if strings.HasPrefix(t.URL, prefix) {
			return false
		}
	}
	return true
}

// windowsOf returns the distinct windows in order of first appearance.
// The first window is the focused one.
func windowsOf(pages []pageTarget) []domain.Window {
	perWindow := make(map[int64][]*target.Info, len(pages))
	windows := make([]domain.Window, 0, len(pages))

	for _, p := range pages {
		if _, ok := perWindow[p.windowID]; !ok {
			windows = append(windows, domain.Window{
				ID:      p.windowID,
				Focused: len(windows) == 0,
			})
		}
		perWindow[p.windowID] = append(perWindow[p.windowID], p.info)
	}

	for i := range windows {
		windows[i].Type = windowType(perWindow[windows[i].ID])
	}
	return windows
}

// windowType guesses the window kind, which CDP does not expose. A window
// holding a single page opened by another page is a window.open popup.
func windowType(infos []*target.Info) string {
	if len(infos) == 1 && infos[0].OpenerID != "" {
		return domain.WindowTypePopup
	}
	return domain.WindowTypeNormal
}

func tabsOf(pages []pageTarget, windowID int64) []domain.Tab {
	tabs := make([]domain.Tab, 0, len(pages))
	for _, p := range pages {
		if p.windowID != windowID {
			continue
		}
		tabs = append(tabs, domain.Tab{
			ID:       string(p.info.TargetID),
			WindowID: p.windowID,
			Title:    p.info.Title,
			URL:      p.info.URL,
		})
	}
	return tabs
}
