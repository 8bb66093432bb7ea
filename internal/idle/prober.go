// Package idle reports whether the user is active in the browser.
package idle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Threshold is how long the tab set must stay unchanged before the
// user counts as idle. It matches the browser's default idle detection.
const Threshold = 60 * time.Second

// Prober reports the current idle state.
type Prober interface {
	State(ctx context.Context) (domain.IdleState, error)
}

// TabLister lists the open tabs of every normal window.
type TabLister interface {
	AllTabs(ctx context.Context) ([]domain.Tab, error)
}

// ActivityProber infers activity from changes to the open tab set:
// opening, closing, reordering or navigating a tab counts as activity.
type ActivityProber struct {
	tabs      TabLister
	threshold time.Duration
	now       func() time.Time

	mu          sync.Mutex
	fingerprint uint64
	changedAt   time.Time
	seen        bool
}

// NewActivityProber creates a prober using the fixed Threshold.
func NewActivityProber(tabs TabLister) *ActivityProber {
	return &ActivityProber{tabs: tabs, threshold: Threshold, now: time.Now}
}

// State returns idle once the tab set has been stable for the threshold.
// The first observation always counts as activity.
func (p *ActivityProber) State(ctx context.Context) (domain.IdleState, error) {
	tabs, err := p.tabs.AllTabs(ctx)
	if err != nil {
		return "", fmt.Errorf("probe tabs: %w", err)
	}
	fp := fingerprint(tabs)
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seen || fp != p.fingerprint {
		p.seen = true
		p.fingerprint = fp
		p.changedAt = now
		return domain.IdleActive, nil
	}
	if now.Sub(p.changedAt) >= p.threshold {
		return domain.IdleIdle, nil
	}
	return domain.IdleActive, nil
}

func fingerprint(tabs []domain.Tab) uint64 {
	d := xxhash.New()
	for _, t := range tabs {
		_, _ = fmt.Fprintf(d, "%d\x00%s\x00%s\x00%s\x01", t.WindowID, t.ID, t.URL, t.Title)
	}
	return d.Sum64()
}
