package idle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

type fakeTabs struct {
	mu   sync.Mutex
	tabs []domain.Tab
	err  error
}

func (f *fakeTabs) AllTabs(context.Context) ([]domain.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs, f.err
}

func (f *fakeTabs) set(tabs ...domain.Tab) {
	f.mu.Lock()
	f.tabs = tabs
	f.mu.Unlock()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newProber(tabs TabLister) (*ActivityProber, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	p := NewActivityProber(tabs)
	p.now = clock.now
	return p, clock
}

func mustState(t *testing.T, p *ActivityProber) domain.IdleState {
	t.Helper()
	st, err := p.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	return st
}

func TestActivityProber_IdleAfterThreshold(t *testing.T) {
	tabs := &fakeTabs{}
	tabs.set(domain.Tab{ID: "1", WindowID: 1, URL: "https://go.dev"})
	p, clock := newProber(tabs)

	if st := mustState(t, p); st != domain.IdleActive {
		t.Errorf("first probe = %q, want active", st)
	}

	clock.advance(Threshold - time.Second)
	if st := mustState(t, p); st != domain.IdleActive {
		t.Errorf("probe before threshold = %q, want active", st)
	}

	clock.advance(time.Second)
	if st := mustState(t, p); st != domain.IdleIdle {
		t.Errorf("probe at threshold = %q, want idle", st)
	}

	clock.advance(time.Hour)
	if st := mustState(t, p); st != domain.IdleIdle {
		t.Errorf("probe long after threshold = %q, want idle", st)
	}
}

func TestActivityProber_ChangeResetsTimer(t *testing.T) {
	tabs := &fakeTabs{}
	tabs.set(domain.Tab{ID: "1", WindowID: 1, URL: "https://go.dev"})
	p, clock := newProber(tabs)

	mustState(t, p)
	clock.advance(2 * Threshold)
	if st := mustState(t, p); st != domain.IdleIdle {
		t.Fatalf("probe = %q, want idle", st)
	}

	// navigation counts as activity
	tabs.set(domain.Tab{ID: "1", WindowID: 1, URL: "https://pkg.go.dev"})
	if st := mustState(t, p); st != domain.IdleActive {
		t.Errorf("probe after navigation = %q, want active", st)
	}

	clock.advance(Threshold / 2)
	if st := mustState(t, p); st != domain.IdleActive {
		t.Errorf("probe shortly after navigation = %q, want active", st)
	}
}

func TestActivityProber_Error(t *testing.T) {
	boom := errors.New("browser gone")
	p, _ := newProber(&fakeTabs{err: boom})

	if _, err := p.State(context.Background()); !errors.Is(err, boom) {
		t.Errorf("State error = %v, want %v", err, boom)
	}
}

func TestFingerprint(t *testing.T) {
	a := []domain.Tab{{ID: "1", URL: "u1"}, {ID: "2", URL: "u2"}}
	b := []domain.Tab{{ID: "2", URL: "u2"}, {ID: "1", URL: "u1"}}

	if fingerprint(a) != fingerprint(a) {
		t.Error("fingerprint is not deterministic")
	}
	if fingerprint(a) == fingerprint(b) {
		t.Error("reordering tabs should change the fingerprint")
	}
	if fingerprint(nil) != fingerprint([]domain.Tab{}) {
		t.Error("nil and empty tab sets should match")
	}
}
