package saver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/folder"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
	"github.com/MrSnakeDoc/tabsaver/internal/persister"
	"github.com/MrSnakeDoc/tabsaver/internal/query"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.Local)

type fakeBrowser struct {
	mu      sync.Mutex
	windows []domain.Window
	tabs    map[int64][]domain.Tab
	err     error
}

func (f *fakeBrowser) CurrentWindow(context.Context) (domain.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.windows {
		if w.Focused {
			return w, nil
		}
	}
	return domain.Window{}, domain.ErrNoFocusedWindow
}

func (f *fakeBrowser) Windows(_ context.Context, windowType string) ([]domain.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Window
	for _, w := range f.windows {
		if w.Type == windowType {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeBrowser) Tabs(_ context.Context, windowID int64) ([]domain.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[windowID], nil
}

func tabsFor(windowID int64, n int) []domain.Tab {
	tabs := make([]domain.Tab, n)
	for i := range tabs {
		tabs[i] = domain.Tab{
			ID:       fmt.Sprintf("%d.%d", windowID, i),
			WindowID: windowID,
			Title:    fmt.Sprintf("Tab %d.%d", windowID, i),
			URL:      fmt.Sprintf("https://example.com/%d/%d", windowID, i),
		}
	}
	return tabs
}

// twoWindows has a focused window of 3 tabs and a second one of 2.
func twoWindows() *fakeBrowser {
	return &fakeBrowser{
		windows: []domain.Window{
			{ID: 1, Type: domain.WindowTypeNormal, Focused: true},
			{ID: 2, Type: domain.WindowTypeNormal},
			{ID: 3, Type: "popup"},
		},
		tabs: map[int64][]domain.Tab{
			1: tabsFor(1, 3),
			2: tabsFor(2, 2),
			3: tabsFor(3, 4),
		},
	}
}

type fixture struct {
	store *bookmarks.SQLiteStore
	saver *Saver
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, b *fakeBrowser, opts ...Option) *fixture {
	t.Helper()

	store, err := bookmarks.NewSQLiteStore(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	s := New(
		query.New(b, 4),
		folder.New(store, log, folder.WithRegistry(index.NewMemoryRegistry())),
		persister.New(store, 4),
		log,
		append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...,
	)
	return &fixture{store: store, saver: s, logs: logs}
}

func (f *fixture) folders(t *testing.T, title string) []domain.Node {
	t.Helper()

	nodes, err := f.store.Search(context.Background(), title)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	var out []domain.Node
	for _, n := range nodes {
		if n.IsFolder() {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) children(t *testing.T, id string) []domain.Node {
	t.Helper()

	c, err := f.store.Children(context.Background(), id)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	return c
}

func TestForceSave_FocusedWindowIntoNewFolder(t *testing.T) {
	f := newFixture(t, twoWindows())

	rec, err := f.saver.ForceSave(context.Background())
	if err != nil {
		t.Fatalf("ForceSave failed: %v", err)
	}

	wantTitle := "[tabsaver] 3 @ 10/19/2026, 3:04:05 PM"
	if rec.Title != wantTitle || rec.Tabs != 3 || !rec.OK() {
		t.Errorf("record = %+v, want title %q with 3 tabs", rec, wantTitle)
	}

	folders := f.folders(t, wantTitle)
	if len(folders) != 1 {
		t.Fatalf("found %d folders titled %q, want 1", len(folders), wantTitle)
	}
	entries := f.children(t, folders[0].ID)
	if len(entries) != 3 {
		t.Fatalf("folder has %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.URL, "https://example.com/1/") {
			t.Errorf("entry %q is not from the focused window", e.URL)
		}
	}
}

func TestForceSave_EachInvocationCreatesAFolder(t *testing.T) {
	var mu sync.Mutex
	tick := fixedNow
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	f := newFixture(t, twoWindows(), WithClock(clock))

	for range 2 {
		if _, err := f.saver.ForceSave(context.Background()); err != nil {
			t.Fatalf("ForceSave failed: %v", err)
		}
	}

	roots := f.children(t, bookmarks.RootID)
	var saves []domain.Node
	for _, n := range roots {
		if strings.HasPrefix(n.Title, "[tabsaver] 3 @ ") {
			saves = append(saves, n)
		}
	}
	if len(saves) != 2 {
		t.Fatalf("found %d force-save folders, want 2", len(saves))
	}
	for _, folder := range saves {
		if got := len(f.children(t, folder.ID)); got != 3 {
			t.Errorf("folder %q has %d entries, want 3", folder.Title, got)
		}
	}
}

func TestAutosave_AllNormalWindowsIntoDayFolder(t *testing.T) {
	f := newFixture(t, twoWindows())
	ctx := context.Background()

	rec, err := f.saver.Autosave(ctx)
	if err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}

	wantTitle := "[tabsaver] autosave @ 10/19/2026"
	if rec.Title != wantTitle || rec.Tabs != 5 {
		t.Errorf("record = %+v, want title %q with 5 tabs", rec, wantTitle)
	}

	folders := f.folders(t, wantTitle)
	if len(folders) != 1 {
		t.Fatalf("found %d autosave folders, want 1", len(folders))
	}
	if got := len(f.children(t, folders[0].ID)); got != 5 {
		t.Errorf("folder has %d entries, want 5", got)
	}

	if _, err := f.saver.Autosave(ctx); err != nil {
		t.Fatalf("second Autosave failed: %v", err)
	}

	folders = f.folders(t, wantTitle)
	if len(folders) != 1 {
		t.Fatalf("found %d autosave folders after second save, want 1", len(folders))
	}
	if got := len(f.children(t, folders[0].ID)); got != 5 {
		t.Errorf("folder has %d entries after second save, want 5", got)
	}
}

func TestAutosave_ConcurrentSameDaySerializes(t *testing.T) {
	f := newFixture(t, twoWindows())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.saver.Autosave(context.Background()); err != nil {
				t.Errorf("Autosave failed: %v", err)
			}
		}()
	}
	wg.Wait()

	folders := f.folders(t, "[tabsaver] autosave @ 10/19/2026")
	if len(folders) != 1 {
		t.Fatalf("found %d autosave folders, want 1", len(folders))
	}
	if got := len(f.children(t, folders[0].ID)); got != 5 {
		t.Errorf("folder has %d entries, want 5", got)
	}
}

func TestBindings_IdleStates(t *testing.T) {
	tests := []struct {
		name   string
		states []domain.IdleState
		want   int
	}{
		{"idle saves", []domain.IdleState{domain.IdleIdle}, 1},
		{"idle twice saves twice", []domain.IdleState{domain.IdleIdle, domain.IdleIdle}, 2},
		{"locked saves", []domain.IdleState{domain.IdleLocked}, 1},
		{"active never saves", []domain.IdleState{domain.IdleActive, domain.IdleActive}, 0},
		{"mixed", []domain.IdleState{domain.IdleActive, domain.IdleIdle, domain.IdleLocked}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, twoWindows())

			for _, st := range tt.states {
				f.saver.OnIdleStateChanged(st)
			}
			f.saver.Wait()

			records := f.saver.History().Recent()
			if len(records) != tt.want {
				t.Fatalf("got %d saves, want %d", len(records), tt.want)
			}
			for _, r := range records {
				if r.Kind != domain.SaveAutosave || !r.OK() {
					t.Errorf("unexpected record: %+v", r)
				}
			}
		})
	}
}

func TestBindings_ActionClicked(t *testing.T) {
	f := newFixture(t, twoWindows())

	f.saver.OnActionClicked()
	f.saver.Wait()

	records := f.saver.History().Recent()
	if len(records) != 1 || records[0].Kind != domain.SaveForce || records[0].Tabs != 3 {
		t.Fatalf("history = %+v, want one force save of 3 tabs", records)
	}
}

func TestPipeline_LogsTagBeforeResolving(t *testing.T) {
	f := newFixture(t, twoWindows())

	if _, err := f.saver.Autosave(context.Background()); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if _, err := f.saver.ForceSave(context.Background()); err != nil {
		t.Fatalf("ForceSave failed: %v", err)
	}

	iso := domain.ISOTimestamp(fixedNow)
	for _, want := range []string{
		"[IDLE SAVE] " + iso + ": 5",
		"[FORCE SAVE] " + iso + ": 3",
	} {
		if f.logs.FilterMessage(want).Len() != 1 {
			t.Errorf("missing log line %q", want)
		}
	}

	// the tag line precedes any folder activity of its pipeline
	var tagIdx, createIdx = -1, -1
	for i, e := range f.logs.All() {
		if e.Message == "[IDLE SAVE] "+iso+": 5" && tagIdx < 0 {
			tagIdx = i
		}
		if e.Message == "folder created" && createIdx < 0 {
			createIdx = i
		}
	}
	if tagIdx < 0 || createIdx < 0 || tagIdx > createIdx {
		t.Errorf("tag line at %d, first folder creation at %d", tagIdx, createIdx)
	}
}

func TestPipeline_QueryFailureAbortsAndIsRecorded(t *testing.T) {
	b := twoWindows()
	b.err = errors.New("cdp disconnected")
	f := newFixture(t, b)

	rec, err := f.saver.Autosave(context.Background())
	if err == nil {
		t.Fatal("expected Autosave to fail")
	}
	if rec.OK() || rec.FolderID != "" {
		t.Errorf("record = %+v, want failure without folder", rec)
	}
	if got := len(f.folders(t, "[tabsaver] autosave @ 10/19/2026")); got != 0 {
		t.Errorf("found %d folders after failed query, want 0", got)
	}
	if f.logs.FilterMessage("save failed").Len() != 1 {
		t.Error("failure was not logged")
	}

	// the next trigger is unaffected
	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
	if _, err := f.saver.Autosave(context.Background()); err != nil {
		t.Errorf("Autosave after recovery failed: %v", err)
	}
	if got := f.saver.History().Len(); got != 2 {
		t.Errorf("history holds %d records, want 2", got)
	}
}

func TestForceSave_NoFocusedWindow(t *testing.T) {
	b := twoWindows()
	for i := range b.windows {
		b.windows[i].Focused = false
	}
	f := newFixture(t, b)

	if _, err := f.saver.ForceSave(context.Background()); !errors.Is(err, domain.ErrNoFocusedWindow) {
		t.Errorf("ForceSave error = %v, want ErrNoFocusedWindow", err)
	}
}
