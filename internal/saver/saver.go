// Package saver binds the idle and user triggers to the save pipelines.
package saver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

// TabSource enumerates the tabs a save captures.
type TabSource interface {
	// CurrentTabs returns the tabs of the focused window.
	CurrentTabs(ctx context.Context) ([]domain.Tab, error)
	// AllTabs returns the tabs of every normal window.
	AllTabs(ctx context.Context) ([]domain.Tab, error)
}

// FolderResolver finds or creates the destination folder.
type FolderResolver interface {
	Resolve(ctx context.Context, title string, forceEmpty bool) (domain.Node, error)
	ResolveKeyed(ctx context.Context, key, title string, forceEmpty bool) (domain.Node, error)
}

// EntryWriter writes tabs into a folder.
type EntryWriter interface {
	Persist(ctx context.Context, tabs []domain.Tab, parentID string) ([]domain.Node, error)
}

// Saver runs autosave and force-save pipelines.
type Saver struct {
	tabs    TabSource
	folders FolderResolver
	entries EntryWriter
	history *index.History
	log     logger.Logger

	base  context.Context
	now   func() time.Time
	locks *keyLock
	wg    sync.WaitGroup
}

// Option configures a Saver.
type Option func(*Saver)

// WithClock overrides the time source used for titles and records.
func WithClock(now func() time.Time) Option {
	return func(s *Saver) { s.now = now }
}

// WithBaseContext sets the context asynchronous pipelines run under.
// Cancelling it aborts in-flight browser and store calls.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Saver) { s.base = ctx }
}

// WithHistory records finished pipelines into h.
func WithHistory(h *index.History) Option {
	return func(s *Saver) { s.history = h }
}

// New creates a Saver.
func New(tabs TabSource, folders FolderResolver, entries EntryWriter, log logger.Logger, opts ...Option) *Saver {
	s := &Saver{
		tabs:    tabs,
		folders: folders,
		entries: entries,
		log:     log.Named("saver"),
		base:    context.Background(),
		now:     time.Now,
		locks:   newKeyLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = index.NewHistory(index.DefaultHistorySize)
	}
	return s
}

// History returns the save history.
func (s *Saver) History() *index.History {
	return s.history
}

// OnIdleStateChanged starts an autosave for every state but active.
func (s *Saver) OnIdleStateChanged(state domain.IdleState) {
	if !state.TriggersAutosave() {
		return
	}
	s.log.Debug("idle state changed", logger.String("state", string(state)))
	s.spawn(s.Autosave)
}

// OnActionClicked starts a force save.
func (s *Saver) OnActionClicked() {
	s.spawn(s.ForceSave)
}

// Wait blocks until every pipeline started by the bindings has finished.
func (s *Saver) Wait() {
	s.wg.Wait()
}

func (s *Saver) spawn(pipeline func(context.Context) (domain.SaveRecord, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// failures are logged and recorded by the pipeline
		_, _ = pipeline(s.base)
	}()
}

// Autosave saves every normal window into the day folder, replacing
// whatever an earlier autosave that day wrote.
func (s *Saver) Autosave(ctx context.Context) (domain.SaveRecord, error) {
	now := s.now()
	return s.run(ctx, domain.SaveAutosave, now, s.tabs.AllTabs, func(tabs []domain.Tab) target {
		return target{
			title:      domain.AutosaveTitle(now),
			key:        domain.AutosaveKey(now),
			forceEmpty: true,
		}
	})
}

// ForceSave saves the focused window into a new folder.
func (s *Saver) ForceSave(ctx context.Context) (domain.SaveRecord, error) {
	now := s.now()
	return s.run(ctx, domain.SaveForce, now, s.tabs.CurrentTabs, func(tabs []domain.Tab) target {
		return target{title: domain.ForceSaveTitle(len(tabs), now)}
	})
}

// target describes the folder a pipeline writes into.
type target struct {
	title      string
	key        string
	forceEmpty bool
}

func (s *Saver) run(
	ctx context.Context,
	kind domain.SaveKind,
	now time.Time,
	fetch func(context.Context) ([]domain.Tab, error),
	dest func([]domain.Tab) target,
) (rec domain.SaveRecord, err error) {
	rec = domain.SaveRecord{Kind: kind, StartedAt: now}
	defer func() {
		rec.FinishedAt = s.now()
		if err != nil {
			rec.Err = err.Error()
			s.log.Error("save failed",
				logger.String("kind", string(kind)),
				logger.String("title", rec.Title),
				logger.Error(err))
		} else {
			s.log.Info("save completed",
				logger.String("kind", string(kind)),
				logger.String("title", rec.Title),
				logger.String("folder_id", rec.FolderID),
				logger.Int("tabs", rec.Tabs),
				logger.Duration("took", rec.FinishedAt.Sub(rec.StartedAt)))
		}
		s.history.Add(rec)
	}()

	tabs, err := fetch(ctx)
	if err != nil {
		return rec, fmt.Errorf("query tabs: %w", err)
	}
	rec.Tabs = len(tabs)

	s.log.Infof("%s %s: %d", kind.LogTag(), domain.ISOTimestamp(now), len(tabs))

	t := dest(tabs)
	rec.Title = t.title

	unlock := s.locks.Lock(t.title)
	defer unlock()

	var folder domain.Node
	if t.key != "" {
		folder, err = s.folders.ResolveKeyed(ctx, t.key, t.title, t.forceEmpty)
	} else {
		folder, err = s.folders.Resolve(ctx, t.title, t.forceEmpty)
	}
	if err != nil {
		return rec, fmt.Errorf("resolve folder: %w", err)
	}
	rec.FolderID = folder.ID

	if _, err := s.entries.Persist(ctx, tabs, folder.ID); err != nil {
		return rec, fmt.Errorf("persist tabs: %w", err)
	}
	return rec, nil
}
