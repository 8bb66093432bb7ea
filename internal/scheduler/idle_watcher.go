package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/idle"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

// ErrWatcherStopped is returned by Push once the watcher has stopped.
var ErrWatcherStopped = errors.New("idle watcher stopped")

// IdleHandler receives idle state changes.
type IdleHandler func(domain.IdleState)

// IdleWatcher polls an idle prober and forwards state transitions.
// States pushed from outside are forwarded unfiltered.
type IdleWatcher struct {
	prober   idle.Prober
	handler  IdleHandler
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	pushCh   chan domain.IdleState
	stopOnce sync.Once

	mu   sync.Mutex
	last domain.IdleState
	done chan struct{} // closed when the loop exits, nil before Start
}

// NewIdleWatcher creates a new idle watcher
func NewIdleWatcher(
	prober idle.Prober,
	handler IdleHandler,
	log logger.Logger,
	interval time.Duration,
) *IdleWatcher {
	return &IdleWatcher{
		prober:   prober,
		handler:  handler,
		logger:   log.Named("idle"),
		interval: interval,
		stopCh:   make(chan struct{}),
		pushCh:   make(chan domain.IdleState),
		last:     domain.IdleActive,
	}
}

// Start begins polling in the background
func (w *IdleWatcher) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return errors.New("idle poll interval must be > 0")
	}

	done := make(chan struct{})
	w.mu.Lock()
	w.done = done
	w.mu.Unlock()

	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Poll(ctx)
			case st := <-w.pushCh:
				w.logger.Info("idle state pushed", logger.String("state", string(st)))
				w.deliver(st)
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the watcher and waits for an in-progress poll or delivery
// to finish. Safe to call more than once.
func (w *IdleWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })

	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Push hands an externally observed state to the watcher loop.
func (w *IdleWatcher) Push(ctx context.Context, st domain.IdleState) error {
	select {
	case w.pushCh <- st:
		return nil
	case <-w.stopCh:
		return ErrWatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll consults the prober once and forwards the state if it changed.
func (w *IdleWatcher) Poll(ctx context.Context) {
	st, err := w.prober.State(ctx)
	if err != nil {
		w.logger.Warn("idle probe failed", logger.Error(err))
		return
	}

	w.mu.Lock()
	changed := st != w.last
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.Debug("idle state transition", logger.String("state", string(st)))
	w.deliver(st)
}

// Last returns the most recently forwarded state.
func (w *IdleWatcher) Last() domain.IdleState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *IdleWatcher) deliver(st domain.IdleState) {
	w.mu.Lock()
	w.last = st
	w.mu.Unlock()

	w.handler(st)
}
