package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

const (
	// DefaultRetention is how long a folder mapping is kept after its last update
	DefaultRetention = 30 * 24 * time.Hour // 30 days
)

// FolderGetter looks folders up in the bookmark store.
type FolderGetter interface {
	Get(ctx context.Context, id string) (domain.Node, error)
}

// RegistryGC prunes folder mappings that are too old or whose folder
// no longer exists in the bookmark store.
type RegistryGC struct {
	registry  index.Registry
	folders   FolderGetter
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewRegistryGC creates a new registry garbage collector
func NewRegistryGC(
	registry index.Registry,
	folders FolderGetter,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *RegistryGC {
	if retention == 0 {
		retention = DefaultRetention
	}

	return &RegistryGC{
		registry:  registry,
		folders:   folders,
		logger:    log.Named("registry-gc"),
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs a collection and then repeats it every interval
func (gc *RegistryGC) Start(ctx context.Context) error {
	if gc.interval <= 0 {
		return errors.New("registry gc interval must be > 0")
	}

	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial registry collection failed", logger.Error(err))
	}

	gc.done = make(chan struct{})
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer close(gc.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("registry collection failed", logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector and waits for a running collection
func (gc *RegistryGC) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
	if gc.done != nil {
		<-gc.done
	}
}

// Collect removes expired and dangling mappings and returns how many were removed
func (gc *RegistryGC) Collect(ctx context.Context) (int, error) {
	mappings, err := gc.registry.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list folder mappings: %w", err)
	}

	now := gc.now()
	deleted := 0

	for _, m := range mappings {
		reason, drop, err := gc.shouldDrop(ctx, m, now)
		if err != nil {
			gc.logger.Warn("failed to check folder mapping",
				logger.String("key", m.Key),
				logger.Error(err))
			continue
		}
		if !drop {
			continue
		}

		// A save may have remapped the key while the folder was checked.
		cur, ok, err := gc.registry.Get(ctx, m.Key)
		if err != nil {
			gc.logger.Warn("failed to recheck folder mapping",
				logger.String("key", m.Key),
				logger.Error(err))
			continue
		}
		if !ok || cur.FolderID != m.FolderID || !cur.UpdatedAt.Equal(m.UpdatedAt) {
			gc.logger.Debug("folder mapping changed during collection, keeping it",
				logger.String("key", m.Key))
			continue
		}

		if err := gc.registry.Delete(ctx, m.Key); err != nil {
			gc.logger.Warn("failed to delete folder mapping",
				logger.String("key", m.Key),
				logger.Error(err))
			continue
		}

		gc.logger.Info("garbage collected folder mapping",
			logger.String("key", m.Key),
			logger.String("folder_id", m.FolderID),
			logger.Time("updated_at", m.UpdatedAt),
			logger.String("reason", reason))
		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("registry collection completed", logger.Int("deleted", deleted))
	} else {
		gc.logger.Debug("no folder mappings to collect")
	}

	return deleted, nil
}

func (gc *RegistryGC) shouldDrop(ctx context.Context, m domain.FolderMapping, now time.Time) (string, bool, error) {
	if !m.UpdatedAt.IsZero() && now.Sub(m.UpdatedAt) >= gc.retention {
		return "expired", true, nil
	}

	_, err := gc.folders.Get(ctx, m.FolderID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "folder_missing", true, nil
	case err != nil:
		return "", false, err
	}
	return "", false, nil
}
