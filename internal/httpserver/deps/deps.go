package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

// Saver starts force saves and exposes the save history.
type Saver interface {
	OnActionClicked()
	History() *index.History
}

// IdleSink accepts idle states pushed by clients and reports the
// last state delivered to the saver.
type IdleSink interface {
	Push(ctx context.Context, st domain.IdleState) error
	Last() domain.IdleState
}

// Store is the part of the bookmark store the HTTP surface reads.
type Store interface {
	bookmarks.Tree
	Ping(ctx context.Context) error
}

// Pinger reports whether an optional backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS   []string         // IPs allowed to reach any endpoint
	TrustProxy     bool             // true if running behind a trusted reverse proxy
	SaveRateBurst  int              // force-save burst per client
	SaveRatePerMin int              // force-save refill per client per minute
	Saver          Saver            // save pipelines
	Idle           IdleSink         // idle watcher receiving pushed states
	Store          Store            // bookmark store
	Registry       Pinger           // folder-key registry
	RegistryMode   string           // "redis" or "memory"
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
