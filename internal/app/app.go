// Package app wires the daemon together and runs one-shot commands.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/browser"
	"github.com/MrSnakeDoc/tabsaver/internal/config"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/folder"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/idle"
	"github.com/MrSnakeDoc/tabsaver/internal/index"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
	"github.com/MrSnakeDoc/tabsaver/internal/persister"
	"github.com/MrSnakeDoc/tabsaver/internal/query"
	"github.com/MrSnakeDoc/tabsaver/internal/redis"
	"github.com/MrSnakeDoc/tabsaver/internal/saver"
	"github.com/MrSnakeDoc/tabsaver/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/tabsaver/internal/store/redis"
	"github.com/MrSnakeDoc/tabsaver/internal/utils"
	"github.com/MrSnakeDoc/tabsaver/internal/version"
)

// App holds the long-lived components of the daemon.
type App struct {
	cfg          *config.Config
	logger       logger.Logger
	store        *bookmarks.SQLiteStore
	registry     index.Registry
	registryMode string
	saver        *saver.Saver
	tabs         *query.Layer
}

// New opens the bookmark store and the folder registry, connects to the
// browser and assembles the save pipelines. The browser connection lives
// as long as ctx.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	store, err := bookmarks.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open bookmark store: %w", err)
	}
	log.Info("bookmark store opened", logger.String("path", store.Path()))

	registry, mode := openRegistry(ctx, cfg, log)

	b, err := browser.Connect(ctx, browser.ConnectOptions{
		Endpoint: cfg.CDPURL,
		Timeout:  cfg.CDPConnectTimeout,
	}, log.Named("browser"))
	if err != nil {
		utils.CloseLogged(registry, "folder registry", log)
		utils.CloseLogged(store, "bookmark store", log)
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	tabs := query.New(b, cfg.MaxConcurrency)
	s := saver.New(
		tabs,
		folder.New(store, log, folder.WithRegistry(registry)),
		persister.New(store, cfg.MaxConcurrency),
		log,
		saver.WithBaseContext(ctx),
	)

	return &App{
		cfg:          cfg,
		logger:       log,
		store:        store,
		registry:     registry,
		registryMode: mode,
		saver:        s,
		tabs:         tabs,
	}, nil
}

// openRegistry connects to Redis when configured and falls back to memory.
func openRegistry(ctx context.Context, cfg *config.Config, log logger.Logger) (index.Registry, string) {
	if !cfg.RedisEnabled() {
		log.Info("no redis configured, using in-memory folder registry")
		return index.NewMemoryRegistry(), "memory"
	}

	client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), log.Named("redis"))
	if err != nil {
		log.Warn("falling back to in-memory folder registry", logger.Error(err))
		return index.NewMemoryRegistry(), "memory"
	}
	return redisstore.NewStore(client), "redis"
}

// ForceSave runs one force save of the focused window.
func (a *App) ForceSave(ctx context.Context) (domain.SaveRecord, error) {
	return a.saver.ForceSave(ctx)
}

// Autosave runs one autosave of every normal window.
func (a *App) Autosave(ctx context.Context) (domain.SaveRecord, error) {
	return a.saver.Autosave(ctx)
}

// Run serves the trigger surface and watches idle state until ctx is
// cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting tabsaver %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Info(version.String())

	watcher := scheduler.NewIdleWatcher(
		idle.NewActivityProber(a.tabs),
		a.saver.OnIdleStateChanged,
		a.logger,
		a.cfg.IdlePollInterval,
	)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start idle watcher: %w", err)
	}
	a.logger.Info("idle watcher started",
		logger.Duration("interval", a.cfg.IdlePollInterval),
		logger.Duration("threshold", idle.Threshold))

	gc := scheduler.NewRegistryGC(a.registry, a.store, a.logger, a.cfg.RegistryGCInterval, a.cfg.RegistryRetention)
	if err := gc.Start(ctx); err != nil {
		watcher.Stop()
		return fmt.Errorf("failed to start registry gc: %w", err)
	}
	a.logger.Info("registry gc started", logger.Duration("interval", a.cfg.RegistryGCInterval))

	d := deps.Deps{
		Logger:         a.logger,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		TrustProxy:     a.cfg.TrustProxy,
		SaveRateBurst:  a.cfg.SaveRateBurst,
		SaveRatePerMin: a.cfg.SaveRatePerMin,
		Saver:          a.saver,
		Idle:           watcher,
		Store:          a.store,
		Registry:       a.registry,
		RegistryMode:   a.registryMode,
	}
	server := httpserver.New(a.cfg, a.logger, d)
	a.logger.Info("trigger surface configured",
		logger.String("listen", a.cfg.ListenAddr),
		logger.Strings("allowed_cidrs", a.cfg.AllowedCIDRS),
		logger.Bool("trust_proxy", a.cfg.TrustProxy),
		logger.String("registry", a.registryMode))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case runErr = <-errCh:
	}

	watcher.Stop()
	gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("waiting for in-flight saves")
	a.saver.Wait()

	return runErr
}

// Close releases the store and the registry.
func (a *App) Close() {
	utils.CloseLogged(a.registry, "folder registry", a.logger)
	utils.CloseLogged(a.store, "bookmark store", a.logger)
	a.logger.Info("tabsaver stopped cleanly")
}

// Export writes every saved session as Netscape bookmark HTML to w.
// Only the bookmark store is opened.
func Export(ctx context.Context, cfg *config.Config, log logger.Logger, w io.Writer) error {
	store, err := bookmarks.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open bookmark store: %w", err)
	}
	defer utils.CloseLogged(store, "bookmark store", log)

	doc, err := bookmarks.ExportHTML(ctx, store)
	if err != nil {
		return fmt.Errorf("export bookmarks: %w", err)
	}
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
