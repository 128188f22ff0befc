// Package app assembles the stores, engine and controller from
// configuration. It is shared by the daemon and the shell.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/micro-nova/ambiance-go/internal/bookmarks"
	"github.com/micro-nova/ambiance-go/internal/config"
	"github.com/micro-nova/ambiance-go/internal/controller"
	"github.com/micro-nova/ambiance-go/internal/engine"
	"github.com/micro-nova/ambiance-go/internal/events"
	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/library"
	"github.com/micro-nova/ambiance-go/internal/playback"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Store      kv.Store
	Bookmarks  *bookmarks.Store
	Playback   *playback.Store
	Engine     *engine.Mock
	Catalog    *library.Catalog
	Bus        *events.Bus
	Exporter   *export.Exporter
	Controller *controller.Controller

	logger *slog.Logger
}

// Open opens the configured store, loads persisted state and the catalog,
// and builds a controller. The caller runs Controller.Run and calls Close.
func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := kv.Open(kv.Options{
		Backend: cfg.Storage.Backend,
		Dir:     cfg.Storage.Dir,
		Redis: kv.RedisOptions{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info("state store opened", "backend", cfg.Storage.Backend, "path", store.Path())

	catalog, err := library.Load(cfg.Library.Catalog, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	bm := bookmarks.New(store, logger)
	bm.Load()
	pb := playback.New(store, logger)
	pb.Load()

	eng := engine.NewMock(cfg.Engine.SFXDuration)
	var reconciler engine.Engine = eng
	if cfg.Engine.RateLimit > 0 {
		reconciler = engine.Throttle(eng, cfg.Engine.RateLimit, cfg.Engine.Burst)
	}

	exporter := export.NewExporter(cfg.Sync.ExportFile, cfg.Sync.ExportDelay, logger)
	bus := events.NewBus()

	ctrl := controller.New(controller.Deps{
		Bookmarks: bm,
		Playback:  pb,
		Engine:    reconciler,
		Music:     eng,
		Catalog:   catalog,
		Bus:       bus,
		Exporter:  exporter,
		Logger:    logger,
	})
	eng.SetSink(ctrl)

	return &App{
		Config:     cfg,
		Store:      store,
		Bookmarks:  bm,
		Playback:   pb,
		Engine:     eng,
		Catalog:    catalog,
		Bus:        bus,
		Exporter:   exporter,
		Controller: ctrl,
		logger:     logger,
	}, nil
}

// Close stops engine timers and flushes the exporter and the store.
// Call it after the controller has stopped.
func (a *App) Close() error {
	a.Engine.Close()
	var errs []error
	if err := a.Exporter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("flush export: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
