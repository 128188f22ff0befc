// Command ambianced is the ambiance controller daemon. It serves the local
// control API and keeps bookmarks, recents and playback state durable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/micro-nova/ambiance-go/internal/api"
	"github.com/micro-nova/ambiance-go/internal/app"
	"github.com/micro-nova/ambiance-go/internal/auth"
	"github.com/micro-nova/ambiance-go/internal/config"
	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/logging"
	"github.com/micro-nova/ambiance-go/internal/maintenance"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/zeroconf"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var (
		cfgPath     = flag.String("config", "", "config file (default: ~/.config/ambiance/config.yaml)")
		addr        = flag.String("addr", "", "HTTP listen address (overrides api.addr)")
		debug       = flag.Bool("debug", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("ambianced", version)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ambianced:", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if *addr != "" {
		cfg.API.Addr = *addr
	}

	logger, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ambianced:", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("ambianced exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to flush state on shutdown", "err", err)
		}
	}()

	authSvc, err := auth.NewService(cfg.API.KeysFile, logger)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	defer authSvc.Close()

	router := api.NewRouter(a.Controller, authSvc, a.Bus, api.Options{
		Version:   version,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
	})
	srv := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Controller.Run(ctx) })

	g.Go(func() error {
		logger.Info("ambiance listening", "addr", cfg.API.Addr, "version", version, "store", a.Store.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down...")
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutCancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("server shutdown error", "err", err)
		}
		return nil
	})

	if cfg.Zeroconf.Enabled {
		zc := zeroconf.New(cfg.Zeroconf.Name, listenPort(cfg.API.Addr), version, logger)
		g.Go(func() error {
			// Advertisement is best effort.
			if err := zc.Start(ctx); err != nil {
				logger.Warn("zeroconf failed", "err", err)
			}
			return nil
		})
	}

	if b, ok := a.Store.(kv.Backuper); ok {
		maint := maintenance.New(b, filepath.Join(cfg.Storage.Dir, "backups"), logger)
		g.Go(func() error {
			maint.Start(ctx)
			return nil
		})
	} else {
		logger.Info("state backups disabled for backend", "backend", cfg.Storage.Backend)
	}

	if cfg.Sync.ImportDir != "" {
		w, err := export.NewWatcher(cfg.Sync.ImportDir, importer(a), logger)
		if err != nil {
			return fmt.Errorf("import watcher: %w", err)
		}
		w.Skip(cfg.Sync.ExportFile)
		g.Go(func() error { return w.Run(ctx) })
	}

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

// importer adapts the controller's Import to export.Importer.
func importer(a *app.App) export.Importer {
	return export.ImporterFunc(func(ctx context.Context, doc models.Export) error {
		if _, err := a.Controller.Import(ctx, doc); err != nil {
			return err
		}
		return nil
	})
}

// listenPort extracts the port from a listen address, defaulting to 80.
func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 80
	}
	return port
}
