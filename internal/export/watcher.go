package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// settleDelay lets a writer finish before the file is read.
const settleDelay = 100 * time.Millisecond

// Importer applies an imported document.
type Importer interface {
	Import(ctx context.Context, doc models.Export) error
}

// ImporterFunc adapts a function to Importer.
type ImporterFunc func(ctx context.Context, doc models.Export) error

// Import calls f(ctx, doc).
func (f ImporterFunc) Import(ctx context.Context, doc models.Export) error { return f(ctx, doc) }

// Watcher imports every *.json document created or written in a directory.
type Watcher struct {
	dir      string
	importer Importer
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	fire     chan string
	skip     map[string]bool
}

// NewWatcher starts watching dir, creating it if needed. Call Run to
// process events.
func NewWatcher(dir string, importer Importer, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: create import dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("export: create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("export: watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		importer: importer,
		watcher:  fw,
		logger:   logger,
		fire:     make(chan string, 16),
		skip:     make(map[string]bool),
	}, nil
}

// Skip excludes path from importing, typically the daemon's own export file
// when it lives in the watched directory. Call it before Run.
func (w *Watcher) Skip(path string) {
	if path == "" {
		return
	}
	w.skip[canonical(path)] = true
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isDocument(event.Name) || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if w.skip[canonical(event.Name)] {
				continue
			}
			name := event.Name
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(settleDelay, func() {
				select {
				case w.fire <- name:
				case <-ctx.Done():
				}
			})
		case name := <-w.fire:
			delete(timers, name)
			w.importFile(ctx, name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("export: watcher error", "err", err)
		}
	}
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	doc, err := Read(path)
	if err != nil {
		w.logger.Warn("export: skipping unreadable import", "path", path, "err", err)
		return
	}
	if err := w.importer.Import(ctx, doc); err != nil {
		w.logger.Warn("export: import failed", "path", path, "err", err)
		return
	}
	w.logger.Info("export: imported document", "path", path,
		"loops", len(doc.Bookmarks.Loops), "sfx", len(doc.Bookmarks.SFX))
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func isDocument(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
