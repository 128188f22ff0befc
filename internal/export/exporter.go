package export

import (
	"log/slog"
	"sync"
	"time"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// DefaultDelay is how long the exporter waits for further edits before
// writing.
const DefaultDelay = 500 * time.Millisecond

// Exporter writes the most recent document it was given, debounced.
// A zero-value path disables writing; Submit still records the document.
type Exporter struct {
	mu      sync.Mutex
	wmu     sync.Mutex // serializes file writes
	path    string
	delay   time.Duration
	pending *models.Export
	last    models.Export
	writes  int
	timer   *time.Timer
	logger  *slog.Logger
}

// NewExporter returns an exporter writing to path. A non-positive delay uses
// DefaultDelay.
func NewExporter(path string, delay time.Duration, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Exporter{path: path, delay: delay, logger: logger}
}

// Path returns the export file path.
func (e *Exporter) Path() string { return e.path }

// Submit records doc as the latest export and schedules a write after the
// debounce delay. Later submissions replace earlier pending ones.
func (e *Exporter) Submit(doc models.Export) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = doc
	if e.path == "" {
		return
	}
	e.pending = &doc
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.delay, func() {
		if err := e.Flush(); err != nil {
			e.logger.Error("export: failed to write document", "path", e.path, "err", err)
		}
	})
}

// Last returns the most recently submitted document.
func (e *Exporter) Last() models.Export {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Writes returns how many documents reached disk.
func (e *Exporter) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}

// Flush writes the pending document immediately.
func (e *Exporter) Flush() error {
	e.wmu.Lock()
	defer e.wmu.Unlock()

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	doc := e.pending
	e.pending = nil
	e.mu.Unlock()
	if doc == nil {
		return nil
	}
	if err := Write(e.path, *doc); err != nil {
		return err
	}
	e.mu.Lock()
	e.writes++
	e.mu.Unlock()
	e.logger.Debug("export: document written", "path", e.path)
	return nil
}

// Close flushes any pending document.
func (e *Exporter) Close() error { return e.Flush() }
