package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/micro-nova/ambiance-go/internal/events"
)

// Mock is a thread-safe in-memory Engine and Music player for tests and for
// running the daemon without an audio backend. Sound effects "finish" after
// a fixed duration; Play reports the playlist as started immediately.
type Mock struct {
	mu          sync.Mutex
	sink        events.Sink
	sfxDuration time.Duration

	atmospheres []string
	sfx         map[string]*time.Timer
	playlist    string
	paused      bool
	reconciles  int
	failWrite   bool
}

// NewMock creates a mock whose sound effects last sfxDuration. A zero or
// negative duration means effects never finish on their own.
func NewMock(sfxDuration time.Duration) *Mock {
	return &Mock{
		sfxDuration: sfxDuration,
		atmospheres: []string{},
		sfx:         make(map[string]*time.Timer),
	}
}

// SetSink sets where finished and started notifications are delivered.
func (m *Mock) SetSink(sink events.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

// SetFailWrite configures the mock to reject every command.
func (m *Mock) SetFailWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

func (m *Mock) ReconcileAtmospheres(ctx context.Context, titles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrEngine("mock: reconcile failure configured")
	}
	m.atmospheres = sortedCopy(titles)
	m.reconciles++
	return nil
}

func (m *Mock) ReconcileSFX(ctx context.Context, titles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrEngine("mock: reconcile failure configured")
	}
	m.reconciles++

	want := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		want[t] = struct{}{}
	}
	for title, timer := range m.sfx {
		if _, keep := want[title]; !keep {
			if timer != nil {
				timer.Stop()
			}
			delete(m.sfx, title)
		}
	}
	for title := range want {
		if _, live := m.sfx[title]; live {
			continue
		}
		m.sfx[title] = m.scheduleFinish(title)
	}
	return nil
}

// scheduleFinish must be called with m.mu held.
func (m *Mock) scheduleFinish(title string) *time.Timer {
	if m.sfxDuration <= 0 {
		return nil
	}
	var timer *time.Timer
	timer = time.AfterFunc(m.sfxDuration, func() {
		m.mu.Lock()
		current, ok := m.sfx[title]
		if !ok || current != timer {
			m.mu.Unlock()
			return
		}
		delete(m.sfx, title)
		sink := m.sink
		m.mu.Unlock()
		if sink != nil {
			sink.Deliver(events.Finished(title))
		}
	})
	return timer
}

// FinishSFX ends title as if it reached its end and reports whether it was
// live.
func (m *Mock) FinishSFX(title string) bool {
	m.mu.Lock()
	timer, ok := m.sfx[title]
	if ok {
		if timer != nil {
			timer.Stop()
		}
		delete(m.sfx, title)
	}
	sink := m.sink
	m.mu.Unlock()
	if ok && sink != nil {
		sink.Deliver(events.Finished(title))
	}
	return ok
}

func (m *Mock) Play(ctx context.Context, playlist string) error {
	m.mu.Lock()
	if m.failWrite {
		m.mu.Unlock()
		return ErrEngine("mock: play failure configured")
	}
	m.playlist = playlist
	m.paused = false
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink.Deliver(events.Started(playlist))
	}
	return nil
}

func (m *Mock) Pause(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	return nil
}

// Next and Previous are accepted but the mock has no track list.
func (m *Mock) Next(ctx context.Context) error     { return nil }
func (m *Mock) Previous(ctx context.Context) error { return nil }

// Atmospheres returns the last reconciled loop titles, sorted.
func (m *Mock) Atmospheres() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopy(m.atmospheres)
}

// SFX returns the sound effects currently live, sorted.
func (m *Mock) SFX() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sfx))
	for t := range m.sfx {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Playlist returns the current playlist and whether it is paused.
func (m *Mock) Playlist() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlist, m.paused
}

// Reconciles returns how many reconcile commands succeeded.
func (m *Mock) Reconciles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconciles
}

// Close stops pending sound effect timers.
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for title, timer := range m.sfx {
		if timer != nil {
			timer.Stop()
		}
		delete(m.sfx, title)
	}
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

var (
	_ Engine = (*Mock)(nil)
	_ Music  = (*Mock)(nil)
)
