// Package playback records playback intent: which loops and sound effects
// are live, what was used recently, when each item last started, and the
// mixer levels. It does not play audio; the engine is reconciled from it.
package playback

import (
	"log/slog"
	"sort"
	"time"

	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/ordered"
)

// Store owns the playing sets, recent lists, last-played maps and mixer
// preferences. Everything but the playing sets is persisted.
//
// Store has no internal locking: it must only be used from the goroutine
// that owns it (see controller.Controller).
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time

	playing    map[models.Domain]map[string]struct{}
	recent     map[models.Domain][]string
	lastPlayed map[models.Domain]map[string]time.Time
	prefs      models.Preferences

	importing bool
	onDirty   func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store holding defaults. Call Load before the first read.
func New(store kv.Store, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:         store,
		logger:     logger,
		now:        time.Now,
		playing:    make(map[models.Domain]map[string]struct{}),
		recent:     make(map[models.Domain][]string),
		lastPlayed: make(map[models.Domain]map[string]time.Time),
		prefs:      models.DefaultPreferences(),
	}
	for _, d := range models.Domains {
		if d.HasPlayingSet() {
			s.playing[d] = make(map[string]struct{})
		}
		s.recent[d] = []string{}
		s.lastPlayed[d] = make(map[string]time.Time)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnDirty registers fn to be called after a user changes an exported value
// (a mixer level). It is never called during ApplyExportPreferences.
func (s *Store) OnDirty(fn func()) { s.onDirty = fn }

// Importing reports whether a bulk replace is in progress.
func (s *Store) Importing() bool { return s.importing }

// IsPlaying reports whether title is live in d. Always false for playlists.
func (s *Store) IsPlaying(d models.Domain, title string) bool {
	set, ok := s.playing[d]
	if !ok {
		return false
	}
	_, on := set[title]
	return on
}

// Playing returns the live titles of d, sorted.
func (s *Store) Playing(d models.Domain) []string {
	set := s.playing[d]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Toggle flips title in the playing set of d and reports whether it is
// playing afterwards. Starting records recency and the last-played time;
// stopping is a pure removal. Toggle is a no-op for playlists.
func (s *Store) Toggle(d models.Domain, title string) bool {
	set, ok := s.playing[d]
	if !ok {
		return false
	}
	if _, on := set[title]; on {
		delete(set, title)
		return false
	}
	set[title] = struct{}{}
	s.MarkStarted(d, title)
	return true
}

// StopAll clears the playing set of d and reports whether anything stopped.
func (s *Store) StopAll(d models.Domain) bool {
	set, ok := s.playing[d]
	if !ok || len(set) == 0 {
		return false
	}
	s.playing[d] = make(map[string]struct{})
	return true
}

// Finished removes title from the playing set without touching recency.
// It reports whether title was playing.
func (s *Store) Finished(d models.Domain, title string) bool {
	set, ok := s.playing[d]
	if !ok {
		return false
	}
	if _, on := set[title]; !on {
		return false
	}
	delete(set, title)
	return true
}

// MarkStarted records that title started: it becomes the most recent entry
// and its last-played time is now.
func (s *Store) MarkStarted(d models.Domain, title string) {
	s.AddRecent(d, title)
	s.RecordPlayed(d, title)
}

// Recent returns the recent list of d, most recent first.
func (s *Store) Recent(d models.Domain) []string {
	out := make([]string, len(s.recent[d]))
	copy(out, s.recent[d])
	return out
}

// AddRecent moves title to the front of the recent list of d, capped at
// models.MaxRecent, and persists the list.
func (s *Store) AddRecent(d models.Domain, title string) {
	if _, ok := s.recent[d]; !ok {
		return
	}
	s.recent[d] = ordered.PushFront(s.recent[d], title, models.MaxRecent)
	s.persistRecent(d)
}

// RemoveRecent dismisses title from the recent list only.
func (s *Store) RemoveRecent(d models.Domain, title string) {
	list, ok := s.recent[d]
	if !ok {
		return
	}
	list, changed := ordered.Strip(list, title)
	if !changed {
		return
	}
	s.recent[d] = list
	s.persistRecent(d)
}

// LastPlayed returns when title last started in d.
func (s *Store) LastPlayed(d models.Domain, title string) (time.Time, bool) {
	ts, ok := s.lastPlayed[d][title]
	return ts, ok
}

// RecordPlayed stamps title with the current time and persists the map.
func (s *Store) RecordPlayed(d models.Domain, title string) {
	m, ok := s.lastPlayed[d]
	if !ok {
		return
	}
	m[title] = s.now()
	s.persistLastPlayed(d)
}

// Rename migrates the playing membership, recent position and last-played
// time of oldTitle to newTitle. Only touched collections are persisted.
func (s *Store) Rename(d models.Domain, oldTitle, newTitle string) {
	if oldTitle == newTitle {
		return
	}
	if set, ok := s.playing[d]; ok {
		if _, on := set[oldTitle]; on {
			delete(set, oldTitle)
			set[newTitle] = struct{}{}
		}
	}
	if list, changed := ordered.RenameAt(s.recent[d], oldTitle, newTitle); changed {
		s.recent[d] = list
		s.persistRecent(d)
	}
	if m, ok := s.lastPlayed[d]; ok {
		if ts, found := m[oldTitle]; found {
			delete(m, oldTitle)
			m[newTitle] = ts
			s.persistLastPlayed(d)
		}
	}
}

// RemoveState purges every trace of title in d, e.g. after the item was
// deleted from the library. The recent list is always persisted; the
// last-played map only when an entry was removed.
func (s *Store) RemoveState(d models.Domain, title string) {
	if set, ok := s.playing[d]; ok {
		delete(set, title)
	}
	if _, ok := s.recent[d]; !ok {
		return
	}
	s.recent[d], _ = ordered.Strip(s.recent[d], title)
	s.persistRecent(d)
	if _, found := s.lastPlayed[d][title]; found {
		delete(s.lastPlayed[d], title)
		s.persistLastPlayed(d)
	}
}

// Snapshot returns a copy of the whole playback state.
func (s *Store) Snapshot() models.PlaybackState {
	return models.PlaybackState{
		PlayingLoops: s.Playing(models.DomainLoop),
		PlayingSFX:   s.Playing(models.DomainSFX),
		Recent: models.RecentState{
			Playlists: s.Recent(models.DomainPlaylist),
			Loops:     s.Recent(models.DomainLoop),
			SFX:       s.Recent(models.DomainSFX),
		},
		LastPlayed: models.LastPlayedState{
			Playlists: s.copyLastPlayed(models.DomainPlaylist),
			Loops:     s.copyLastPlayed(models.DomainLoop),
			SFX:       s.copyLastPlayed(models.DomainSFX),
		},
		Preferences: s.prefs,
	}
}

func (s *Store) copyLastPlayed(d models.Domain) map[string]time.Time {
	out := make(map[string]time.Time, len(s.lastPlayed[d]))
	for k, v := range s.lastPlayed[d] {
		out[k] = v
	}
	return out
}

func (s *Store) persistRecent(d models.Domain) {
	s.write(d.RecentKey(), s.recent[d])
}

func (s *Store) persistLastPlayed(d models.Domain) {
	s.write(d.LastPlayedKey(), encodeTimes(s.lastPlayed[d]))
}

func (s *Store) write(key string, value any) {
	if err := s.kv.Set(key, value); err != nil {
		s.logger.Warn("playback: persist failed, keeping in-memory state", "key", key, "err", err)
	}
}

func (s *Store) markDirty() {
	if s.importing || s.onDirty == nil {
		return
	}
	s.onDirty()
}
