// Package bookmarks tracks which playlists, loops and sound effects the user
// bookmarked, and in which order they are displayed.
package bookmarks

import (
	"log/slog"

	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/ordered"
)

// Store owns one ordered bookmark set per domain and persists the order of
// a domain after every change to it.
//
// Store has no internal locking: it must only be used from the goroutine
// that owns it (see controller.Controller).
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	sets   map[models.Domain]*ordered.Set

	importing bool
	onDirty   func()
}

// New creates an empty store. Call Load before the first read.
func New(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     store,
		logger: logger,
		sets:   make(map[models.Domain]*ordered.Set, len(models.Domains)),
	}
	for _, d := range models.Domains {
		s.sets[d] = ordered.NewSet(nil)
	}
	return s
}

// Load reads every domain's order from the key-value store. Missing or
// unreadable keys leave the domain empty; duplicates are dropped.
func (s *Store) Load() {
	for _, d := range models.Domains {
		var items []string
		ok, err := s.kv.Get(d.BookmarkKey(), &items)
		if err != nil {
			s.logger.Warn("bookmarks: unreadable persisted order, starting empty",
				"domain", d, "key", d.BookmarkKey(), "err", err)
			continue
		}
		if ok {
			s.sets[d].Replace(items)
		}
	}
}

// OnDirty registers fn to be called after every user edit. It is never
// called while a bulk replace is in progress.
func (s *Store) OnDirty(fn func()) { s.onDirty = fn }

// IsBookmarked reports whether title is bookmarked in d.
func (s *Store) IsBookmarked(d models.Domain, title string) bool {
	set, ok := s.sets[d]
	return ok && set.Contains(title)
}

// Items returns the display order for d.
func (s *Store) Items(d models.Domain) []string {
	set, ok := s.sets[d]
	if !ok {
		return []string{}
	}
	return set.Items()
}

// Toggle bookmarks title if absent and removes it otherwise.
// It reports whether title is bookmarked afterwards.
func (s *Store) Toggle(d models.Domain, title string) bool {
	set, ok := s.sets[d]
	if !ok {
		return false
	}
	if !set.Remove(title) {
		set.Add(title)
	}
	s.persist(d)
	s.markDirty()
	return set.Contains(title)
}

// Remove drops title from d. Removing a title that is not bookmarked
// neither persists nor marks dirty.
func (s *Store) Remove(d models.Domain, title string) {
	set, ok := s.sets[d]
	if !ok || !set.Remove(title) {
		return
	}
	s.persist(d)
	s.markDirty()
}

// Rename moves the bookmark of oldTitle to newTitle, appended at the end.
// If oldTitle was not bookmarked nothing is inserted. The order of d is
// persisted after every attempt so the stored list never keeps a stale title.
func (s *Store) Rename(d models.Domain, oldTitle, newTitle string) {
	set, ok := s.sets[d]
	if !ok || oldTitle == newTitle {
		return
	}
	if set.Remove(oldTitle) {
		set.Add(newTitle)
	}
	s.persist(d)
	s.markDirty()
}

// Move repositions the bookmark at from so it lands before the entry that
// was at index to. See ordered.Set.Move for the index rules.
func (s *Store) Move(d models.Domain, from, to int) {
	set, ok := s.sets[d]
	if !ok || !set.Move(from, to) {
		return
	}
	s.persist(d)
	s.markDirty()
}

// MoveOffsets repositions several bookmarks at once.
func (s *Store) MoveOffsets(d models.Domain, offsets []int, to int) {
	set, ok := s.sets[d]
	if !ok || !set.MoveOffsets(offsets, to) {
		return
	}
	s.persist(d)
	s.markDirty()
}

// SetInitial replaces every domain wholesale. It persists but never marks
// dirty, so seeding state from an external source is not mistaken for an edit.
func (s *Store) SetInitial(playlists, loops, sfx []string) {
	s.bulk(func() {
		s.replace(models.DomainPlaylist, playlists)
		s.replace(models.DomainLoop, loops)
		s.replace(models.DomainSFX, sfx)
	})
}

// ApplyExport replaces the loop and sound-effect bookmarks from an imported
// export document. Playlists are left untouched.
func (s *Store) ApplyExport(loops, sfx []string) {
	s.bulk(func() {
		s.replace(models.DomainLoop, loops)
		s.replace(models.DomainSFX, sfx)
	})
}

// Importing reports whether a bulk replace is in progress.
func (s *Store) Importing() bool { return s.importing }

// Snapshot returns a copy of every domain's order.
func (s *Store) Snapshot() models.BookmarkState {
	return models.BookmarkState{
		Playlists: s.Items(models.DomainPlaylist),
		Loops:     s.Items(models.DomainLoop),
		SFX:       s.Items(models.DomainSFX),
	}
}

func (s *Store) bulk(fn func()) {
	s.importing = true
	defer func() { s.importing = false }()
	fn()
}

func (s *Store) replace(d models.Domain, items []string) {
	s.sets[d].Replace(items)
	s.persist(d)
	s.markDirty()
}

func (s *Store) persist(d models.Domain) {
	if err := s.kv.Set(d.BookmarkKey(), s.sets[d].Items()); err != nil {
		s.logger.Warn("bookmarks: persist failed, keeping in-memory state",
			"domain", d, "key", d.BookmarkKey(), "err", err)
	}
}

func (s *Store) markDirty() {
	if s.importing || s.onDirty == nil {
		return
	}
	s.onDirty()
}
