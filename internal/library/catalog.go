// Package library resolves item titles to catalog metadata (themes,
// attributions, files). It is read-mostly and safe for concurrent use; the
// bookmark and playback stores never depend on it.
package library

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/spf13/viper"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// Item is one catalog entry.
type Item struct {
	Title       string        `mapstructure:"title" json:"title"`
	Domain      models.Domain `mapstructure:"-" json:"domain"`
	Themes      []string      `mapstructure:"themes" json:"themes,omitempty"`
	Attribution string        `mapstructure:"attribution" json:"attribution,omitempty"`
	File        string        `mapstructure:"file" json:"file,omitempty"`
}

// Catalog holds the items of every domain keyed by title.
type Catalog struct {
	mu     sync.RWMutex
	items  map[models.Domain]map[string]Item
	logger *slog.Logger
}

// New returns a catalog holding items. Items with an empty title or an
// unknown domain are skipped; a later duplicate replaces an earlier one.
func New(logger *slog.Logger, items ...Item) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		items:  make(map[models.Domain]map[string]Item, len(models.Domains)),
		logger: logger,
	}
	for _, d := range models.Domains {
		c.items[d] = make(map[string]Item)
	}
	for _, it := range items {
		c.add(it)
	}
	return c
}

// Load reads a catalog file. The file lists items per domain:
//
//	playlists:
//	  - title: Tavern
//	    themes: [inn, fantasy]
//	loops:
//	  - title: Cave Echoes
//	    attribution: "freesound.org/user"
//	sfx:
//	  - title: Dragon Roar
//	    file: sfx/dragon.ogg
//
// An empty path yields an empty catalog.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	c := New(logger)
	if path == "" {
		return c, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("library: read %s: %w", path, err)
	}

	sections := map[models.Domain]string{
		models.DomainPlaylist: "playlists",
		models.DomainLoop:     "loops",
		models.DomainSFX:      "sfx",
	}
	for _, d := range models.Domains {
		var items []Item
		if err := v.UnmarshalKey(sections[d], &items); err != nil {
			return nil, fmt.Errorf("library: parse %s section %q: %w", path, sections[d], err)
		}
		for _, it := range items {
			it.Domain = d
			c.add(it)
		}
	}
	c.logger.Info("library: catalog loaded", "path", path,
		"playlists", c.Len(models.DomainPlaylist),
		"loops", c.Len(models.DomainLoop),
		"sfx", c.Len(models.DomainSFX))
	return c, nil
}

func (c *Catalog) add(it Item) {
	m, ok := c.items[it.Domain]
	if !ok || it.Title == "" {
		c.logger.Debug("library: skipping invalid item", "title", it.Title, "domain", it.Domain)
		return
	}
	m[it.Title] = it
}

// Add inserts or replaces an item.
func (c *Catalog) Add(it Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(it)
}

// Lookup returns the item titled title in d. A missing item yields an
// UNAVAILABLE error: metadata enrichment is optional for callers.
func (c *Catalog) Lookup(d models.Domain, title string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[d][title]
	if !ok {
		return Item{}, models.ErrUnavailable(fmt.Sprintf("no catalog entry for %s %q", d, title))
	}
	return it, nil
}

// Contains reports whether d has an item titled title.
func (c *Catalog) Contains(d models.Domain, title string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[d][title]
	return ok
}

// Titles returns the sorted titles of d.
func (c *Catalog) Titles(d models.Domain) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.items[d]))
	for t := range c.items[d] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of items in d.
func (c *Catalog) Len(d models.Domain) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items[d])
}

// Rename retitles an item. It fails when oldTitle is unknown or newTitle is
// already taken in the same domain.
func (c *Catalog) Rename(d models.Domain, oldTitle, newTitle string) error {
	if newTitle == "" {
		return models.ErrBadRequest("title must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.items[d]
	if !ok {
		return models.ErrBadRequest(fmt.Sprintf("unknown domain %q", d))
	}
	it, ok := m[oldTitle]
	if !ok {
		return models.ErrNotFound(fmt.Sprintf("%s %q not found", d, oldTitle))
	}
	if oldTitle == newTitle {
		return nil
	}
	if _, taken := m[newTitle]; taken {
		return models.ErrConflict(fmt.Sprintf("%s %q already exists", d, newTitle))
	}
	delete(m, oldTitle)
	it.Title = newTitle
	m[newTitle] = it
	return nil
}

// Delete removes an item.
func (c *Catalog) Delete(d models.Domain, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.items[d]
	if !ok {
		return models.ErrBadRequest(fmt.Sprintf("unknown domain %q", d))
	}
	if _, ok := m[title]; !ok {
		return models.ErrNotFound(fmt.Sprintf("%s %q not found", d, title))
	}
	delete(m, title)
	return nil
}
