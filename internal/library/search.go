package library

import (
	"sort"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// Result is one search hit.
type Result struct {
	Item
	MatchedIndexes []int  `json:"matched_indexes,omitempty"` // rune positions in Title
	Score          int    `json:"score"`                     // higher is better
	MatchedTheme   string `json:"matched_theme,omitempty"`
}

// titleIndex implements fuzzy.Source over pre-lowered titles.
type titleIndex struct {
	items []Item
	lower []string
}

func (idx *titleIndex) String(i int) string { return idx.lower[i] }
func (idx *titleIndex) Len() int            { return len(idx.items) }

// themeScoreBase keeps theme-only hits below every title hit.
const themeScoreBase = -1000

// Search ranks items whose title fuzzy-matches query, followed by items
// that only match through one of their themes. An empty domain searches
// every domain; an empty query returns nothing.
func (c *Catalog) Search(query string, d models.Domain) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	idx := c.index(d)
	if idx.Len() == 0 {
		return nil
	}

	results := make([]Result, 0)
	seen := make(map[int]bool)
	for _, m := range fuzzy.FindFrom(strings.ToLower(query), idx) {
		seen[m.Index] = true
		results = append(results, Result{
			Item:           idx.items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}

	// Themes: flatten, rank with Levenshtein distance, keep the best theme
	// per item.
	var themes []string
	var owners []int
	for i, it := range idx.items {
		if seen[i] {
			continue
		}
		for _, th := range it.Themes {
			themes = append(themes, th)
			owners = append(owners, i)
		}
	}
	ranks := fuzzysearch.RankFindFold(query, themes)
	sort.Stable(ranks)
	for _, r := range ranks {
		owner := owners[r.OriginalIndex]
		if seen[owner] {
			continue
		}
		seen[owner] = true
		results = append(results, Result{
			Item:         idx.items[owner],
			Score:        themeScoreBase - r.Distance,
			MatchedTheme: r.Target,
		})
	}
	return results
}

// index snapshots the items of d (or of every domain) sorted by domain and
// title so results are deterministic.
func (c *Catalog) index(d models.Domain) *titleIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := &titleIndex{}
	for _, dom := range models.Domains {
		if d != "" && d != dom {
			continue
		}
		titles := make([]string, 0, len(c.items[dom]))
		for t := range c.items[dom] {
			titles = append(titles, t)
		}
		sort.Strings(titles)
		for _, t := range titles {
			idx.items = append(idx.items, c.items[dom][t])
			idx.lower = append(idx.lower, strings.ToLower(t))
		}
	}
	return idx
}
