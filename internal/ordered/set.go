// Package ordered provides the insertion-ordered title set used for
// bookmarks and the most-recently-used list helpers used for recents.
package ordered

import "sort"

// Set is a set of titles paired with an explicit display order.
// The membership map and the order slice always hold the same elements
// and the order never contains duplicates.
//
// Set is not safe for concurrent use.
type Set struct {
	members map[string]struct{}
	order   []string
}

// NewSet returns a set holding items deduplicated, first occurrence wins.
func NewSet(items []string) *Set {
	s := &Set{}
	s.Replace(items)
	return s
}

// Contains reports whether title is in the set.
func (s *Set) Contains(title string) bool {
	_, ok := s.members[title]
	return ok
}

// Len returns the number of titles.
func (s *Set) Len() int { return len(s.order) }

// Items returns a copy of the order.
func (s *Set) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Add appends title if absent and reports whether it was added.
func (s *Set) Add(title string) bool {
	if s.Contains(title) {
		return false
	}
	s.members[title] = struct{}{}
	s.order = append(s.order, title)
	return true
}

// Remove deletes title and reports whether it was present.
func (s *Set) Remove(title string) bool {
	if !s.Contains(title) {
		return false
	}
	delete(s.members, title)
	for i, t := range s.order {
		if t == title {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Replace swaps the whole content for items, deduplicated.
func (s *Set) Replace(items []string) {
	s.order = Dedupe(items)
	s.members = make(map[string]struct{}, len(s.order))
	for _, t := range s.order {
		s.members[t] = struct{}{}
	}
}

// Move repositions the entry at from. to is an insertion point in the
// order as it was before the move, clamped to [0, Len()].
// An out-of-range from is a no-op. It reports whether from was valid.
func (s *Set) Move(from, to int) bool {
	if from < 0 || from >= len(s.order) {
		return false
	}
	return s.MoveOffsets([]int{from}, to)
}

// MoveOffsets moves every entry at offsets, keeping their relative order,
// so that they land before the element that was at index to.
// Out-of-range offsets are ignored. It reports whether anything was moved.
func (s *Set) MoveOffsets(offsets []int, to int) bool {
	n := len(s.order)
	if to < 0 {
		to = 0
	}
	if to > n {
		to = n
	}

	picked := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		if o >= 0 && o < n {
			picked[o] = true
		}
	}
	if len(picked) == 0 {
		return false
	}

	idx := make([]int, 0, len(picked))
	for o := range picked {
		idx = append(idx, o)
	}
	sort.Ints(idx)

	moving := make([]string, 0, len(idx))
	rest := make([]string, 0, n-len(idx))
	before := 0
	for i, t := range s.order {
		if picked[i] {
			moving = append(moving, t)
			if i < to {
				before++
			}
			continue
		}
		rest = append(rest, t)
	}

	at := to - before
	out := make([]string, 0, n)
	out = append(out, rest[:at]...)
	out = append(out, moving...)
	out = append(out, rest[at:]...)
	s.order = out
	return true
}

// Dedupe returns items without duplicates, preserving first occurrence.
// The result is never nil.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, t := range items {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
