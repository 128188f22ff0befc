package ordered

import "slices"

// PushFront moves title to the front of list, removing any earlier
// occurrence, and truncates the result to limit entries.
func PushFront(list []string, title string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, title)
	for _, t := range list {
		if t != title {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Strip removes every occurrence of title and reports whether any was found.
func Strip(list []string, title string) ([]string, bool) {
	out := slices.DeleteFunc(append([]string{}, list...), func(t string) bool { return t == title })
	return out, len(out) != len(list)
}

// RenameAt replaces oldTitle by newTitle keeping the old entry's position.
// Any existing occurrence of either title is dropped first and newTitle is
// inserted at min(oldIndex, len). If oldTitle is absent list is returned
// unchanged and RenameAt reports false.
func RenameAt(list []string, oldTitle, newTitle string) ([]string, bool) {
	idx := slices.Index(list, oldTitle)
	if idx < 0 {
		return list, false
	}
	out := slices.DeleteFunc(slices.Clone(list), func(t string) bool {
		return t == oldTitle || t == newTitle
	})
	return slices.Insert(out, min(idx, len(out)), newTitle), true
}

// IndexOf returns the position of title in list or -1.
func IndexOf(list []string, title string) int {
	return slices.Index(list, title)
}
