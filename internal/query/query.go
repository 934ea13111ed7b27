// Package query derives the visible note sequence: filter first, then sort.
// It is a pure transform over the store's collection; nothing here mutates
// or persists.
package query

import (
	"sort"
	"strings"

	"github.com/dhollis/minutes/internal/model"
)

// Sort keys accepted by Visible. Anything else falls back to SortDate.
const (
	SortDate     = "date"
	SortTitle    = "title"
	SortFavorite = "favorite"
)

// Visible filters notes by search term and tag, then orders them by the
// sort key. The input slice is not modified.
//
// A note passes the filter when the term is empty or is a case-insensitive
// substring of its title, content, or any tag, and when no tag is selected
// or the selected tag is present among its tags.
func Visible(notes []model.Note, term, tag, sortKey string) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if matches(&n, term, tag) {
			out = append(out, n)
		}
	}

	switch sortKey {
	case SortTitle:
		// Case-insensitive fold with a raw tiebreak, so "apple" sorts
		// before "Banana".
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
			if a != b {
				return a < b
			}
			return out[i].Title < out[j].Title
		})
	case SortFavorite:
		// Favorites first, stable within each group.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Favorite && !out[j].Favorite
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	}
	return out
}

func matches(n *model.Note, term, tag string) bool {
	if tag != "" && !n.HasTag(tag) {
		return false
	}
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	if strings.Contains(strings.ToLower(n.Title), t) ||
		strings.Contains(strings.ToLower(n.Content), t) {
		return true
	}
	for _, tg := range n.Tags {
		if strings.Contains(strings.ToLower(tg), t) {
			return true
		}
	}
	return false
}

// TagUniverse returns the distinct tags across all notes, alphabetically
// ordered.
func TagUniverse(notes []model.Note) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
