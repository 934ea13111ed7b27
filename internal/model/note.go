package model

import "time"

// DefaultTag is prepended to every newly created note's tag list.
const DefaultTag = "meeting"

// Note is the sole persisted entity: one meeting's text and metadata.
// Timestamps round-trip through JSON as RFC 3339 strings.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Favorite  bool      `json:"favorite"`
	Tags      []string  `json:"tags"`
}

// HasTag reports whether tag appears in the note's tag list (exact match).
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Draft is the editor's unsaved, in-progress state. It is never persisted;
// submitting it creates or updates a Note.
type Draft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}
