// Package app wires user intents into store mutations. The Coordinator owns
// the only mutable state: the note store and the current selection.
package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dhollis/minutes/internal/editor"
	"github.com/dhollis/minutes/internal/model"
	"github.com/dhollis/minutes/internal/store"
)

// ErrStaleSelection is returned by SaveNote when the selected note vanished
// between selection and submit. The caller's draft is kept; the dead
// selection is cleared so a retry creates a new note.
var ErrStaleSelection = errors.New("selected note no longer exists")

// ConfirmFunc is the blocking yes/no interaction required before a delete.
type ConfirmFunc func(prompt string) bool

// ChangeFunc is notified after every successful mutation so the UI can
// resync. action is one of "created", "updated", "deleted", "favorited".
type ChangeFunc func(action, id string)

const deletePrompt = "Are you sure you want to delete this note?"

// Coordinator routes save/delete/toggle-favorite/select intents from the
// view components into the store and re-persists after every mutation (the
// store persists wholesale on each call).
type Coordinator struct {
	mu         sync.Mutex
	store      *store.NoteStore
	editor     *editor.Editor
	selectedID string
	onChange   ChangeFunc
	logger     *slog.Logger
}

func New(st *store.NoteStore, onChange ChangeFunc, logger *slog.Logger) *Coordinator {
	c := &Coordinator{store: st, onChange: onChange, logger: logger}
	c.editor = editor.New(c.SaveNote)
	return c
}

// Editor returns the draft editor bound to this coordinator.
func (c *Coordinator) Editor() *editor.Editor {
	return c.editor
}

// Notes returns the collection in storage order.
func (c *Coordinator) Notes() []model.Note {
	return c.store.All()
}

// Note returns one note by id, or nil.
func (c *Coordinator) Note(id string) *model.Note {
	return c.store.Get(id)
}

// SelectedID returns the id of the note currently being edited, or "".
func (c *Coordinator) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// SelectNote sets the currently-edited note and rebuilds the editor draft
// from it. An empty id clears the selection. Persisted data is untouched.
// Reports whether the id matched a note.
func (c *Coordinator) SelectNote(id string) bool {
	var note *model.Note
	if id != "" {
		note = c.store.Get(id)
		if note == nil {
			return false
		}
	}

	c.mu.Lock()
	if note == nil {
		c.selectedID = ""
	} else {
		c.selectedID = note.ID
	}
	c.mu.Unlock()

	c.editor.SetSelection(note)
	return true
}

// SaveNote applies the draft through the store's save contract: merge into
// the selected note, or create a new one when nothing is selected. On
// success the selection is cleared.
func (c *Coordinator) SaveNote(draft model.Draft) error {
	c.mu.Lock()
	selected := c.selectedID
	c.mu.Unlock()

	// The fresh editor template already carries the default tag that the
	// store prepends on create; drop it here so the two don't stack.
	if selected == "" && len(draft.Tags) > 0 && draft.Tags[0] == model.DefaultTag {
		draft.Tags = draft.Tags[1:]
	}

	note, err := c.store.Save(draft, selected)
	if err != nil {
		c.logger.Error("save note", "error", err)
		return err
	}
	if note == nil {
		if draft.Title == "" || draft.Content == "" {
			// Empty draft; nothing changed.
			return nil
		}
		// The selected note was removed out from under the draft.
		c.mu.Lock()
		if c.selectedID == selected {
			c.selectedID = ""
		}
		c.mu.Unlock()
		return ErrStaleSelection
	}

	c.mu.Lock()
	c.selectedID = ""
	c.mu.Unlock()

	if selected == "" {
		c.notify("created", note.ID)
	} else {
		c.notify("updated", note.ID)
	}
	return nil
}

// DeleteNote removes a note after interactive confirmation. A declined
// confirmation leaves the collection and selection unchanged. Reports
// whether a note was actually removed.
func (c *Coordinator) DeleteNote(id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(deletePrompt) {
		return false, nil
	}

	deleted, err := c.store.Delete(id)
	if err != nil {
		c.logger.Error("delete note", "error", err)
		return false, err
	}
	if !deleted {
		return false, nil
	}

	c.mu.Lock()
	wasSelected := c.selectedID == id
	if wasSelected {
		c.selectedID = ""
	}
	c.mu.Unlock()

	if wasSelected {
		c.editor.SetSelection(nil)
	}
	c.notify("deleted", id)
	return true, nil
}

// ToggleFavorite flips the favorite flag only; no timestamps change.
func (c *Coordinator) ToggleFavorite(id string) (*model.Note, error) {
	note, err := c.store.ToggleFavorite(id)
	if err != nil {
		c.logger.Error("toggle favorite", "error", err)
		return nil, err
	}
	if note != nil {
		c.notify("favorited", note.ID)
	}
	return note, nil
}

func (c *Coordinator) notify(action, id string) {
	if c.onChange != nil {
		c.onChange(action, id)
	}
}
