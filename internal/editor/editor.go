// Package editor owns the draft: the single note-in-progress derived from
// either a selected note or a fresh dated template.
package editor

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dhollis/minutes/internal/model"
)

// ErrEmptyDraft is returned by Submit when the trimmed title or content is
// empty. The save contract is never invoked in that case.
var ErrEmptyDraft = errors.New("title and content are required")

// templateDateLayout is the long date baked into a fresh draft's title.
const templateDateLayout = "Monday, January 2, 2006"

// SaveFunc receives the draft when it is submitted. It is the editor's only
// path to the coordinator.
type SaveFunc func(model.Draft) error

// Editor holds the draft and applies all edits to it. Safe for use from
// concurrent request handlers, though there is only ever one user.
type Editor struct {
	mu    sync.Mutex
	draft model.Draft
	save  SaveFunc
	now   func() time.Time
}

func New(save SaveFunc) *Editor {
	e := &Editor{save: save, now: time.Now}
	e.draft = e.template()
	return e
}

func (e *Editor) template() model.Draft {
	return model.Draft{
		Title: "Meeting Notes - " + e.now().Format(templateDateLayout),
		Tags:  []string{model.DefaultTag},
	}
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() model.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	d.Tags = append([]string(nil), e.draft.Tags...)
	return d
}

func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	e.draft.Title = title
	e.mu.Unlock()
}

func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	e.draft.Content = content
	e.mu.Unlock()
}

// SetSelection rebuilds the draft from the selected note, or from the fresh
// template when the selection is cleared.
func (e *Editor) SetSelection(n *model.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n == nil {
		e.draft = e.template()
		return
	}
	e.draft = model.Draft{
		Title:   n.Title,
		Content: n.Content,
		Tags:    append([]string(nil), n.Tags...),
	}
}

// Reset discards the draft and starts over from the template.
func (e *Editor) Reset() {
	e.mu.Lock()
	e.draft = e.template()
	e.mu.Unlock()
}

// AddTag trims the input and appends it unless it is empty or already in
// the draft's tag set.
func (e *Editor) AddTag(text string) {
	tag := strings.TrimSpace(text)
	if tag == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.draft.Tags {
		if t == tag {
			return
		}
	}
	e.draft.Tags = append(e.draft.Tags, tag)
}

// RemoveTag removes the exact tag from the draft.
func (e *Editor) RemoveTag(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, t := range e.draft.Tags {
		if t == tag {
			e.draft.Tags = append(e.draft.Tags[:i], e.draft.Tags[i+1:]...)
			return
		}
	}
}

// Submit validates the draft and hands it to the save contract, then resets
// to the fresh template. A draft whose trimmed title or content is empty is
// rejected without saving.
func (e *Editor) Submit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(e.draft.Title) == "" || strings.TrimSpace(e.draft.Content) == "" {
		return ErrEmptyDraft
	}
	if err := e.save(e.draft); err != nil {
		return err
	}
	e.draft = e.template()
	return nil
}

// FormatContent normalizes sentence spacing in the draft content. Triggered
// when the content field loses focus.
func (e *Editor) FormatContent() {
	e.mu.Lock()
	e.draft.Content = NormalizeSentences(e.draft.Content)
	e.mu.Unlock()
}

// ApplyTranscript replaces the draft content with the transcript assembled
// from all recognition segments captured so far.
func (e *Editor) ApplyTranscript(segments []string) {
	content := Transcript(segments)
	e.mu.Lock()
	e.draft.Content = content
	e.mu.Unlock()
}
