package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhollis/minutes/internal/model"
)

// NotesSlot is the slot key holding the serialized note collection.
const NotesSlot = "meeting-notes"

// NoteStore owns the note collection. The collection is loaded from its slot
// once at construction and re-serialized wholesale after every successful
// mutation, so the persisted snapshot always equals the in-memory state.
// Storage order is insertion order with the newest created note first;
// display ordering is derived elsewhere and never persisted.
type NoteStore struct {
	mu    sync.Mutex
	slot  *SlotStore
	notes []model.Note

	now   func() time.Time
	newID func() string
}

// NewNoteStore loads the collection from the slot. An absent slot means an
// empty collection.
func NewNoteStore(slot *SlotStore) (*NoteStore, error) {
	s := &NoteStore{
		slot:  slot,
		notes: []model.Note{},
		now:   time.Now,
		newID: uuid.NewString,
	}

	raw, ok, err := slot.Get(NotesSlot)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &s.notes); err != nil {
			return nil, fmt.Errorf("decode notes: %w", err)
		}
	}
	return s, nil
}

// All returns a copy of the collection in storage order.
func (s *NoteStore) All() []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Get returns a copy of the note with the given id, or nil if absent.
func (s *NoteStore) Get(id string) *model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

func (s *NoteStore) find(id string) *model.Note {
	for i := range s.notes {
		if s.notes[i].ID == id {
			n := s.notes[i]
			return &n
		}
	}
	return nil
}

// Save applies a draft. With a selectedID it merges the draft's fields into
// the matching note and refreshes UpdatedAt, leaving id, createdAt, and
// favorite untouched. Without one it creates a new note at the head of the
// collection with tags ["meeting"] followed by the draft's tags; a "meeting"
// tag already present in the draft is deliberately not deduplicated.
//
// A draft with an empty title or content never changes the collection:
// Save returns (nil, nil) and the caller is expected to have rejected the
// attempt already.
func (s *NoteStore) Save(draft model.Draft, selectedID string) (*model.Note, error) {
	if draft.Title == "" || draft.Content == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if selectedID != "" {
		for i := range s.notes {
			if s.notes[i].ID != selectedID {
				continue
			}
			s.notes[i].Title = draft.Title
			s.notes[i].Content = draft.Content
			s.notes[i].Tags = append([]string(nil), draft.Tags...)
			s.notes[i].UpdatedAt = s.now()
			if err := s.persist(); err != nil {
				return nil, err
			}
			n := s.notes[i]
			return &n, nil
		}
		return nil, nil
	}

	now := s.now()
	note := model.Note{
		ID:        s.newID(),
		Title:     draft.Title,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
		Favorite:  false,
		Tags:      append([]string{model.DefaultTag}, draft.Tags...),
	}
	s.notes = append([]model.Note{note}, s.notes...)
	if err := s.persist(); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes the note with the given id. It reports whether a note was
// removed.
func (s *NoteStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			if err := s.persist(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ToggleFavorite flips the favorite flag on the matching note. No other
// field changes, including UpdatedAt. Returns nil if the note is absent.
func (s *NoteStore) ToggleFavorite(id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i].Favorite = !s.notes[i].Favorite
			if err := s.persist(); err != nil {
				return nil, err
			}
			n := s.notes[i]
			return &n, nil
		}
	}
	return nil, nil
}

// Replace swaps in a whole new collection and persists it. Used by backup
// restore.
func (s *NoteStore) Replace(notes []model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notes == nil {
		notes = []model.Note{}
	}
	s.notes = notes
	return s.persist()
}

// Snapshot returns the collection serialized exactly as it sits in the slot.
func (s *NoteStore) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.notes)
}

// persist re-serializes the whole collection into the slot. Callers hold mu.
func (s *NoteStore) persist() error {
	data, err := json.Marshal(s.notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := s.slot.Put(NotesSlot, string(data)); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	return nil
}
