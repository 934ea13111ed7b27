package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dhollis/minutes/internal/app"
	"github.com/dhollis/minutes/internal/editor"
	"github.com/dhollis/minutes/internal/speech"
)

// EditorHandler exposes the draft editor and the recording toggle. Every
// endpoint is an editor intent; the draft itself lives server-side.
type EditorHandler struct {
	coord   *app.Coordinator
	session *speech.Session
	logger  *slog.Logger
}

func NewEditorHandler(coord *app.Coordinator, session *speech.Session, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{coord: coord, session: session, logger: logger}
}

// Draft returns the current draft.
func (h *EditorHandler) Draft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Editor().Draft())
}

type draftRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// UpdateDraft sets the draft's title and/or content.
func (h *EditorHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ed := h.coord.Editor()
	if req.Title != nil {
		ed.SetTitle(*req.Title)
	}
	if req.Content != nil {
		ed.SetContent(*req.Content)
	}
	writeJSON(w, http.StatusOK, ed.Draft())
}

type tagRequest struct {
	Tag string `json:"tag"`
}

// AddTag appends a trimmed tag to the draft unless empty or already present.
func (h *EditorHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ed := h.coord.Editor()
	ed.AddTag(req.Tag)
	writeJSON(w, http.StatusOK, ed.Draft())
}

// RemoveTag removes the exact tag from the draft.
func (h *EditorHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	ed := h.coord.Editor()
	ed.RemoveTag(r.PathValue("tag"))
	writeJSON(w, http.StatusOK, ed.Draft())
}

// Format normalizes sentence spacing in the draft content. The UI triggers
// this when the content field loses focus.
func (h *EditorHandler) Format(w http.ResponseWriter, r *http.Request) {
	ed := h.coord.Editor()
	ed.FormatContent()
	writeJSON(w, http.StatusOK, ed.Draft())
}

// Submit saves the draft through the coordinator. A draft with a blank title
// or content is rejected inline and nothing mutates.
func (h *EditorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	err := h.coord.Editor().Submit()
	if errors.Is(err, editor.ErrEmptyDraft) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if errors.Is(err, app.ErrStaleSelection) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save note"})
		return
	}
	writeJSON(w, http.StatusOK, h.coord.Editor().Draft())
}

type selectionRequest struct {
	ID string `json:"id"`
}

// Select sets the currently-edited note; an empty id clears the selection
// and resets the draft to the dated template.
func (h *EditorHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if !h.coord.SelectNote(req.ID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selectedId": h.coord.SelectedID(),
		"draft":      h.coord.Editor().Draft(),
	})
}

// ClearSelection drops the selection without touching persisted data.
func (h *EditorHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.coord.SelectNote("")
	writeJSON(w, http.StatusOK, h.coord.Editor().Draft())
}

// Recording reports the recording state and whether speech is available.
func (h *EditorHandler) Recording(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"supported": h.session.Supported(),
		"recording": h.session.Recording(),
	})
}

// ToggleRecording starts or stops the transcript capture session.
func (h *EditorHandler) ToggleRecording(w http.ResponseWriter, r *http.Request) {
	err := h.session.Toggle(r.Context())
	switch {
	case errors.Is(err, speech.ErrNotSupported):
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, speech.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("toggle recording", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle recording"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"recording": h.session.Recording()})
}
