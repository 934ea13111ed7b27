package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhollis/minutes/internal/app"
	"github.com/dhollis/minutes/internal/export"
	"github.com/dhollis/minutes/internal/model"
	"github.com/dhollis/minutes/internal/query"
)

// NoteHandler serves the list/filter/sort view and the export pipeline.
type NoteHandler struct {
	coord  *app.Coordinator
	logger *slog.Logger
}

func NewNoteHandler(coord *app.Coordinator, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{coord: coord, logger: logger}
}

// List returns the visible sequence: filtered by the q and tag parameters,
// ordered by the sort parameter (title, favorite, or date).
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes := query.Visible(
		h.coord.Notes(),
		r.URL.Query().Get("q"),
		r.URL.Query().Get("tag"),
		r.URL.Query().Get("sort"),
	)
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// Tags returns the distinct tags across all notes, alphabetically ordered.
func (h *NoteHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags := query.TagUniverse(h.coord.Notes())
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// Delete removes a note. The interactive confirmation travels as an explicit
// confirm=true parameter; without it the delete is declined and nothing
// changes.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	confirmed := r.URL.Query().Get("confirm") == "true"
	deleted, err := h.coord.DeleteNote(id, func(string) bool { return confirmed })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete note"})
		return
	}
	if !confirmed {
		writeJSON(w, http.StatusPreconditionFailed, map[string]string{"error": "delete requires confirmation"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag on one note.
func (h *NoteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	note, err := h.coord.ToggleFavorite(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle favorite"})
		return
	}
	if note == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ExportOne downloads a single note as Markdown, named from its title.
func (h *NoteHandler) ExportOne(w http.ResponseWriter, r *http.Request) {
	note := h.coord.Note(r.PathValue("id"))
	if note == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
		return
	}

	if err := export.One(&httpSink{w: w}, *note); err != nil {
		h.logger.Error("export note", "error", err)
	}
}

// ExportAll downloads the currently visible sequence as one Markdown file.
// The same q/tag/sort parameters as List decide what is visible.
func (h *NoteHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	notes := query.Visible(
		h.coord.Notes(),
		r.URL.Query().Get("q"),
		r.URL.Query().Get("tag"),
		r.URL.Query().Get("sort"),
	)

	if err := export.All(&httpSink{w: w}, notes, time.Now()); err != nil {
		h.logger.Error("export notes", "error", err)
	}
}

// httpSink delivers an export payload as a file download. The response writer
// is the only reference to the payload and is not retained past Download.
type httpSink struct {
	w http.ResponseWriter
}

func (s *httpSink) Download(name, mimeType string, data []byte) error {
	s.w.Header().Set("Content-Type", mimeType)
	s.w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, err := s.w.Write(data)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
