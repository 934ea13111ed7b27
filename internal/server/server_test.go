package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhollis/minutes/internal/database"
	"github.com/dhollis/minutes/internal/logging"
	"github.com/dhollis/minutes/internal/model"
)

func setupServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := New(db, logging.Setup("error"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv, srv.Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// submitNote drives the editor endpoints the way the UI does.
func submitNote(t *testing.T, h http.Handler, title, content string, tags ...string) model.Note {
	t.Helper()
	do(t, h, "PUT", "/api/draft", `{"title":`+marshal(title)+`,"content":`+marshal(content)+`}`)
	for _, tag := range tags {
		do(t, h, "POST", "/api/draft/tags", `{"tag":`+marshal(tag)+`}`)
	}
	if rec := do(t, h, "POST", "/api/draft/submit", ""); rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}
	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) == 0 {
		t.Fatal("submit produced no note")
	}
	return notes[0]
}

func marshal(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestHealth(t *testing.T) {
	_, h := setupServer(t)
	rec := do(t, h, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDraftLifecycle(t *testing.T) {
	_, h := setupServer(t)

	draft := decode[model.Draft](t, do(t, h, "GET", "/api/draft", ""))
	if !strings.HasPrefix(draft.Title, "Meeting Notes - ") {
		t.Errorf("template title = %q", draft.Title)
	}
	if len(draft.Tags) != 1 || draft.Tags[0] != "meeting" {
		t.Errorf("template tags = %v", draft.Tags)
	}

	do(t, h, "PUT", "/api/draft", `{"title":"Standup","content":"We shipped X."}`)
	do(t, h, "POST", "/api/draft/tags", `{"tag":" q3 "}`)
	draft = decode[model.Draft](t, do(t, h, "GET", "/api/draft", ""))
	if draft.Tags[len(draft.Tags)-1] != "q3" {
		t.Errorf("tags = %v, want trimmed q3 appended", draft.Tags)
	}

	rec := do(t, h, "DELETE", "/api/draft/tags/q3", "")
	draft = decode[model.Draft](t, rec)
	for _, tag := range draft.Tags {
		if tag == "q3" {
			t.Errorf("tag not removed: %v", draft.Tags)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	_, h := setupServer(t)

	do(t, h, "PUT", "/api/draft", `{"title":"   ","content":"body"}`)
	rec := do(t, h, "POST", "/api/draft/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) != 0 {
		t.Error("rejected submit must not create a note")
	}
}

func TestCreateAndListNotes(t *testing.T) {
	_, h := setupServer(t)

	n := submitNote(t, h, "Standup", "We shipped X.")
	if n.Title != "Standup" || n.Favorite {
		t.Errorf("note = %+v", n)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "meeting" {
		t.Errorf("tags = %v, want [meeting]", n.Tags)
	}
}

func TestListFilterAndSort(t *testing.T) {
	_, h := setupServer(t)

	submitNote(t, h, "Banana", "yellow")
	submitNote(t, h, "apple", "red", "fruit")
	submitNote(t, h, "Cherry", "red")

	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes?sort=title", ""))
	if len(notes) != 3 || notes[0].Title != "apple" || notes[1].Title != "Banana" {
		t.Errorf("title sort = %+v", notes)
	}

	notes = decode[[]model.Note](t, do(t, h, "GET", "/api/notes?q=red", ""))
	if len(notes) != 2 {
		t.Errorf("q=red matched %d notes", len(notes))
	}

	notes = decode[[]model.Note](t, do(t, h, "GET", "/api/notes?tag=fruit", ""))
	if len(notes) != 1 || notes[0].Title != "apple" {
		t.Errorf("tag filter = %+v", notes)
	}

	notes = decode[[]model.Note](t, do(t, h, "GET", "/api/notes?tag=absent", ""))
	if len(notes) != 0 {
		t.Errorf("absent tag matched %+v", notes)
	}

	tags := decode[[]string](t, do(t, h, "GET", "/api/tags", ""))
	if len(tags) != 2 || tags[0] != "fruit" || tags[1] != "meeting" {
		t.Errorf("tag universe = %v", tags)
	}
}

func TestSelectionMergesOnSubmit(t *testing.T) {
	_, h := setupServer(t)

	n := submitNote(t, h, "Before", "old")

	rec := do(t, h, "PUT", "/api/selection", `{"id":"`+n.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select: %d", rec.Code)
	}

	do(t, h, "PUT", "/api/draft", `{"title":"After","content":"new"}`)
	do(t, h, "POST", "/api/draft/submit", "")

	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) != 1 || notes[0].Title != "After" || notes[0].ID != n.ID {
		t.Errorf("notes = %+v", notes)
	}
}

func TestSelectUnknownNote(t *testing.T) {
	_, h := setupServer(t)

	rec := do(t, h, "PUT", "/api/selection", `{"id":"missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	_, h := setupServer(t)

	n := submitNote(t, h, "Doomed", "body")

	rec := do(t, h, "DELETE", "/api/notes/"+n.ID, "")
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("unconfirmed delete: status = %d, want 412", rec.Code)
	}
	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) != 1 {
		t.Fatal("unconfirmed delete changed the collection")
	}

	rec = do(t, h, "DELETE", "/api/notes/"+n.ID+"?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirmed delete: status = %d", rec.Code)
	}
	notes = decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) != 0 {
		t.Fatal("note not deleted")
	}

	rec = do(t, h, "DELETE", "/api/notes/"+n.ID+"?confirm=true", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: status = %d, want 404", rec.Code)
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	_, h := setupServer(t)

	n := submitNote(t, h, "T", "c")

	got := decode[model.Note](t, do(t, h, "POST", "/api/notes/"+n.ID+"/favorite", ""))
	if !got.Favorite {
		t.Error("expected favorite after toggle")
	}
	if !got.UpdatedAt.Equal(n.UpdatedAt) {
		t.Error("toggle touched updatedAt")
	}

	rec := do(t, h, "POST", "/api/notes/missing/favorite", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExportOne(t *testing.T) {
	_, h := setupServer(t)

	n := submitNote(t, h, "Standup Notes", "We shipped X.")

	rec := do(t, h, "GET", "/api/notes/"+n.ID+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/markdown" {
		t.Errorf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="standup_notes.md"` {
		t.Errorf("disposition = %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "# Standup Notes\n\nWe shipped X.\n\n## Tags\n- meeting\n") {
		t.Errorf("body = %q", body)
	}
}

func TestExportAll(t *testing.T) {
	_, h := setupServer(t)

	submitNote(t, h, "A", "one")
	submitNote(t, h, "B", "two")

	rec := do(t, h, "GET", "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "meeting_notes_") {
		t.Errorf("disposition = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "\n---\n") {
		t.Error("missing horizontal rule between notes")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	_, h := setupServer(t)

	submitNote(t, h, "Keep me", "important")

	rec := do(t, h, "GET", "/api/backup?passphrase=s3cret", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("backup: status = %d body %s", rec.Code, rec.Body.String())
	}
	sealed := rec.Body.String()

	// Wipe and restore.
	notes := decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	do(t, h, "DELETE", "/api/notes/"+notes[0].ID+"?confirm=true", "")

	rec = do(t, h, "POST", "/api/backup/restore?passphrase=s3cret", sealed)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: status = %d body %s", rec.Code, rec.Body.String())
	}

	notes = decode[[]model.Note](t, do(t, h, "GET", "/api/notes", ""))
	if len(notes) != 1 || notes[0].Title != "Keep me" {
		t.Errorf("restored notes = %+v", notes)
	}
}

func TestBackupWrongPassphrase(t *testing.T) {
	_, h := setupServer(t)

	submitNote(t, h, "T", "c")
	rec := do(t, h, "GET", "/api/backup?passphrase=right", "")
	sealed := rec.Body.String()

	rec = do(t, h, "POST", "/api/backup/restore?passphrase=wrong", sealed)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBackupRequiresPassphrase(t *testing.T) {
	_, h := setupServer(t)

	if rec := do(t, h, "GET", "/api/backup", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecordingRefusedWhenPermissionDenied(t *testing.T) {
	srv, h := setupServer(t)

	// The browser reported a denied microphone permission over the websocket.
	srv.hub.Receive([]byte(`{"action":"permission","state":"denied"}`))

	rec := do(t, h, "POST", "/api/recording/toggle", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	status := decode[map[string]bool](t, do(t, h, "GET", "/api/recording", ""))
	if status["recording"] {
		t.Error("must not record when denied")
	}
	if !status["supported"] {
		t.Error("bridge-backed speech should report supported")
	}
}

func TestRecordingToggleWithGrantedPermission(t *testing.T) {
	srv, h := setupServer(t)

	srv.hub.Receive([]byte(`{"action":"permission","state":"granted"}`))

	rec := do(t, h, "POST", "/api/recording/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status = %d body %s", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]bool](t, rec); !got["recording"] {
		t.Error("expected recording after toggle")
	}

	// Transcript increments replace the draft content wholesale.
	srv.hub.Receive([]byte(`{"action":"transcript","segments":["Hello."]}`))
	draft := decode[model.Draft](t, do(t, h, "GET", "/api/draft", ""))
	if draft.Content != "Hello" {
		t.Errorf("content = %q, want %q", draft.Content, "Hello")
	}

	srv.hub.Receive([]byte(`{"action":"transcript","segments":["Hello.","Hello. World."]}`))
	draft = decode[model.Draft](t, do(t, h, "GET", "/api/draft", ""))
	if draft.Content != "Hello. World" {
		t.Errorf("content = %q, want %q", draft.Content, "Hello. World")
	}

	rec = do(t, h, "POST", "/api/recording/toggle", "")
	if got := decode[map[string]bool](t, rec); got["recording"] {
		t.Error("expected idle after second toggle")
	}
}
