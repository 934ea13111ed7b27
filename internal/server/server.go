package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dhollis/minutes/internal/app"
	"github.com/dhollis/minutes/internal/handler"
	"github.com/dhollis/minutes/internal/logging"
	"github.com/dhollis/minutes/internal/speech"
	"github.com/dhollis/minutes/internal/store"
	ws "github.com/dhollis/minutes/internal/websocket"
)

type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	coord   *app.Coordinator
	session *speech.Session
	noteH   *handler.NoteHandler
	editorH *handler.EditorHandler
	backupH *handler.BackupHandler
	logger  *slog.Logger
}

// New builds the whole application: slot-backed note store, coordinator,
// speech session bridged over the websocket hub, and the handlers.
func New(db *sql.DB, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	slotStore := store.NewSlotStore(db)
	noteStore, err := store.NewNoteStore(slotStore)
	if err != nil {
		return nil, err
	}

	// Every successful mutation re-syncs connected clients.
	coord := app.New(noteStore, func(action, id string) {
		hub.Broadcast(ws.NewMessage("note", action, id, nil))
	}, logger.With("component", "coordinator"))

	// The browser is the concrete speech capability; the bridge carries its
	// transcript stream and permission resolutions over the websocket.
	bridge := ws.NewSpeechBridge(hub)
	session := speech.NewSession(bridge, bridge,
		coord.Editor().ApplyTranscript,
		func(msg string) {
			hub.Broadcast(ws.Message{Type: "speech_message", Extra: map[string]any{"text": msg}})
		},
	)

	return &Server{
		db:      db,
		hub:     hub,
		coord:   coord,
		session: session,
		noteH:   handler.NewNoteHandler(coord, logger.With("component", "note")),
		editorH: handler.NewEditorHandler(coord, session, logger.With("component", "editor")),
		backupH: handler.NewBackupHandler(coord, noteStore, logger.With("component", "backup")),
		logger:  logger,
	}, nil
}

// Coordinator returns the application coordinator.
func (s *Server) Coordinator() *app.Coordinator {
	return s.coord
}

// Close tears down long-lived resources, stopping any live recognition.
func (s *Server) Close() {
	s.session.Close()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// List/filter/sort view + export
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)
	mux.HandleFunc("POST /api/notes/{id}/favorite", s.noteH.ToggleFavorite)
	mux.HandleFunc("GET /api/notes/{id}/export", s.noteH.ExportOne)
	mux.HandleFunc("GET /api/export", s.noteH.ExportAll)
	mux.HandleFunc("GET /api/tags", s.noteH.Tags)

	// Editor
	mux.HandleFunc("GET /api/draft", s.editorH.Draft)
	mux.HandleFunc("PUT /api/draft", s.editorH.UpdateDraft)
	mux.HandleFunc("POST /api/draft/tags", s.editorH.AddTag)
	mux.HandleFunc("DELETE /api/draft/tags/{tag}", s.editorH.RemoveTag)
	mux.HandleFunc("POST /api/draft/format", s.editorH.Format)
	mux.HandleFunc("POST /api/draft/submit", s.editorH.Submit)
	mux.HandleFunc("PUT /api/selection", s.editorH.Select)
	mux.HandleFunc("DELETE /api/selection", s.editorH.ClearSelection)
	mux.HandleFunc("GET /api/recording", s.editorH.Recording)
	mux.HandleFunc("POST /api/recording/toggle", s.editorH.ToggleRecording)

	// Encrypted snapshots
	mux.HandleFunc("GET /api/backup", s.backupH.Download)
	mux.HandleFunc("POST /api/backup/restore", s.backupH.Restore)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return logging.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
