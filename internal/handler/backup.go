package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhollis/minutes/internal/app"
	"github.com/dhollis/minutes/internal/backup"
	"github.com/dhollis/minutes/internal/store"
)

// maxSnapshotSize bounds a restore upload.
const maxSnapshotSize = 16 << 20

// BackupHandler downloads and restores passphrase-encrypted snapshots of the
// note collection.
type BackupHandler struct {
	coord  *app.Coordinator
	store  *store.NoteStore
	logger *slog.Logger
}

func NewBackupHandler(coord *app.Coordinator, st *store.NoteStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{coord: coord, store: st, logger: logger}
}

// Download encrypts the current snapshot and delivers it through the export
// sink.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	passphrase := r.URL.Query().Get("passphrase")
	if passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	snapshot, err := h.store.Snapshot()
	if err != nil {
		h.logger.Error("snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read snapshot"})
		return
	}

	sealed, err := backup.Snapshot(snapshot, passphrase)
	if err != nil {
		h.logger.Error("encrypt snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encrypt snapshot"})
		return
	}

	sink := &httpSink{w: w}
	if err := sink.Download(backup.FileName(time.Now()), backup.MIMEType, sealed); err != nil {
		h.logger.Error("download snapshot", "error", err)
	}
}

// Restore decrypts an uploaded snapshot and replaces the collection with it.
// The payload is validated before anything touches the store.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	passphrase := r.URL.Query().Get("passphrase")
	if passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read snapshot"})
		return
	}

	notes, err := backup.Restore(data, passphrase)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid snapshot or passphrase"})
		return
	}

	if err := h.store.Replace(notes); err != nil {
		h.logger.Error("restore snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to restore snapshot"})
		return
	}

	h.coord.SelectNote("")
	writeJSON(w, http.StatusOK, map[string]int{"restored": len(notes)})
}
