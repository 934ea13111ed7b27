package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dhollis/minutes/internal/model"
)

// MIMEType is the content type of an encrypted snapshot download.
const MIMEType = "application/octet-stream"

// FileName names a snapshot download after the time it was taken.
func FileName(now time.Time) string {
	return "minutes_backup_" + now.Format("2006-01-02") + ".enc"
}

// Snapshot encrypts the serialized collection for download.
func Snapshot(serialized []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}
	return Encrypt(serialized, passphrase)
}

// Restore decrypts an uploaded snapshot and decodes it back into a note
// collection. It validates the payload before anything touches the store.
func Restore(data []byte, passphrase string) ([]model.Note, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	plaintext, err := Decrypt(data, passphrase)
	if err != nil {
		return nil, err
	}

	var notes []model.Note
	if err := json.Unmarshal(plaintext, &notes); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return notes, nil
}
