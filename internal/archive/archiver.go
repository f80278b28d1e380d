package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	transcriptFilename = "transcript.txt"
	polishedFilename   = "polished.json"
	metadataFilename   = "metadata.json"

	dirTimestampLayout = "20060102_150405"
)

// Bundle is everything persisted locally for one journal entry.
type Bundle struct {
	EntryID       string
	CapturedAt    time.Time
	LogicalDate   string
	Title         string
	PolishedText  string
	RawTranscript string
	RecordID      string
	RecordURL     string
}

type polishedPayload struct {
	Title        string `json:"title"`
	PolishedText string `json:"polished_text"`
}

type bundleMetadata struct {
	EntryID           string `json:"entry_id"`
	CaptureInstantUTC string `json:"capture_instant_utc"`
	LogicalDate       string `json:"logical_date"`
	RemoteRecordURL   string `json:"remote_record_url"`
	RemoteRecordID    string `json:"remote_record_id"`
	Title             string `json:"title"`
}

// Archiver writes artifact bundles under a fixed root directory.
type Archiver struct {
	root string
}

// NewArchiver constructs an archiver rooted at dir.
func NewArchiver(dir string) *Archiver {
	return &Archiver{root: strings.TrimSpace(dir)}
}

// BundleDirName returns the directory name used for one entry's bundle.
func BundleDirName(capturedAt time.Time, entryID string) string {
	return capturedAt.UTC().Format(dirTimestampLayout) + "_" + entryID
}

// Archive writes the bundle and returns the created directory path.
// Re-invocation with the same entry id and timestamp overwrites prior files.
func (a *Archiver) Archive(ctx context.Context, bundle Bundle) (string, error) {
	if a == nil || a.root == "" {
		return "", errors.New("archive: root directory not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	entryID := strings.TrimSpace(bundle.EntryID)
	if entryID == "" {
		return "", errors.New("archive: entry id required")
	}
	if bundle.CapturedAt.IsZero() {
		return "", errors.New("archive: capture timestamp required")
	}

	dir := filepath.Join(a.root, BundleDirName(bundle.CapturedAt, entryID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create bundle dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, transcriptFilename), []byte(bundle.RawTranscript), 0o644); err != nil {
		return "", fmt.Errorf("archive: write transcript: %w", err)
	}

	polished, err := json.MarshalIndent(polishedPayload{
		Title:        bundle.Title,
		PolishedText: bundle.PolishedText,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: encode polished payload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, polishedFilename), polished, 0o644); err != nil {
		return "", fmt.Errorf("archive: write polished payload: %w", err)
	}

	metadata, err := json.MarshalIndent(bundleMetadata{
		EntryID:           entryID,
		CaptureInstantUTC: bundle.CapturedAt.UTC().Format(time.RFC3339),
		LogicalDate:       bundle.LogicalDate,
		RemoteRecordURL:   bundle.RecordURL,
		RemoteRecordID:    bundle.RecordID,
		Title:             bundle.Title,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFilename), metadata, 0o644); err != nil {
		return "", fmt.Errorf("archive: write metadata: %w", err)
	}

	return dir, nil
}
