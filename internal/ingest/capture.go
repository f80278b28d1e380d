package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// captureTimestampLayout matches the trailing date and time fields of an
// inbox filename, interpreted as UTC.
const captureTimestampLayout = "20060102_150405"

var captureExtensions = map[string]struct{}{
	".ogg": {},
	".mp3": {},
	".m4a": {},
	".wav": {},
}

// Capture is the metadata encoded in an inbox filename of the form
// {user}_{uniqueid}_{YYYYMMDD}_{HHMMSS}.{ext}. The user portion may itself
// contain underscores; the timestamp always occupies the last two fields.
type Capture struct {
	UserID     string
	UniqueID   string
	CapturedAt time.Time
}

// ParseCaptureName extracts capture metadata from a file name. Names that do
// not follow the capture convention return an error so the watcher can skip
// stray files.
func ParseCaptureName(name string) (Capture, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := captureExtensions[ext]; !ok {
		return Capture{}, fmt.Errorf("unsupported extension %q", ext)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "_")
	if len(parts) < 4 {
		return Capture{}, fmt.Errorf("name %q does not match user_uniqueid_date_time", name)
	}

	capturedAt, err := time.Parse(captureTimestampLayout, strings.Join(parts[len(parts)-2:], "_"))
	if err != nil {
		return Capture{}, fmt.Errorf("parse capture timestamp in %q: %w", name, err)
	}

	uniqueID := parts[len(parts)-3]
	userID := strings.Join(parts[:len(parts)-3], "_")
	if userID == "" || uniqueID == "" {
		return Capture{}, fmt.Errorf("name %q is missing user or unique id", name)
	}

	return Capture{UserID: userID, UniqueID: uniqueID, CapturedAt: capturedAt}, nil
}
