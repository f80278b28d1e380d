package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quill/internal/config"
)

// WriteFile writes content to the target path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteInboxAudio drops a fake voice note into the inbox using the capture
// filename convention and returns its path.
func WriteInboxAudio(t testing.TB, cfg *config.Config, userID, uid string, capturedAt time.Time, ext string) string {
	t.Helper()

	if ext == "" {
		ext = ".ogg"
	}
	name := fmt.Sprintf("%s_%s_%s%s", userID, uid, capturedAt.UTC().Format("20060102_150405"), ext)
	path := filepath.Join(cfg.Paths.InboxDir, name)
	WriteFile(t, path, []byte("fake audio bytes"))
	return path
}
