package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"quill/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTranscriptionKey verifies the transcription API key is present. The
// key itself is only validated by the first real request.
func CheckTranscriptionKey(cfg *config.Config) Result {
	const name = "OpenAI API key"
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	return Result{Name: name, Passed: true, Detail: "present"}
}

// CheckJournalStore verifies that the journal database is reachable and the
// integration token grants access. It uses a 10-second timeout and a single
// attempt.
func CheckJournalStore(ctx context.Context, store StoreHealthChecker) Result {
	const name = "Journal store"
	if store == nil {
		return Result{Name: name, Detail: "not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := store.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeStoreError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "database reachable"}
}

// summarizeStoreError produces a human-readable summary for store health
// check failures.
func summarizeStoreError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (journal API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (journal API unreachable)"
	}
	return err.Error()
}
