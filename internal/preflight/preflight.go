package preflight

import (
	"context"

	"quill/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// StoreHealthChecker verifies that the journal store is reachable with the
// configured credentials.
type StoreHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RunAll executes every startup check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, store StoreHealthChecker) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Inbox directory", cfg.Paths.InboxDir))
	results = append(results, CheckDirectoryAccess("Archive directory", cfg.Paths.ArchiveDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckTranscriptionKey(cfg))
	results = append(results, CheckJournalStore(ctx, store))
	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
