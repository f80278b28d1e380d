package testsupport

import (
	"context"
	"testing"
	"time"

	"quill/internal/catalog"
	"quill/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// ClaimEntry records a processing entry for tests using the provided store.
func ClaimEntry(t testing.TB, store *catalog.Store, entryID, userID, audioPath string) *catalog.Entry {
	t.Helper()

	entry, err := store.Claim(context.Background(), entryID, userID, audioPath, time.Now().UTC())
	if err != nil {
		t.Fatalf("store.Claim: %v", err)
	}
	return entry
}
