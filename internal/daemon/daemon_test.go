package daemon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/dispatch"
	"quill/internal/ingest"
	"quill/internal/logging"
	"quill/internal/pipeline"
	"quill/internal/services/notion"
	"quill/internal/testsupport"
)

type stubRunner struct {
	outcome func(job pipeline.Job) pipeline.Outcome
}

func (r *stubRunner) Run(_ context.Context, job pipeline.Job) pipeline.Outcome {
	if r.outcome != nil {
		return r.outcome(job)
	}
	return pipeline.Outcome{
		EntryID:   job.EntryID,
		UserID:    job.UserID,
		Title:     "Stub Entry",
		Succeeded: true,
		RecordID:  "rec-" + job.EntryID,
		RecordURL: "https://notion.so/" + job.EntryID,
	}
}

func journalServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"db-1"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func buildDaemon(t *testing.T, cfg *config.Config, store *catalog.Store, runner dispatch.Runner) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	dispatcher := dispatch.New(runner, store, nil, logger, 2)
	watcher := ingest.NewWatcher(cfg, store, dispatcher, logger)
	health := notion.NewClient(notion.Config{
		APIKey:     cfg.Notion.APIKey,
		DatabaseID: cfg.Notion.DatabaseID,
		BaseURL:    cfg.Notion.BaseURL,
	})
	d, err := daemon.New(cfg, store, dispatcher, watcher, health, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func newTestConfig(t *testing.T, journalStatus int) *config.Config {
	t.Helper()
	srv := journalServer(t, journalStatus)
	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.PollInterval = 1
	cfg.Notion.BaseURL = srv.URL
	return cfg
}

func TestDaemonStartStop(t *testing.T) {
	cfg := newTestConfig(t, http.StatusOK)
	store := testsupport.MustOpenCatalog(t, cfg)
	d := buildDaemon(t, cfg, store, &stubRunner{})

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	status, err := d.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath == "" || status.CatalogDBPath == "" {
		t.Fatalf("expected populated paths, got %+v", status)
	}

	d.Stop()
	status, err = d.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to report stopped")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := newTestConfig(t, http.StatusOK)
	store := testsupport.MustOpenCatalog(t, cfg)

	first := buildDaemon(t, cfg, store, &stubRunner{})
	second := buildDaemon(t, cfg, store, &stubRunner{})

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	err := second.Start(ctx)
	if err == nil {
		t.Fatal("expected second instance to be rejected")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second instance should start after first stopped: %v", err)
	}
	second.Stop()
}

func TestDaemonFailsFastOnBadCredentials(t *testing.T) {
	cfg := newTestConfig(t, http.StatusUnauthorized)
	store := testsupport.MustOpenCatalog(t, cfg)
	d := buildDaemon(t, cfg, store, &stubRunner{})

	ctx := context.Background()
	err := d.Start(ctx)
	if err == nil {
		t.Fatal("expected start to fail when journal store rejects credentials")
	}
	if !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("unexpected error: %v", err)
	}

	// The failed start must release the lock for the next attempt.
	healthy := journalServer(t, http.StatusOK)
	cfg.Notion.BaseURL = healthy.URL
	retry := buildDaemon(t, cfg, store, &stubRunner{})
	if err := retry.Start(ctx); err != nil {
		t.Fatalf("start after failed preflight should succeed: %v", err)
	}
	retry.Stop()
}

func TestDaemonRecoversAbandonedEntries(t *testing.T) {
	cfg := newTestConfig(t, http.StatusOK)
	store := testsupport.MustOpenCatalog(t, cfg)

	capturedAt := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	path := testsupport.WriteInboxAudio(t, cfg, "dave", "uid1", capturedAt, ".ogg")
	testsupport.ClaimEntry(t, store, "stale-entry", "dave", path)

	d := buildDaemon(t, cfg, store, &stubRunner{})
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	entry, err := store.GetByEntryID(ctx, "stale-entry")
	if err != nil {
		t.Fatalf("GetByEntryID failed: %v", err)
	}
	if entry == nil || entry.Status != catalog.StatusFailed {
		t.Fatalf("expected stale entry to be failed, got %#v", entry)
	}
	if entry.ErrorMessage != catalog.RestartFailureMessage {
		t.Fatalf("unexpected error message %q", entry.ErrorMessage)
	}

	// The audio file was claimed by the dead run; it must not be resubmitted.
	time.Sleep(1500 * time.Millisecond)
	summary, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if summary.Processing != 0 || summary.Total != 1 {
		t.Fatalf("expected no new claims, got %+v", summary)
	}
}

func TestDaemonProcessesInboxCapture(t *testing.T) {
	cfg := newTestConfig(t, http.StatusOK)
	store := testsupport.MustOpenCatalog(t, cfg)

	capturedAt := time.Date(2025, time.July, 21, 22, 15, 30, 0, time.UTC)
	testsupport.WriteInboxAudio(t, cfg, "dave_smith", "AgADkQk", capturedAt, ".ogg")

	d := buildDaemon(t, cfg, store, &stubRunner{})
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		summary, err := store.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if summary.Succeeded == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for capture to finish, stats %+v", summary)
		}
		time.Sleep(50 * time.Millisecond)
	}

	entries, err := d.RecentEntries(ctx, 5)
	if err != nil {
		t.Fatalf("RecentEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.UserID != "dave_smith" {
		t.Errorf("user = %q, want dave_smith", entry.UserID)
	}
	if entry.RecordURL == "" {
		t.Error("expected record url recorded")
	}
	if !entry.CapturedAt.Equal(capturedAt) {
		t.Errorf("captured at = %v, want %v", entry.CapturedAt, capturedAt)
	}
}
