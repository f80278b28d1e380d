package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quill/internal/dispatch"
	"quill/internal/pipeline"
)

type ledgerCall struct {
	entryID   string
	succeeded bool
	category  string
	message   string
	recordID  string
	recordURL string
	archive   string
}

type stubLedger struct {
	calls chan ledgerCall
}

func newStubLedger() *stubLedger {
	return &stubLedger{calls: make(chan ledgerCall, 8)}
}

func (l *stubLedger) MarkSucceeded(_ context.Context, entryID, recordID, recordURL, archiveDir string) error {
	l.calls <- ledgerCall{entryID: entryID, succeeded: true, recordID: recordID, recordURL: recordURL, archive: archiveDir}
	return nil
}

func (l *stubLedger) MarkFailed(_ context.Context, entryID, category, message, recordID, recordURL string) error {
	l.calls <- ledgerCall{entryID: entryID, category: category, message: message, recordID: recordID, recordURL: recordURL}
	return nil
}

func waitLedger(t *testing.T, l *stubLedger) ledgerCall {
	t.Helper()
	select {
	case c := <-l.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ledger update")
		return ledgerCall{}
	}
}

type notifyCall struct {
	user    string
	title   string
	url     string
	message string
	failed  bool
}

type stubNotifier struct {
	calls chan notifyCall
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{calls: make(chan notifyCall, 8)}
}

func (n *stubNotifier) NotifyEntrySaved(_ context.Context, userID, title, url string) error {
	n.calls <- notifyCall{user: userID, title: title, url: url}
	return nil
}

func (n *stubNotifier) NotifyEntryFailed(_ context.Context, userID, message string) error {
	n.calls <- notifyCall{user: userID, message: message, failed: true}
	return nil
}

func (n *stubNotifier) TestNotification(context.Context) error { return nil }

func waitNotify(t *testing.T, n *stubNotifier) notifyCall {
	t.Helper()
	select {
	case c := <-n.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return notifyCall{}
	}
}

type stubRunner struct {
	mu      sync.Mutex
	gate    chan struct{}
	outcome func(job pipeline.Job) pipeline.Outcome
	runs    []pipeline.Job
}

func (r *stubRunner) Run(_ context.Context, job pipeline.Job) pipeline.Outcome {
	r.mu.Lock()
	r.runs = append(r.runs, job)
	r.mu.Unlock()
	if r.gate != nil {
		<-r.gate
	}
	return r.outcome(job)
}

func (r *stubRunner) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func testJob(entryID string) pipeline.Job {
	return pipeline.Job{
		EntryID:    entryID,
		UserID:     "dave",
		AudioPath:  "/inbox/" + entryID + ".ogg",
		CapturedAt: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherObservesSuccess(t *testing.T) {
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		return pipeline.Outcome{
			EntryID:    job.EntryID,
			UserID:     job.UserID,
			Title:      "Morning Walk",
			Succeeded:  true,
			RecordID:   "rec-1",
			RecordURL:  "https://notion.so/rec-1",
			ArchiveDir: "/archive/20250303_090000_" + job.EntryID,
		}
	}}
	ledger := newStubLedger()
	notifier := newStubNotifier()
	d := dispatch.New(runner, ledger, notifier, nil, 2)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), testJob("e1")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	call := waitLedger(t, ledger)
	if !call.succeeded {
		t.Fatalf("expected success, got %+v", call)
	}
	if call.entryID != "e1" || call.recordID != "rec-1" || call.archive == "" {
		t.Fatalf("unexpected ledger call: %+v", call)
	}

	note := waitNotify(t, notifier)
	if note.failed || note.title != "Morning Walk" || note.url != "https://notion.so/rec-1" {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

func TestDispatcherObservesFailure(t *testing.T) {
	runErr := errors.New("transcription request failed: HTTP 500")
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		return pipeline.Outcome{
			EntryID:     job.EntryID,
			UserID:      job.UserID,
			Category:    pipeline.FailureTranscription,
			UserMessage: pipeline.MessageTranscriptionFailed,
			Err:         runErr,
		}
	}}
	ledger := newStubLedger()
	notifier := newStubNotifier()
	d := dispatch.New(runner, ledger, notifier, nil, 1)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), testJob("e2")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	call := waitLedger(t, ledger)
	if call.succeeded {
		t.Fatalf("expected failure, got %+v", call)
	}
	if call.category != string(pipeline.FailureTranscription) {
		t.Errorf("unexpected category %q", call.category)
	}
	if call.message != runErr.Error() {
		t.Errorf("expected diagnostic detail in catalog, got %q", call.message)
	}

	note := waitNotify(t, notifier)
	if !note.failed {
		t.Fatalf("expected failure notification, got %+v", note)
	}
	if note.message != pipeline.MessageTranscriptionFailed {
		t.Errorf("expected fixed user message, got %q", note.message)
	}
}

func TestDispatcherKeepsPartialRecordOnFailure(t *testing.T) {
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		return pipeline.Outcome{
			EntryID:     job.EntryID,
			UserID:      job.UserID,
			Category:    pipeline.FailurePersistence,
			UserMessage: pipeline.MessagePersistenceFailed,
			RecordID:    "rec-partial",
			RecordURL:   "https://notion.so/rec-partial",
			Err:         errors.New("append blocks: HTTP 502"),
		}
	}}
	ledger := newStubLedger()
	d := dispatch.New(runner, ledger, nil, nil, 1)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), testJob("e3")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	call := waitLedger(t, ledger)
	if call.recordID != "rec-partial" || call.recordURL != "https://notion.so/rec-partial" {
		t.Fatalf("expected partial record retained, got %+v", call)
	}
}

func TestSubmitBlocksWhileWorkersBusy(t *testing.T) {
	gate := make(chan struct{})
	runner := &stubRunner{
		gate: gate,
		outcome: func(job pipeline.Job) pipeline.Outcome {
			return pipeline.Outcome{EntryID: job.EntryID, Succeeded: true}
		},
	}
	ledger := newStubLedger()
	d := dispatch.New(runner, ledger, nil, nil, 1)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), testJob("busy-1")); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := d.Submit(ctx, testJob("busy-2"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while pool busy, got %v", err)
	}

	close(gate)
	waitLedger(t, ledger)
	if got := runner.runCount(); got != 1 {
		t.Fatalf("expected exactly one run, got %d", got)
	}
}

func TestStopWaitsForInFlightRuns(t *testing.T) {
	gate := make(chan struct{})
	runner := &stubRunner{
		gate: gate,
		outcome: func(job pipeline.Job) pipeline.Outcome {
			return pipeline.Outcome{EntryID: job.EntryID, Succeeded: true}
		},
	}
	ledger := newStubLedger()
	d := dispatch.New(runner, ledger, nil, nil, 1)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Submit(context.Background(), testJob("inflight")); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a run was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(gate)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}

	select {
	case call := <-ledger.calls:
		if call.entryID != "inflight" || !call.succeeded {
			t.Fatalf("unexpected ledger call: %+v", call)
		}
	default:
		t.Fatal("expected outcome to be recorded before Stop returned")
	}
}

func TestDispatcherRunsJobsConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		barrier.Done()
		barrier.Wait()
		return pipeline.Outcome{EntryID: job.EntryID, Succeeded: true}
	}}
	ledger := newStubLedger()
	d := dispatch.New(runner, ledger, nil, nil, 2)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), testJob("c1")); err != nil {
		t.Fatalf("Submit c1 failed: %v", err)
	}
	if err := d.Submit(context.Background(), testJob("c2")); err != nil {
		t.Fatalf("Submit c2 failed: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		call := waitLedger(t, ledger)
		if !call.succeeded {
			t.Fatalf("unexpected failure: %+v", call)
		}
		seen[call.entryID] = true
	}
	if !seen["c1"] || !seen["c2"] {
		t.Fatalf("expected both jobs observed, got %v", seen)
	}
}

func TestSubmitBeforeStartAndAfterStop(t *testing.T) {
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		return pipeline.Outcome{EntryID: job.EntryID, Succeeded: true}
	}}
	d := dispatch.New(runner, newStubLedger(), nil, nil, 1)

	if err := d.Submit(context.Background(), testJob("early")); !errors.Is(err, dispatch.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before Start, got %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	d.Stop()

	if err := d.Submit(context.Background(), testJob("late")); !errors.Is(err, dispatch.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning after Stop, got %v", err)
	}
}

func TestSubmitRejectsInvalidJob(t *testing.T) {
	runner := &stubRunner{outcome: func(job pipeline.Job) pipeline.Outcome {
		return pipeline.Outcome{EntryID: job.EntryID, Succeeded: true}
	}}
	d := dispatch.New(runner, newStubLedger(), nil, nil, 1)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Submit(context.Background(), pipeline.Job{}); err == nil {
		t.Fatal("expected validation error for empty job")
	}
	if got := runner.runCount(); got != 0 {
		t.Fatalf("expected no runs for invalid job, got %d", got)
	}
}
