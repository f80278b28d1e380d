package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/logging"
	"quill/internal/pipeline"
)

// Submitter accepts claimed jobs for processing. Submit blocks while the
// worker pool is saturated, which is what throttles intake.
type Submitter interface {
	Submit(ctx context.Context, job pipeline.Job) error
}

// Ledger is the catalog surface the watcher needs to claim each voice note
// exactly once.
type Ledger interface {
	SourceSeen(ctx context.Context, audioPath string) (bool, error)
	Claim(ctx context.Context, entryID, userID, audioPath string, capturedAt time.Time) (*catalog.Entry, error)
}

// Watcher polls the inbox directory for freshly captured voice notes.
type Watcher struct {
	inbox        string
	pollInterval time.Duration
	ledger       Ledger
	submitter    Submitter
	logger       *slog.Logger

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher builds an inbox watcher from configuration.
func NewWatcher(cfg *config.Config, ledger Ledger, submitter Submitter, logger *slog.Logger) *Watcher {
	poll := time.Duration(cfg.Pipeline.PollInterval) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		inbox:        cfg.Paths.InboxDir,
		pollInterval: poll,
		ledger:       ledger,
		submitter:    submitter,
		logger:       logging.NewComponentLogger(logger, "ingest"),
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return errors.New("inbox watcher unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("inbox watcher already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop()
	w.logger.Info("inbox watcher started",
		logging.String("inbox", w.inbox),
		logging.Duration("poll_interval", w.pollInterval))
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	w.scan()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	ctx := w.ctx
	if ctx == nil {
		return
	}

	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		w.logger.Warn("inbox scan failed; will retry", logging.Error(err))
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() {
			continue
		}
		w.handle(ctx, entry.Name())
	}
}

func (w *Watcher) handle(ctx context.Context, name string) {
	capture, err := ParseCaptureName(name)
	if err != nil {
		w.logger.Debug("skipping non-capture file",
			logging.String("file", name),
			logging.Error(err))
		return
	}

	path := filepath.Join(w.inbox, name)
	seen, err := w.ledger.SourceSeen(ctx, path)
	if err != nil {
		w.logger.Warn("catalog lookup failed; will retry",
			logging.String("file", name),
			logging.Error(err))
		return
	}
	if seen {
		// Claimed by this run or an earlier one.
		return
	}

	job := pipeline.Job{
		EntryID:    pipeline.NewEntryID(),
		UserID:     capture.UserID,
		AudioPath:  path,
		CapturedAt: capture.CapturedAt,
	}

	if _, err := w.ledger.Claim(ctx, job.EntryID, job.UserID, job.AudioPath, job.CapturedAt); err != nil {
		w.logger.Warn("claim voice note failed; will retry",
			logging.String("file", name),
			logging.Error(err))
		return
	}

	if err := w.submitter.Submit(ctx, job); err != nil {
		// The claim stays in the catalog; a restart marks the entry failed.
		w.logger.Warn("submit voice note failed",
			logging.String(logging.FieldEntryID, job.EntryID),
			logging.String("file", name),
			logging.Error(err))
		return
	}

	w.logger.Info("voice note submitted",
		logging.String(logging.FieldEntryID, job.EntryID),
		logging.String("user_id", job.UserID),
		logging.String("file", name),
		logging.String("captured_at", job.CapturedAt.Format(time.RFC3339)))
}
