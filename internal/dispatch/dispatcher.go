package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/pipeline"
	"quill/internal/services"
)

var (
	// ErrNotRunning is returned by Submit before Start or after Stop.
	ErrNotRunning = errors.New("dispatcher not running")
	// ErrStopped is returned by a Submit that was still blocked when Stop began.
	ErrStopped = errors.New("dispatcher stopped")
)

// Runner executes one journal job to its terminal outcome.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job) pipeline.Outcome
}

// Ledger records terminal outcomes for processed entries.
type Ledger interface {
	MarkSucceeded(ctx context.Context, entryID, recordID, recordURL, archiveDir string) error
	MarkFailed(ctx context.Context, entryID, category, message, recordID, recordURL string) error
}

// Dispatcher owns the worker pool between Start and Stop.
type Dispatcher struct {
	runner   Runner
	ledger   Ledger
	notifier notifications.Service
	logger   *slog.Logger
	workers  int

	mu      sync.Mutex
	running bool
	jobs    chan pipeline.Job
	quit    chan struct{}
	runCtx  context.Context
	wg      sync.WaitGroup
}

// New builds a dispatcher with the given pool size. A nil notifier disables
// notifications.
func New(runner Runner, ledger Ledger, notifier notifications.Service, logger *slog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		runner:   runner,
		ledger:   ledger,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "dispatch"),
		workers:  workers,
	}
}

// Start launches the worker pool. Runs use a context detached from ctx's
// cancellation so that shutdown drains in-flight work instead of aborting it.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return errors.New("dispatcher already running")
	}

	d.runCtx = context.WithoutCancel(ctx)
	d.jobs = make(chan pipeline.Job)
	d.quit = make(chan struct{})
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i+1, d.jobs, d.quit, d.runCtx)
	}
	d.running = true
	d.logger.Info("dispatcher started", logging.Int("workers", d.workers))
	return nil
}

// Submit hands a job to the pool. It blocks while all workers are busy, so
// the pool size is the system's only concurrency throttle. Returns ctx.Err()
// when the caller gives up waiting and ErrStopped when shutdown begins first.
func (d *Dispatcher) Submit(ctx context.Context, job pipeline.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	jobs, quit := d.jobs, d.quit
	d.mu.Unlock()

	select {
	case jobs <- job:
		return nil
	case <-quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes intake and waits for every in-flight run to reach its terminal
// outcome. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	quit := d.quit
	d.mu.Unlock()

	close(quit)
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) worker(id int, jobs <-chan pipeline.Job, quit <-chan struct{}, runCtx context.Context) {
	defer d.wg.Done()
	logger := d.logger.With(logging.Int("worker", id))
	for {
		select {
		case <-quit:
			return
		case job := <-jobs:
			d.process(runCtx, logger, job)
		}
	}
}

func (d *Dispatcher) process(runCtx context.Context, logger *slog.Logger, job pipeline.Job) {
	ctx := services.WithRequestID(runCtx, uuid.NewString())
	outcome := d.runner.Run(ctx, job)
	d.observe(ctx, logger, outcome)
}

// observe performs terminal bookkeeping for one outcome. Bookkeeping failures
// are logged, never propagated; the run itself is already over.
func (d *Dispatcher) observe(ctx context.Context, logger *slog.Logger, outcome pipeline.Outcome) {
	entryLogger := logger.With(logging.String(logging.FieldEntryID, outcome.EntryID))

	if outcome.Succeeded {
		if err := d.ledger.MarkSucceeded(ctx, outcome.EntryID, outcome.RecordID, outcome.RecordURL, outcome.ArchiveDir); err != nil {
			entryLogger.Error("record success in catalog", logging.Error(err))
		}
		if d.notifier != nil {
			if err := d.notifier.NotifyEntrySaved(ctx, outcome.UserID, outcome.Title, outcome.RecordURL); err != nil {
				entryLogger.Warn("send saved notification", logging.Error(err))
			}
		}
		return
	}

	detail := ""
	if outcome.Err != nil {
		detail = outcome.Err.Error()
	}
	if err := d.ledger.MarkFailed(ctx, outcome.EntryID, string(outcome.Category), detail, outcome.RecordID, outcome.RecordURL); err != nil {
		entryLogger.Error("record failure in catalog", logging.Error(err))
	}
	if d.notifier != nil {
		if err := d.notifier.NotifyEntryFailed(ctx, outcome.UserID, outcome.UserMessage); err != nil {
			entryLogger.Warn("send failure notification", logging.Error(err))
		}
	}
}
