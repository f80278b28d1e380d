package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/dispatch"
	"quill/internal/ingest"
	"quill/internal/logging"
	"quill/internal/preflight"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *catalog.Store
	dispatcher *dispatch.Dispatcher
	watcher    *ingest.Watcher
	health     preflight.StoreHealthChecker

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Catalog       catalog.Summary
	CatalogDBPath string
	LockFilePath  string
}

// New constructs a daemon with initialized dependencies. The health checker
// is consulted during preflight and may be nil only in tests that bypass
// Start.
func New(cfg *config.Config, store *catalog.Store, dispatcher *dispatch.Dispatcher, watcher *ingest.Watcher, health preflight.StoreHealthChecker, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || dispatcher == nil || watcher == nil || logger == nil {
		return nil, errors.New("daemon requires config, catalog, dispatcher, watcher, and logger")
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		dispatcher: dispatcher,
		watcher:    watcher,
		health:     health,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, verifies readiness, recovers entries a
// previous run left in flight, and launches processing and intake.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quill daemon instance is already running")
	}

	if err := d.runPreflight(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	abandoned, err := d.store.FailAbandoned(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("recover catalog: %w", err)
	}
	if abandoned > 0 {
		d.logger.Warn("marked abandoned entries as failed", logging.Int64("count", abandoned))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.dispatcher.Start(d.ctx); err != nil {
		d.teardownAfterStartFailure()
		return fmt.Errorf("start dispatcher: %w", err)
	}
	if err := d.watcher.Start(d.ctx); err != nil {
		d.dispatcher.Stop()
		d.teardownAfterStartFailure()
		return fmt.Errorf("start inbox watcher: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("quill daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) teardownAfterStartFailure() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	_ = d.lock.Unlock()
}

// runPreflight executes startup checks and fails fast when any check fails.
func (d *Daemon) runPreflight(ctx context.Context) error {
	results := preflight.RunAll(ctx, d.cfg, d.health)
	for _, result := range results {
		if result.Passed {
			d.logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		d.logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
	if failed := preflight.Failures(results); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Name)
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
	}
	return nil
}

// Stop halts intake first, waits for in-flight runs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.watcher.Stop()
	d.dispatcher.Stop()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("quill daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports a snapshot of daemon state and catalog counts.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	summary, err := d.store.Stats(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("catalog stats: %w", err)
	}
	return Status{
		Running:       d.running.Load(),
		Catalog:       summary,
		CatalogDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}, nil
}

// RecentEntries returns the most recently updated catalog entries.
func (d *Daemon) RecentEntries(ctx context.Context, limit int) ([]*catalog.Entry, error) {
	return d.store.Recent(ctx, limit)
}
