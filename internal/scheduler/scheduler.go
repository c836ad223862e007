// Package scheduler owns the shared configuration and decides when batches run.
//
// A Scheduler is either Idle or Running. Running means one background
// goroutine is executing the periodic loop: a batch, then a wait of one
// interval that ends early when the loop is stopped. Foreground edits to the
// configuration are persisted immediately and picked up by the next
// iteration. Batches never overlap, whether started manually or by the loop.
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcdonaldj/autopush/internal/config"
	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/logger"
	"github.com/mcdonaldj/autopush/internal/ports"
	"github.com/mcdonaldj/autopush/internal/updater"
)

// State is the scheduler's mode.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// ConfigStore loads the configuration and applies edits to it. Update must
// read, apply and write under one lock so edits from other processes survive.
type ConfigStore interface {
	Load() (*config.Config, error)
	Update(fn func(cfg *config.Config) bool) (*config.Config, error)
}

// BatchRunner runs one batch over a repository list.
type BatchRunner interface {
	RunBatch(ctx context.Context, repos []string, message, branch string) []updater.Result
}

// BatchReport describes one finished batch.
type BatchReport struct {
	RunID    string
	Periodic bool
	Started  time.Time
	Finished time.Time
	Results  []updater.Result
}

// Summary counts the report's outcomes.
func (r BatchReport) Summary() updater.Summary {
	return updater.Summarize(r.Results)
}

// Scheduler coordinates manual and periodic batches over a shared Config.
type Scheduler struct {
	store  ConfigStore
	runner BatchRunner
	fs     ports.FileSystem
	log    *slog.Logger

	mu     sync.Mutex
	cfg    *config.Config
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	hook   func(BatchReport)

	// batchMu serializes batches so two never touch a repository at once.
	batchMu sync.Mutex
}

// Option is a functional option for configuring Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.log = logger.OrDiscard(l)
	}
}

// New loads the configuration from store and returns an Idle scheduler.
func New(store ConfigStore, runner BatchRunner, fsys ports.FileSystem, opts ...Option) (*Scheduler, error) {
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		store:  store,
		runner: runner,
		fs:     fsys,
		log:    logger.Discard(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetBatchHook registers fn to receive a report after every batch.
// fn runs on the goroutine that ran the batch.
func (s *Scheduler) SetBatchHook(fn func(BatchReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// State returns the current mode.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current configuration.
func (s *Scheduler) Snapshot() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Repos returns the configured repositories in order.
func (s *Scheduler) Repos() []string {
	return s.Snapshot().Repos
}

// CommitMessage returns the configured commit message.
func (s *Scheduler) CommitMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.CommitMessage
}

// Reload replaces the in-memory configuration with the stored one.
func (s *Scheduler) Reload() error {
	cfg, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// AddRepo normalizes path, checks that it is a directory and appends it.
// It returns false when the repository is already configured.
func (s *Scheduler) AddRepo(path string) (bool, error) {
	norm, err := config.NormalizePath(path)
	if err != nil {
		return false, errors.NewPathError(path, "cannot resolve path", err)
	}
	info, err := s.fs.Stat(norm)
	if err != nil {
		return false, errors.NewPathError(norm, "does not exist", err)
	}
	if !info.IsDir() {
		return false, errors.NewPathError(norm, "not a directory", nil)
	}

	added := false
	err = s.mutate(func(cfg *config.Config) bool {
		added = cfg.AddRepo(norm)
		return added
	})
	if err != nil {
		return false, err
	}
	if added {
		s.log.Info("repository added", "repo", norm)
	}
	return added, nil
}

// RemoveRepo removes path, matching it as given or in normalized form.
// It returns false when the repository is not configured.
func (s *Scheduler) RemoveRepo(path string) (bool, error) {
	norm, normErr := config.NormalizePath(path)

	removed := false
	err := s.mutate(func(cfg *config.Config) bool {
		removed = cfg.RemoveRepo(path)
		if !removed && normErr == nil {
			removed = cfg.RemoveRepo(norm)
		}
		return removed
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Info("repository removed", "repo", path)
	}
	return removed, nil
}

// SetCommitMessage changes the commit message used by subsequent batches.
func (s *Scheduler) SetCommitMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.Wrap(errors.ErrInvalidConfiguration, "commit message is empty")
	}
	return s.mutate(func(cfg *config.Config) bool {
		if cfg.CommitMessage == message {
			return false
		}
		cfg.CommitMessage = message
		return true
	})
}

// mutate applies fn to the stored document and adopts the result. The
// in-memory configuration is left untouched when the store fails.
func (s *Scheduler) mutate(fn func(cfg *config.Config) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.store.Update(fn)
	if err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// RunOnce persists the current commit message onto the stored document and
// runs one batch over the result synchronously. It is refused while periodic
// mode is running or when the configuration is invalid.
func (s *Scheduler) RunOnce(ctx context.Context) (BatchReport, error) {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return BatchReport{}, errors.ErrAlreadyRunning
	}
	message := s.cfg.CommitMessage
	cfg, err := s.store.Update(func(c *config.Config) bool {
		if c.CommitMessage == message {
			return false
		}
		c.CommitMessage = message
		return true
	})
	if err == nil {
		s.cfg = cfg
		cfg = cfg.Clone()
		err = cfg.Validate()
	}
	s.mu.Unlock()
	if err != nil {
		return BatchReport{}, err
	}
	return s.runBatch(ctx, cfg, false), nil
}

// StartPeriodic enters periodic mode. A non-positive interval uses the
// configured one. Calling it while Running returns ErrAlreadyRunning and
// leaves the existing loop alone.
func (s *Scheduler) StartPeriodic(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return errors.ErrAlreadyRunning
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if interval <= 0 {
		interval, _ = s.cfg.IntervalDuration()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.state = Running
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, interval, done)
	s.log.Info("periodic mode started", "interval", interval)
	return nil
}

// StopPeriodic leaves periodic mode. It blocks until the loop goroutine has
// exited, which includes letting an in-flight batch finish.
func (s *Scheduler) StopPeriodic() error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return errors.ErrNotRunning
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	if s.done == done {
		s.state = Idle
		s.cancel = nil
		s.done = nil
	}
	s.mu.Unlock()
	s.log.Info("periodic mode stopped")
	return nil
}

// Close stops periodic mode if it is running.
func (s *Scheduler) Close() error {
	if err := s.StopPeriodic(); err != nil && !errors.Is(err, errors.ErrNotRunning) {
		return err
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	for {
		// The batch itself is not cancelled: killing git mid-push helps nobody.
		if cfg := s.refresh(); cfg != nil {
			s.runBatch(context.WithoutCancel(ctx), cfg, true)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// refresh re-reads the stored configuration so edits made by other processes
// reach the loop. The in-memory copy is used when the store is unreadable.
// It returns nil when the configuration is invalid and the batch must be
// skipped.
func (s *Scheduler) refresh() *config.Config {
	cfg, err := s.store.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("reloading configuration failed, using last known", "error", err)
	} else {
		s.cfg = cfg
	}
	if err := s.cfg.Validate(); err != nil {
		s.log.Warn("skipping batch", "error", err)
		return nil
	}
	return s.cfg.Clone()
}

func (s *Scheduler) runBatch(ctx context.Context, cfg *config.Config, periodic bool) BatchReport {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	report := BatchReport{
		RunID:    uuid.NewString(),
		Periodic: periodic,
		Started:  time.Now(),
	}
	report.Results = s.runner.RunBatch(updater.WithRunID(ctx, report.RunID), cfg.Repos, cfg.CommitMessage, cfg.Branch)
	report.Finished = time.Now()

	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook(report)
	}
	return report
}
