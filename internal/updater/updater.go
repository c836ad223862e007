// Package updater stages, commits and pushes configured repositories.
//
// Update handles one repository and RunBatch walks a list of them. Neither
// returns an error: every problem is recorded in the Result for the
// repository it belongs to, so one broken checkout never stops the others.
package updater

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcdonaldj/autopush/internal/config"
	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/logger"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// Outcome classifies a Result.
type Outcome int

const (
	Success Outcome = iota
	NoChanges
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "pushed"
	case NoChanges:
		return "no changes"
	case Failure:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of updating one repository.
type Result struct {
	Repo     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Reason returns the failure text, or the outcome name when there is no error.
func (r Result) Reason() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Outcome.String()
}

// Updater runs the stage, commit, push sequence through a GitClient.
type Updater struct {
	git    ports.GitClient
	fs     ports.FileSystem
	remote string
	log    *slog.Logger
}

// Option is a functional option for configuring Updater.
type Option func(*Updater)

// WithRemote sets the remote pushed to. Defaults to "origin".
func WithRemote(remote string) Option {
	return func(u *Updater) {
		if remote != "" {
			u.remote = remote
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *Updater) {
		u.log = logger.OrDiscard(l)
	}
}

// New creates an Updater.
func New(git ports.GitClient, fsys ports.FileSystem, opts ...Option) *Updater {
	u := &Updater{
		git:    git,
		fs:     fsys,
		remote: config.DefaultRemote,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Remote returns the remote pushed to.
func (u *Updater) Remote() string {
	return u.remote
}

// Update stages all changes in path, commits them with message and pushes
// branch. It stops at the first failing step. Nothing is rolled back, so a
// failed push leaves the commit in place for the next run to push.
// An empty branch means config.DefaultBranch.
func (u *Updater) Update(ctx context.Context, path, message, branch string) Result {
	return u.update(ctx, u.log, path, message, branch)
}

func (u *Updater) update(ctx context.Context, log *slog.Logger, path, message, branch string) Result {
	start := time.Now()
	res := Result{Repo: path}
	if branch == "" {
		branch = config.DefaultBranch
	}

	res.Outcome, res.Err = u.steps(ctx, path, message, branch)
	res.Duration = time.Since(start)

	switch res.Outcome {
	case Success:
		log.Info("pushed", "repo", path, "branch", branch, "duration", res.Duration)
	case NoChanges:
		log.Info("nothing to commit", "repo", path)
	default:
		log.Warn("update failed", "repo", path, "error", res.Err)
	}
	return res
}

func (u *Updater) steps(ctx context.Context, path, message, branch string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Failure, errors.Wrap(err, "batch cancelled")
	}

	dir, err := u.checkout(ctx, path)
	if err != nil {
		return Failure, err
	}

	if err := u.git.AddAll(ctx, dir); err != nil {
		return Failure, err
	}

	if err := u.git.Commit(ctx, dir, message); err != nil {
		if errors.Is(err, errors.ErrNothingToCommit) {
			return NoChanges, nil
		}
		return Failure, err
	}

	if err := u.git.Push(ctx, dir, u.remote, branch); err != nil {
		return Failure, err
	}
	return Success, nil
}

// checkout resolves path and verifies it is an existing git working tree.
func (u *Updater) checkout(ctx context.Context, path string) (string, error) {
	dir, err := config.ExpandPath(path)
	if err != nil {
		return "", errors.NewPathError(path, "cannot resolve path", err)
	}

	info, err := u.fs.Stat(dir)
	if err != nil {
		return "", errors.NewPathError(path, "does not exist", err)
	}
	if !info.IsDir() {
		return "", errors.NewPathError(path, "not a directory", nil)
	}
	if !u.git.IsRepo(ctx, dir) {
		return "", errors.NewPathError(path, "not a git checkout", nil)
	}
	return dir, nil
}
