package ports

import (
	"context"
	"time"
)

// TUIRepoResult is the outcome of updating one repository, for display.
type TUIRepoResult struct {
	Repo    string
	Outcome string // "pushed", "no changes" or "failed"
	Err     error
}

// TUIBatchReport describes one finished batch.
type TUIBatchReport struct {
	RunID    string
	Periodic bool
	Finished time.Time
	Results  []TUIRepoResult
}

// TUIService provides operations needed by the TUI.
// This abstraction allows the TUI to be tested without running git.
type TUIService interface {
	// Repos returns the configured repositories in order.
	Repos() []string

	// CommitMessage returns the configured commit message.
	CommitMessage() string

	// AddRepo adds a repository. Returns false if it was already configured.
	AddRepo(path string) (bool, error)

	// RemoveRepo removes a repository. Returns false if it was not configured.
	RemoveRepo(path string) (bool, error)

	// SetCommitMessage changes and persists the commit message.
	SetCommitMessage(message string) error

	// RunNow runs one batch synchronously.
	RunNow(ctx context.Context) (TUIBatchReport, error)

	// StartPeriodic enters periodic mode.
	StartPeriodic() error

	// StopPeriodic leaves periodic mode, waiting for the loop to exit.
	StopPeriodic() error

	// Periodic reports whether periodic mode is active.
	Periodic() bool

	// Reports delivers reports of batches run by periodic mode.
	Reports() <-chan TUIBatchReport
}
