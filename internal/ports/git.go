package ports

import "context"

// GitClient abstracts the git commands autopush runs for testability.
// Production code uses ExecGitClient adapter; tests use MockGitClient.
// Every command runs with repoPath as its working directory.
type GitClient interface {
	// IsRepo checks if the given path is inside a git working tree.
	IsRepo(ctx context.Context, path string) bool

	// AddAll stages all working-tree changes, deletions included.
	AddAll(ctx context.Context, repoPath string) error

	// Commit commits the staged changes with message.
	// Returns an error matching errors.ErrNothingToCommit when there is nothing staged.
	Commit(ctx context.Context, repoPath, message string) error

	// Push pushes branch to remote.
	Push(ctx context.Context, repoPath, remote, branch string) error
}
