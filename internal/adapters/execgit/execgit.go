// Package execgit provides a git client adapter using exec.Command.
package execgit

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// ExecGitClient implements ports.GitClient using exec.Command.
type ExecGitClient struct {
	// gitPath is the path to the git binary. Defaults to "git".
	gitPath string
}

// Option is a functional option for configuring ExecGitClient.
type Option func(*ExecGitClient)

// WithGitPath sets a custom path to the git binary.
func WithGitPath(path string) Option {
	return func(g *ExecGitClient) {
		g.gitPath = path
	}
}

// New creates a new ExecGitClient adapter.
func New(opts ...Option) *ExecGitClient {
	g := &ExecGitClient{
		gitPath: "git",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsRepo checks if the given path is inside a git working tree.
func (g *ExecGitClient) IsRepo(ctx context.Context, path string) bool {
	out, err := g.command(ctx, path, "rev-parse", "--is-inside-work-tree").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// AddAll runs `git add --all`.
func (g *ExecGitClient) AddAll(ctx context.Context, repoPath string) error {
	_, err := g.run(ctx, repoPath, "add", "--all")
	return err
}

// Commit runs `git commit -m message`.
func (g *ExecGitClient) Commit(ctx context.Context, repoPath, message string) error {
	args := []string{"commit", "-m", message}
	out, err := g.run(ctx, repoPath, args...)
	if err != nil && nothingToCommit(out) {
		return errors.NewGitError("commit", args[1:], errors.ErrNothingToCommit, out)
	}
	return err
}

// Push runs `git push remote branch`.
func (g *ExecGitClient) Push(ctx context.Context, repoPath, remote, branch string) error {
	_, err := g.run(ctx, repoPath, "push", remote, branch)
	return err
}

// command builds a git invocation in dir. Output is forced to the C locale so
// messages can be matched, and git never prompts since nobody is there to answer.
func (g *ExecGitClient) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0")
	return cmd
}

// run executes git and returns its combined output. Failures are wrapped in
// a GitError that carries the output.
func (g *ExecGitClient) run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := g.command(ctx, dir, args...).CombinedOutput()
	if err != nil {
		return string(out), errors.NewGitError(args[0], args[1:], err, string(out))
	}
	return string(out), nil
}

func nothingToCommit(out string) bool {
	return strings.Contains(out, "nothing to commit") ||
		strings.Contains(out, "nothing added to commit") ||
		strings.Contains(out, "no changes added to commit")
}

// Compile-time check that ExecGitClient implements ports.GitClient.
var _ ports.GitClient = (*ExecGitClient)(nil)
