package mocks

import (
	"context"
	"sync"

	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// GitCall records one command issued through MockGitClient.
type GitCall struct {
	Op      string // "add", "commit" or "push"
	Repo    string
	Message string
	Remote  string
	Branch  string
}

// MockGitClient implements ports.GitClient for testing.
type MockGitClient struct {
	mu sync.Mutex

	// Repos maps paths to whether they are git repos
	Repos map[string]bool
	// AddErrors, CommitErrors and PushErrors map repo paths to the error
	// the corresponding command returns.
	AddErrors    map[string]error
	CommitErrors map[string]error
	PushErrors   map[string]error
	// Calls records every command in order.
	Calls []GitCall
	// OnCommand, when set, runs at the start of every command.
	OnCommand func(call GitCall)
}

// NewMockGitClient creates a new mock git client.
func NewMockGitClient() *MockGitClient {
	return &MockGitClient{
		Repos:        make(map[string]bool),
		AddErrors:    make(map[string]error),
		CommitErrors: make(map[string]error),
		PushErrors:   make(map[string]error),
	}
}

// NothingToCommit returns the error a real client reports for a clean tree.
func NothingToCommit() error {
	return errors.NewGitError("commit", nil, errors.ErrNothingToCommit, "nothing to commit, working tree clean")
}

// IsRepo checks if the given path is a git repository.
func (m *MockGitClient) IsRepo(ctx context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Repos[path]
}

// AddAll stages all working-tree changes.
func (m *MockGitClient) AddAll(ctx context.Context, repoPath string) error {
	return m.record(GitCall{Op: "add", Repo: repoPath}, m.AddErrors)
}

// Commit commits the staged changes with message.
func (m *MockGitClient) Commit(ctx context.Context, repoPath, message string) error {
	return m.record(GitCall{Op: "commit", Repo: repoPath, Message: message}, m.CommitErrors)
}

// Push pushes branch to remote.
func (m *MockGitClient) Push(ctx context.Context, repoPath, remote, branch string) error {
	return m.record(GitCall{Op: "push", Repo: repoPath, Remote: remote, Branch: branch}, m.PushErrors)
}

// CallsFor returns the operations issued against repoPath, in order.
func (m *MockGitClient) CallsFor(repoPath string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ops []string
	for _, c := range m.Calls {
		if c.Repo == repoPath {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

func (m *MockGitClient) record(call GitCall, errs map[string]error) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	hook := m.OnCommand
	err := errs[call.Repo]
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return err
}

// Compile-time check that MockGitClient implements ports.GitClient.
var _ ports.GitClient = (*MockGitClient)(nil)
