// Package errors defines the error taxonomy shared by autopush packages.
//
// Configuration storage problems, invalid repository paths and failed git
// commands each have a sentinel for errors.Is checks and a typed error that
// carries the details a user needs to act on the failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrConfigIO indicates the configuration document could not be read or written
	ErrConfigIO = errors.New("configuration storage failure")

	// ErrInvalidPath indicates a repository path is missing or not a git checkout
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrGitCommandFailed indicates a git command exited nonzero
	ErrGitCommandFailed = errors.New("git command failed")

	// ErrNothingToCommit indicates git commit found no staged changes
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrAlreadyRunning indicates periodic mode is already active
	ErrAlreadyRunning = errors.New("periodic mode is already running")

	// ErrNotRunning indicates periodic mode is not active
	ErrNotRunning = errors.New("periodic mode is not running")

	// ErrInvalidConfiguration indicates an invalid configuration value
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// ConfigError reports a failure to load or save the configuration document.
type ConfigError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfigIO, e.Err}
}

// NewConfigError creates a ConfigError for the given operation and path.
func NewConfigError(op, path string, err error) *ConfigError {
	return &ConfigError{Op: op, Path: path, Err: err}
}

// PathError reports a repository path that cannot be updated.
type PathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PathError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidPath}
	}
	return []error{ErrInvalidPath, e.Err}
}

// NewPathError creates a PathError.
func NewPathError(path, reason string, err error) *PathError {
	return &PathError{Path: path, Reason: reason, Err: err}
}

// GitError represents a git command that exited with an error.
// Output holds what git printed, which is usually the only useful diagnostic.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface with a detailed, user-friendly error message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGitCommandFailed}
	}
	return []error{ErrGitCommandFailed, e.Err}
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}
