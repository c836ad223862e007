package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, "wrapped message")

	if !Is(wrappedErr, originalErr) {
		t.Errorf("Expected wrapped error to match original, but it didn't")
	}

	expectedMsg := "wrapped message: original error"
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, wrappedErr.Error())
	}
}

func TestWrapf(t *testing.T) {
	wrappedErr := Wrapf(ErrInvalidConfiguration, "interval %q", "soon")

	if !Is(wrappedErr, ErrInvalidConfiguration) {
		t.Errorf("Expected wrapped error to match sentinel")
	}

	expectedMsg := `interval "soon": invalid configuration`
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, wrappedErr.Error())
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("permission denied")
	configErr := NewConfigError("save", "/home/u/.autopush/config.yaml", cause)

	expectedMsg := "config save /home/u/.autopush/config.yaml: permission denied"
	if configErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, configErr.Error())
	}
	if !errors.Is(configErr, ErrConfigIO) {
		t.Errorf("Expected ConfigError to match ErrConfigIO")
	}
	if !errors.Is(configErr, cause) {
		t.Errorf("Expected ConfigError to unwrap to its cause")
	}

	var target *ConfigError
	if !As(Wrap(configErr, "outer"), &target) || target.Op != "save" {
		t.Errorf("Expected As to find the ConfigError through a wrap")
	}
}

func TestPathError(t *testing.T) {
	tests := []struct {
		name     string
		err      *PathError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewPathError("/tmp/r2", "not a directory", nil),
			expected: "/tmp/r2: not a directory",
		},
		{
			name:     "with cause",
			err:      NewPathError("/tmp/r2", "does not exist", errors.New("stat failed")),
			expected: "/tmp/r2: does not exist: stat failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected message %q, got %q", tt.expected, tt.err.Error())
			}
			if !errors.Is(tt.err, ErrInvalidPath) {
				t.Errorf("Expected PathError to match ErrInvalidPath")
			}
		})
	}
}

func TestGitError(t *testing.T) {
	err := errors.New("exit status 1")
	gitErr := NewGitError("push", []string{"origin", "main"}, err, "rejected\n")

	expectedMsg := "git push failed: rejected: exit status 1"
	if gitErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, gitErr.Error())
	}

	if !errors.Is(gitErr, err) {
		t.Errorf("Expected GitError.Unwrap() to return the original error")
	}
	if !errors.Is(gitErr, ErrGitCommandFailed) {
		t.Errorf("Expected GitError to match ErrGitCommandFailed")
	}

	bare := NewGitError("add", nil, nil, "")
	if bare.Error() != "git add failed" {
		t.Errorf("Expected %q, got %q", "git add failed", bare.Error())
	}
	if !errors.Is(bare, ErrGitCommandFailed) {
		t.Errorf("Expected bare GitError to match ErrGitCommandFailed")
	}
}

func TestNothingToCommitIsGitFailure(t *testing.T) {
	err := NewGitError("commit", []string{"-m", "x"}, ErrNothingToCommit, "nothing to commit")

	if !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("Expected match on ErrNothingToCommit")
	}
	if !errors.Is(err, ErrGitCommandFailed) {
		t.Errorf("Expected match on ErrGitCommandFailed")
	}
}
