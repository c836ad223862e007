// Package logger builds the structured logger shared by autopush components.
//
// Diagnostics go to a log file (and to stderr in verbose mode) through
// log/slog. Messages meant for the user are not logged here: the CLI and TUI
// render those themselves.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options controls where log records are written.
type Options struct {
	// File is the log file path. Empty disables file logging.
	File string
	// Verbose also writes records to Stderr, at debug level.
	Verbose bool
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// New creates a logger from opts. The returned close function flushes and
// closes the log file, and is safe to call when no file was opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var writers []io.Writer
	closeFn := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, closeFn, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	level := slog.LevelInfo
	if opts.Verbose {
		writers = append(writers, stderr)
		level = slog.LevelDebug
	}

	if len(writers) == 0 {
		return Discard(), closeFn, nil
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// LogPath returns ~/.autopush/autopush.log.
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".autopush", "autopush.log"), nil
}
