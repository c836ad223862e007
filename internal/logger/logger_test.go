package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "autopush.log")

	log, closeFn, err := New(Options{File: logFile})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("batch finished", "run", "abc")
	log.Debug("hidden")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "batch finished") || !strings.Contains(content, "run=abc") {
		t.Errorf("log file missing record: %q", content)
	}
	if strings.Contains(content, "hidden") {
		t.Error("debug record should not be written without verbose")
	}
}

func TestNewVerboseWritesToStderr(t *testing.T) {
	var stderr bytes.Buffer

	log, closeFn, err := New(Options{Verbose: true, Stderr: &stderr})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closeFn()

	log.Debug("checking repo", "repo", "/tmp/r1")
	if !strings.Contains(stderr.String(), "repo=/tmp/r1") {
		t.Errorf("stderr = %q, expected debug record", stderr.String())
	}
}

func TestNewWithoutOutputsDiscards(t *testing.T) {
	log, closeFn, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close without file should not fail: %v", err)
	}
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Error("logger without outputs should be disabled")
	}
}

func TestNewFailsOnUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(Options{File: filepath.Join(blocker, "sub", "x.log")}); err == nil {
		t.Error("expected error when log directory cannot be created")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return a non-nil logger unchanged")
	}
}
