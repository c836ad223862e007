package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcdonaldj/autopush/internal/cli"
	"github.com/mcdonaldj/autopush/internal/logger"
	"github.com/mcdonaldj/autopush/internal/tui"
)

// version is set via ldflags at build time: -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	log, closeLog := openLogger(os.Stderr)

	// Handle TUI mode (no args or ui/tui command)
	if len(os.Args) < 2 || os.Args[1] == "ui" || os.Args[1] == "tui" {
		err := tui.Run(log)
		_ = closeLog()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Use CLI for all other commands
	c := cli.New(version)
	c.Logger = log
	c.Exit = func(code int) {
		_ = closeLog()
		os.Exit(code)
	}
	c.Run()
	_ = closeLog()
}

// openLogger logs to ~/.autopush/autopush.log, or only to stderr when that
// file cannot be opened.
func openLogger(stderr io.Writer) (*slog.Logger, func() error) {
	opts := logger.Options{
		Verbose: os.Getenv("AUTOPUSH_VERBOSE") == "1",
		Stderr:  stderr,
	}
	path, err := logger.LogPath()
	if err == nil {
		opts.File = path
		var (
			log      *slog.Logger
			closeLog func() error
		)
		if log, closeLog, err = logger.New(opts); err == nil {
			return log, closeLog
		}
	}
	opts.File = ""
	opts.Verbose = true
	log, closeLog, _ := logger.New(opts)
	log.Warn("log file unavailable, logging to stderr", "error", err)
	return log, closeLog
}
