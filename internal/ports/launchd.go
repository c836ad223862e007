package ports

import "time"

// LaunchdService abstracts macOS launchd operations for testability.
// Production code uses MacLaunchdService adapter; tests use MockLaunchdService.
type LaunchdService interface {
	// PlistPath returns the path where the plist file should be stored.
	PlistPath() string

	// LogPath returns the path where the agent's output is written.
	LogPath() string

	// Install writes the plist for an agent running `autopush watch` at login
	// and loads it.
	Install(execPath, configPath string, interval time.Duration) error

	// Uninstall unloads the service and removes the plist file.
	Uninstall() error

	// IsInstalled checks if the service is currently installed.
	IsInstalled() bool

	// Status returns "not installed", "loaded" or "not loaded".
	Status() string
}
