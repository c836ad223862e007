// Package maclaunchd provides a launchd service adapter for macOS.
//
// The installed agent starts at login and keeps `autopush watch` alive, so
// periodic mode survives logouts and crashes without a terminal attached.
package maclaunchd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
	"time"

	"github.com/mcdonaldj/autopush/internal/config"
	"github.com/mcdonaldj/autopush/internal/ports"
)

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.BinaryPath}}</string>
        <string>watch</string>
        <string>--interval={{.Interval}}</string>
    </array>
{{- if .ConfigPath}}
    <key>EnvironmentVariables</key>
    <dict>
        <key>{{.ConfigEnv}}</key>
        <string>{{.ConfigPath}}</string>
    </dict>
{{- end}}
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
</dict>
</plist>
`

const serviceLabel = "com.user.autopush"

var tmpl = template.Must(template.New("plist").Parse(plistTemplate))

type plistConfig struct {
	Label      string
	BinaryPath string
	Interval   string
	ConfigEnv  string
	ConfigPath string
	LogPath    string
}

// MacLaunchdService implements ports.LaunchdService for macOS.
type MacLaunchdService struct {
	homeDir   string
	launchctl func(args ...string) error
}

// New creates a new MacLaunchdService adapter.
func New() *MacLaunchdService {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &MacLaunchdService{homeDir: home, launchctl: runLaunchctl}
}

func runLaunchctl(args ...string) error {
	return exec.Command("launchctl", args...).Run()
}

// PlistPath returns the path where the plist file should be stored.
func (s *MacLaunchdService) PlistPath() string {
	return filepath.Join(s.homeDir, "Library", "LaunchAgents", serviceLabel+".plist")
}

// LogPath returns the path where the agent's output is written.
func (s *MacLaunchdService) LogPath() string {
	return filepath.Join(s.homeDir, ".autopush", "autopush.log")
}

// Install creates the plist file and loads the service.
// An empty configPath leaves the agent on the default configuration.
func (s *MacLaunchdService) Install(execPath, configPath string, interval time.Duration) error {
	binaryPath := execPath
	if binaryPath == "" {
		var err error
		binaryPath, err = exec.LookPath("autopush")
		if err != nil {
			return fmt.Errorf("autopush not found in PATH: %w", err)
		}
	}
	if interval <= 0 {
		interval = config.DefaultInterval
	}

	logPath := s.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	plistPath := s.PlistPath()
	if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
		return fmt.Errorf("creating LaunchAgents directory: %w", err)
	}

	f, err := os.Create(plistPath)
	if err != nil {
		return fmt.Errorf("creating plist: %w", err)
	}
	err = writePlist(f, plistConfig{
		Label:      serviceLabel,
		BinaryPath: binaryPath,
		Interval:   interval.String(),
		ConfigEnv:  config.EnvConfigPath,
		ConfigPath: configPath,
		LogPath:    logPath,
	})
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("writing plist: %w", err)
	}

	// Close file BEFORE loading to ensure data is flushed
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing plist file: %w", err)
	}

	if err := s.launchctl("load", plistPath); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	return nil
}

func writePlist(w io.Writer, cfg plistConfig) error {
	return tmpl.Execute(w, cfg)
}

// Uninstall unloads the service and removes the plist file.
func (s *MacLaunchdService) Uninstall() error {
	plistPath := s.PlistPath()

	if _, err := os.Stat(plistPath); os.IsNotExist(err) {
		return fmt.Errorf("plist not found: %s", plistPath)
	}

	_ = s.launchctl("unload", plistPath) // Ignore error if not loaded

	if err := os.Remove(plistPath); err != nil {
		return fmt.Errorf("removing plist: %w", err)
	}
	return nil
}

// IsInstalled checks if the service is currently installed.
func (s *MacLaunchdService) IsInstalled() bool {
	_, err := os.Stat(s.PlistPath())
	return err == nil
}

// Status returns "not installed", "loaded" or "not loaded".
func (s *MacLaunchdService) Status() string {
	if !s.IsInstalled() {
		return "not installed"
	}
	if err := s.launchctl("list", serviceLabel); err != nil {
		return "not loaded"
	}
	return "loaded"
}

// Compile-time check that MacLaunchdService implements ports.LaunchdService.
var _ ports.LaunchdService = (*MacLaunchdService)(nil)
