package maclaunchd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type launchctlCall []string

func newTestService(t *testing.T) (*MacLaunchdService, *[]launchctlCall) {
	t.Helper()
	calls := &[]launchctlCall{}
	s := &MacLaunchdService{
		homeDir: t.TempDir(),
		launchctl: func(args ...string) error {
			*calls = append(*calls, args)
			return nil
		},
	}
	return s, calls
}

func TestPaths(t *testing.T) {
	s := &MacLaunchdService{homeDir: "/Users/test"}

	if got := s.PlistPath(); got != "/Users/test/Library/LaunchAgents/com.user.autopush.plist" {
		t.Errorf("PlistPath = %q", got)
	}
	if got := s.LogPath(); got != "/Users/test/.autopush/autopush.log" {
		t.Errorf("LogPath = %q", got)
	}
}

func TestInstall(t *testing.T) {
	s, calls := newTestService(t)

	if err := s.Install("/usr/local/bin/autopush", "/etc/autopush.yaml", 15*time.Minute); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	data, err := os.ReadFile(s.PlistPath())
	if err != nil {
		t.Fatalf("plist not written: %v", err)
	}
	plist := string(data)
	for _, want := range []string{
		"<string>com.user.autopush</string>",
		"<string>/usr/local/bin/autopush</string>",
		"<string>watch</string>",
		"<string>--interval=15m0s</string>",
		"<key>AUTOPUSH_CONFIG</key>",
		"<string>/etc/autopush.yaml</string>",
		"<key>KeepAlive</key>",
		"<string>" + s.LogPath() + "</string>",
	} {
		if !strings.Contains(plist, want) {
			t.Errorf("plist missing %q:\n%s", want, plist)
		}
	}

	if _, err := os.Stat(filepath.Dir(s.LogPath())); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0][0] != "load" {
		t.Errorf("launchctl calls = %v, expected one load", *calls)
	}
	if !s.IsInstalled() {
		t.Error("IsInstalled = false after Install")
	}
}

func TestInstallDefaults(t *testing.T) {
	s, _ := newTestService(t)

	if err := s.Install("/bin/autopush", "", 0); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	data, _ := os.ReadFile(s.PlistPath())
	plist := string(data)
	if !strings.Contains(plist, "--interval=30m0s") {
		t.Errorf("expected default interval in plist:\n%s", plist)
	}
	if strings.Contains(plist, "EnvironmentVariables") {
		t.Errorf("no config override expected:\n%s", plist)
	}
}

func TestInstallLoadFailure(t *testing.T) {
	s, _ := newTestService(t)
	s.launchctl = func(args ...string) error { return errors.New("exit status 5") }

	err := s.Install("/bin/autopush", "", time.Minute)
	if err == nil || !strings.Contains(err.Error(), "loading plist") {
		t.Errorf("Install error = %v, expected load failure", err)
	}
}

func TestUninstall(t *testing.T) {
	s, calls := newTestService(t)

	if err := s.Uninstall(); err == nil {
		t.Error("Uninstall should fail when not installed")
	}

	if err := s.Install("/bin/autopush", "", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Uninstall(); err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if s.IsInstalled() {
		t.Error("IsInstalled = true after Uninstall")
	}
	if last := (*calls)[len(*calls)-1]; last[0] != "unload" {
		t.Errorf("last launchctl call = %v, expected unload", last)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestService(t)

	if got := s.Status(); got != "not installed" {
		t.Errorf("Status = %q, expected not installed", got)
	}

	if err := s.Install("/bin/autopush", "", time.Minute); err != nil {
		t.Fatal(err)
	}
	if got := s.Status(); got != "loaded" {
		t.Errorf("Status = %q, expected loaded", got)
	}

	s.launchctl = func(args ...string) error { return errors.New("not found") }
	if got := s.Status(); got != "not loaded" {
		t.Errorf("Status = %q, expected not loaded", got)
	}
}
