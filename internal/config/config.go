package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mcdonaldj/autopush/internal/errors"
)

const (
	DefaultCommitMessage = "Automated commit"
	DefaultBranch        = "main"
	DefaultRemote        = "origin"
	DefaultInterval      = 30 * time.Minute

	// EnvConfigPath overrides the location of the configuration document.
	EnvConfigPath = "AUTOPUSH_CONFIG"
)

type Config struct {
	Repos         []string `yaml:"repos"`
	CommitMessage string   `yaml:"commit_message"`
	Branch        string   `yaml:"branch,omitempty"`
	Remote        string   `yaml:"remote,omitempty"`
	Interval      string   `yaml:"interval,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Repos:         []string{},
		CommitMessage: DefaultCommitMessage,
		Branch:        DefaultBranch,
		Remote:        DefaultRemote,
		Interval:      DefaultInterval.String(),
	}
}

// ConfigDir returns ~/.autopush.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	return filepath.Join(home, ".autopush"), nil
}

// ConfigPath returns $AUTOPUSH_CONFIG, or ~/.autopush/config.yaml when unset.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandPath(p)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "expanding ~")
	}
	return filepath.Join(home, path[1:]), nil
}

// NormalizePath expands ~ and returns the cleaned absolute form of path.
func NormalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.Wrap(errors.ErrInvalidPath, "empty path")
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// AddRepo appends path unless it is already present.
func (c *Config) AddRepo(path string) bool {
	if slices.Contains(c.Repos, path) {
		return false
	}
	c.Repos = append(c.Repos, path)
	return true
}

// RemoveRepo deletes path, reporting whether it was present.
func (c *Config) RemoveRepo(path string) bool {
	i := slices.Index(c.Repos, path)
	if i < 0 {
		return false
	}
	c.Repos = slices.Delete(c.Repos, i, i+1)
	return true
}

// IntervalDuration parses Interval, defaulting to DefaultInterval when empty.
func (c *Config) IntervalDuration() (time.Duration, error) {
	if c.Interval == "" {
		return DefaultInterval, nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidConfiguration, "interval %q", c.Interval)
	}
	if d <= 0 {
		return 0, errors.Wrapf(errors.ErrInvalidConfiguration, "interval %q must be positive", c.Interval)
	}
	return d, nil
}

// Validate checks the fields that a batch depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CommitMessage) == "" {
		return errors.Wrap(errors.ErrInvalidConfiguration, "commit_message is empty")
	}
	if _, err := c.IntervalDuration(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Repos))
	for _, r := range c.Repos {
		if seen[r] {
			return errors.Wrapf(errors.ErrInvalidConfiguration, "duplicate repository %q", r)
		}
		seen[r] = true
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Repos = slices.Clone(c.Repos)
	if cp.Repos == nil {
		cp.Repos = []string{}
	}
	return &cp
}

// normalize fills omitted optional fields and drops repeated repositories,
// keeping the first occurrence.
func (c *Config) normalize() {
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.Remote == "" {
		c.Remote = DefaultRemote
	}
	if c.Interval == "" {
		c.Interval = DefaultInterval.String()
	}
	repos := make([]string, 0, len(c.Repos))
	for _, r := range c.Repos {
		if r == "" || slices.Contains(repos, r) {
			continue
		}
		repos = append(repos, r)
	}
	c.Repos = repos
}
