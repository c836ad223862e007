// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/mcdonaldj/autopush/internal/adapters/maclaunchd"
	"github.com/mcdonaldj/autopush/internal/adapters/osfs"
	"github.com/mcdonaldj/autopush/internal/app"
	"github.com/mcdonaldj/autopush/internal/config"
	"github.com/mcdonaldj/autopush/internal/ports"
	"github.com/mcdonaldj/autopush/internal/scheduler"
	"github.com/mcdonaldj/autopush/internal/updater"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	ConfigPath() (string, error)
	Exists() bool
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// SchedulerService is the part of scheduler.Scheduler the CLI drives.
type SchedulerService interface {
	Snapshot() *config.Config
	AddRepo(path string) (bool, error)
	RemoveRepo(path string) (bool, error)
	SetCommitMessage(message string) error
	RunOnce(ctx context.Context) (scheduler.BatchReport, error)
	StartPeriodic(interval time.Duration) error
	StopPeriodic() error
	SetBatchHook(fn func(scheduler.BatchReport))
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Context bounds blocking commands. watch also stops on SIGINT/SIGTERM.
	Context context.Context

	Logger *slog.Logger

	// Injectable dependencies (nil means use defaults)
	ConfigSvc    ConfigService
	SchedulerSvc SchedulerService
	LaunchdSvc   ports.LaunchdService

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	exitCode := 0
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) { exitCode = code; _ = exitCode },
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService reads and writes the document at config.ConfigPath().
type defaultConfigService struct {
	fs ports.FileSystem
}

func (d *defaultConfigService) ConfigPath() (string, error) { return config.ConfigPath() }

func (d *defaultConfigService) Exists() bool {
	path, err := config.ConfigPath()
	if err != nil {
		return false
	}
	_, err = d.fs.Stat(path)
	return err == nil
}

func (d *defaultConfigService) Load() (*config.Config, error) {
	store, err := d.store()
	if err != nil {
		return nil, err
	}
	return store.Load()
}

func (d *defaultConfigService) Save(cfg *config.Config) error {
	store, err := d.store()
	if err != nil {
		return err
	}
	return store.Save(cfg)
}

func (d *defaultConfigService) store() (*config.Store, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path, d.fs), nil
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{fs: osfs.New()}
}

func (c *CLI) launchdSvc() ports.LaunchdService {
	if c.LaunchdSvc != nil {
		return c.LaunchdSvc
	}
	return maclaunchd.New()
}

// schedulerSvc opens the default scheduler on first use and reports load
// failures to the user.
func (c *CLI) schedulerSvc() (SchedulerService, bool) {
	if c.SchedulerSvc != nil {
		return c.SchedulerSvc, true
	}
	path, err := c.configSvc().ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return nil, false
	}
	sched, err := app.Open(app.Options{ConfigPath: path, Logger: c.Logger})
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return nil, false
	}
	c.SchedulerSvc = sched
	return sched, true
}

func (c *CLI) context() context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		// No command - would launch TUI, but we skip that for CLI testing
		fmt.Fprintln(c.Out, "No command specified. Use 'autopush help' for usage.")
		return
	}

	switch c.Args[1] {
	case "run":
		c.RunPush()
	case "add":
		c.AddRepos()
	case "remove", "rm":
		c.RemoveRepos()
	case "list", "ls":
		c.ListRepos()
	case "message":
		c.CommitMessage()
	case "watch":
		c.Watch()
	case "init":
		c.InitConfig()
	case "install":
		c.InstallLaunchd()
	case "uninstall":
		c.UninstallLaunchd()
	case "status":
		c.ShowStatus()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "autopush v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.Args[1])
		c.PrintUsage()
		c.Exit(1)
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `autopush - Stage, commit and push a list of git repositories

Usage:
  autopush                                 Launch interactive TUI
  autopush ui                              Launch interactive TUI
  autopush run                             Commit and push every configured repository once
  autopush add <path> [path...]            Add repositories
  autopush remove <path> [path...]         Remove repositories
  autopush list                            List repositories and the commit message
  autopush message [text]                  Show or set the commit message
  autopush watch [--interval=30m]          Push on an interval until interrupted
  autopush install                         Install launchd agent running 'autopush watch'
  autopush uninstall                       Remove launchd agent
  autopush status                          Show configuration and launchd status
  autopush init [--force]                  Create default config file
  autopush version, -v                     Show version
  autopush help, -h                        Show this help

Config: ~/.autopush/config.yaml (override with AUTOPUSH_CONFIG)`)
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	path, err := svc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	force := len(c.Args) > 2 && c.Args[2] == "--force"
	if svc.Exists() && !force {
		fmt.Fprintf(c.Out, "Config already exists at %s (use --force to overwrite)\n", path)
		return
	}

	if err := svc.Save(config.DefaultConfig()); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", path)
}

// RunPush runs one batch over every configured repository.
// Exits 1 when any repository failed.
func (c *CLI) RunPush() {
	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}

	repos := sched.Snapshot().Repos
	if len(repos) == 0 {
		fmt.Fprintln(c.Out, "No repositories configured. Use 'autopush add <path>' first.")
		return
	}

	fmt.Fprintf(c.Out, "%s Pushing %d repositories...\n", c.cyan("=>"), len(repos))

	report, err := sched.RunOnce(c.context())
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintln(c.Out)
	c.printReport(report)
	if !report.Summary().OK() {
		c.Exit(1)
	}
}

func (c *CLI) printReport(report scheduler.BatchReport) {
	for _, r := range report.Results {
		switch r.Outcome {
		case updater.Success:
			fmt.Fprintf(c.Out, "  %s %s\n", c.green("*"), r.Repo)
		case updater.NoChanges:
			fmt.Fprintf(c.Out, "  %s %s %s\n", c.gray("-"), c.gray(r.Repo), c.gray("(no changes)"))
		default:
			fmt.Fprintf(c.Out, "  %s %s: %v\n", c.red("x"), r.Repo, r.Err)
		}
	}

	s := report.Summary()
	fmt.Fprintln(c.Out)
	fmt.Fprintf(c.Out, "Done: %s pushed, %s unchanged",
		c.green(fmt.Sprintf("%d", s.Pushed)),
		c.gray(fmt.Sprintf("%d", s.Unchanged)))
	if s.Failed > 0 {
		fmt.Fprintf(c.Out, ", %s failed", c.red(fmt.Sprintf("%d", s.Failed)))
	}
	fmt.Fprintln(c.Out)
}

// AddRepos adds every path argument to the configuration.
func (c *CLI) AddRepos() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: autopush add <path> [path...]")
		c.Exit(1)
		return
	}

	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}

	failed := false
	for _, p := range c.Args[2:] {
		added, err := sched.AddRepo(p)
		switch {
		case err != nil:
			fmt.Fprintf(c.Err, "Error adding %s: %v\n", p, err)
			failed = true
		case added:
			fmt.Fprintf(c.Out, "%s Added %s\n", c.green("+"), displayPath(p))
		default:
			fmt.Fprintf(c.Out, "%s already configured\n", displayPath(p))
		}
	}
	if failed {
		c.Exit(1)
	}
}

// RemoveRepos removes every path argument from the configuration.
// A path that is not configured is reported and makes the command exit 1.
func (c *CLI) RemoveRepos() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: autopush remove <path> [path...]")
		c.Exit(1)
		return
	}

	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}

	failed := false
	for _, p := range c.Args[2:] {
		removed, err := sched.RemoveRepo(p)
		switch {
		case err != nil:
			fmt.Fprintf(c.Err, "Error removing %s: %v\n", p, err)
			failed = true
		case removed:
			fmt.Fprintf(c.Out, "%s Removed %s\n", c.yellow("-"), p)
		default:
			fmt.Fprintf(c.Out, "%s is not configured\n", p)
			failed = true
		}
	}
	if failed {
		c.Exit(1)
	}
}

// ListRepos prints the repositories and the commit message.
func (c *CLI) ListRepos() {
	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}
	cfg := sched.Snapshot()

	if len(cfg.Repos) == 0 {
		fmt.Fprintln(c.Out, "No repositories configured.")
	} else {
		fmt.Fprintf(c.Out, "Repositories (%d):\n\n", len(cfg.Repos))
		for i, r := range cfg.Repos {
			fmt.Fprintf(c.Out, "  %2d. %s\n", i+1, r)
		}
	}
	fmt.Fprintf(c.Out, "\nCommit message: %s\n", c.cyan(cfg.CommitMessage))
}

// CommitMessage shows the commit message, or sets it from the remaining
// arguments joined by spaces.
func (c *CLI) CommitMessage() {
	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}

	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, sched.Snapshot().CommitMessage)
		return
	}

	message := strings.Join(c.Args[2:], " ")
	if err := sched.SetCommitMessage(message); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "%s Commit message set to %q\n", c.green("*"), message)
}

// Watch runs periodic mode in the foreground until the context ends or the
// process receives SIGINT or SIGTERM.
func (c *CLI) Watch() {
	var interval time.Duration
	for _, arg := range c.Args[2:] {
		switch {
		case strings.HasPrefix(arg, "--interval="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--interval="))
			if err != nil || d <= 0 {
				fmt.Fprintf(c.Err, "Invalid interval: %s\n", strings.TrimPrefix(arg, "--interval="))
				c.Exit(1)
				return
			}
			interval = d
		default:
			fmt.Fprintf(c.Err, "Unknown flag: %s\n", arg)
			c.Exit(1)
			return
		}
	}

	sched, ok := c.schedulerSvc()
	if !ok {
		return
	}
	cfg := sched.Snapshot()
	if interval == 0 {
		d, err := cfg.IntervalDuration()
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(1)
			return
		}
		interval = d
	}

	ctx, stop := signal.NotifyContext(c.context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Output from here until StopPeriodic returns belongs to the loop goroutine.
	fmt.Fprintf(c.Out, "%s Watching %d repositories every %s (Ctrl+C to stop)\n",
		c.cyan("=>"), len(cfg.Repos), interval)
	sched.SetBatchHook(func(r scheduler.BatchReport) {
		fmt.Fprintf(c.Out, "\n%s %s\n", c.cyan(r.Finished.Format("15:04:05")), c.gray("run "+r.RunID))
		c.printReport(r)
	})

	if err := sched.StartPeriodic(interval); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	<-ctx.Done()

	if err := sched.StopPeriodic(); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "\n%s Stopped\n", c.yellow("-"))
}

// InstallLaunchd installs the launchd agent.
func (c *CLI) InstallLaunchd() {
	svc := c.launchdSvc()

	if svc.IsInstalled() {
		fmt.Fprintln(c.Out, "launchd already installed. Uninstall first to reinstall.")
		c.Exit(1)
		return
	}

	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}
	interval, err := cfg.IntervalDuration()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	// Only pin the config path when the user overrode it.
	var configPath string
	if os.Getenv(config.EnvConfigPath) != "" {
		configPath, _ = c.configSvc().ConfigPath()
	}
	execPath, _ := os.Executable()

	if err := svc.Install(execPath, configPath, interval); err != nil {
		fmt.Fprintf(c.Err, "Error installing launchd: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "%s Installed launchd agent (autopush watch every %s)\n", c.green("*"), interval)
	fmt.Fprintf(c.Out, "  Plist: %s\n", svc.PlistPath())
	fmt.Fprintf(c.Out, "  Log:   %s\n", svc.LogPath())
}

// UninstallLaunchd removes the launchd agent.
func (c *CLI) UninstallLaunchd() {
	svc := c.launchdSvc()

	if !svc.IsInstalled() {
		fmt.Fprintln(c.Out, "launchd not installed.")
		c.Exit(1)
		return
	}

	if err := svc.Uninstall(); err != nil {
		fmt.Fprintf(c.Err, "Error uninstalling launchd: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "%s Uninstalled launchd agent\n", c.yellow("-"))
}

// ShowStatus shows the current status.
func (c *CLI) ShowStatus() {
	cfgSvc := c.configSvc()
	launchdSvc := c.launchdSvc()

	cfg, err := cfgSvc.Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	configPath, err := cfgSvc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintln(c.Out, "autopush status:")
	fmt.Fprintf(c.Out, "  Config:   %s\n", configPath)
	fmt.Fprintf(c.Out, "  Repos:    %d\n", len(cfg.Repos))
	fmt.Fprintf(c.Out, "  Message:  %s\n", cfg.CommitMessage)
	fmt.Fprintf(c.Out, "  Target:   %s/%s\n", cfg.Remote, cfg.Branch)
	fmt.Fprintf(c.Out, "  Interval: %s\n", cfg.Interval)

	switch launchdSvc.Status() {
	case "loaded":
		fmt.Fprintf(c.Out, "  launchd:  %s\n", c.green("installed & loaded"))
	case "not loaded":
		fmt.Fprintf(c.Out, "  launchd:  %s\n", c.gray("installed (not loaded)"))
	default:
		fmt.Fprintf(c.Out, "  launchd:  %s\n", c.gray("not installed"))
	}
}

// displayPath shows the normalized form of p when it can be computed.
func displayPath(p string) string {
	if norm, err := config.NormalizePath(p); err == nil {
		return norm
	}
	return p
}
