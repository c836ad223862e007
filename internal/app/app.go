// Package app wires the production adapters into a Scheduler.
package app

import (
	"log/slog"

	"github.com/mcdonaldj/autopush/internal/adapters/execgit"
	"github.com/mcdonaldj/autopush/internal/adapters/osfs"
	"github.com/mcdonaldj/autopush/internal/config"
	"github.com/mcdonaldj/autopush/internal/logger"
	"github.com/mcdonaldj/autopush/internal/ports"
	"github.com/mcdonaldj/autopush/internal/scheduler"
	"github.com/mcdonaldj/autopush/internal/updater"
)

// Options configures Open. Zero values select the defaults.
type Options struct {
	ConfigPath string // defaults to config.ConfigPath()
	Logger     *slog.Logger
	FS         ports.FileSystem // defaults to the OS filesystem
	Git        ports.GitClient  // defaults to the git binary on PATH
}

// Open loads the configuration and returns an Idle scheduler backed by it.
// The remote is read once here; changing it requires a restart.
func Open(opts Options) (*scheduler.Scheduler, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return nil, err
		}
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = osfs.New()
	}
	git := opts.Git
	if git == nil {
		git = execgit.New()
	}
	log := logger.OrDiscard(opts.Logger)

	store := config.NewStore(path, fsys)
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	u := updater.New(git, fsys,
		updater.WithRemote(cfg.Remote),
		updater.WithLogger(log),
	)
	return scheduler.New(store, u, fsys, scheduler.WithLogger(log))
}
