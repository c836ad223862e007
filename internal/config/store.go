package config

import (
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcdonaldj/autopush/internal/errors"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// Store persists a Config as a YAML document.
type Store struct {
	path string
	fs   ports.FileSystem
}

// NewStore creates a Store for the document at path.
func NewStore(path string, fsys ports.FileSystem) *Store {
	return &Store{path: path, fs: fsys}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing document is created with defaults.
func (s *Store) Load() (*Config, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, errors.NewConfigError("load", s.path, err)
	}
	defer unlock()

	cfg, missing, err := s.read()
	if err != nil {
		return nil, err
	}
	if missing {
		if err := s.write(cfg); err != nil {
			return nil, errors.NewConfigError("save", s.path, err)
		}
	}
	return cfg, nil
}

// Update reads the document, applies fn and writes the result back when fn
// reports a change, all under one lock. Edits made by other processes
// between two calls are therefore never overwritten. It returns the
// document as stored.
func (s *Store) Update(fn func(cfg *Config) bool) (*Config, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, errors.NewConfigError("load", s.path, err)
	}
	defer unlock()

	cfg, missing, err := s.read()
	if err != nil {
		return nil, err
	}
	if changed := fn(cfg); changed || missing {
		if err := s.write(cfg); err != nil {
			return nil, errors.NewConfigError("save", s.path, err)
		}
	}
	return cfg, nil
}

// read parses the document. A missing document yields defaults and
// missing == true. The caller holds the lock.
func (s *Store) read() (cfg *Config, missing bool, err error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, errors.NewConfigError("load", s.path, err)
		}
		return DefaultConfig(), true, nil
	}

	cfg = DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, errors.NewConfigError("load", s.path, err)
	}
	cfg.normalize()
	return cfg, false, nil
}

// Save replaces the document with cfg.
func (s *Store) Save(cfg *Config) error {
	unlock, err := s.lock()
	if err != nil {
		return errors.NewConfigError("save", s.path, err)
	}
	defer unlock()

	if err := s.write(cfg); err != nil {
		return errors.NewConfigError("save", s.path, err)
	}
	return nil
}

func (s *Store) lock() (func(), error) {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, err
	}
	return s.fs.Lock(s.path + ".lock")
}

// write goes through a temp file and a rename so a crash never leaves a
// half-written document behind.
func (s *Store) write(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}
