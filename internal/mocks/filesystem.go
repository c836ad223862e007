// Package mocks provides mock implementations for testing.
package mocks

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mcdonaldj/autopush/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
type MockFileSystem struct {
	mu sync.Mutex

	// Files maps paths to file contents for ReadFile/WriteFile
	Files map[string][]byte
	// Stats maps paths to FileInfo for Stat
	Stats map[string]os.FileInfo
	// Errors maps paths to errors (for simulating failures)
	Errors map[string]error
	// Locks counts Lock calls per lock file
	Locks map[string]int
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:  make(map[string][]byte),
		Stats:  make(map[string]os.FileInfo),
		Errors: make(map[string]error),
		Locks:  make(map[string]int),
	}
}

// AddDir marks path as an existing directory.
func (m *MockFileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: os.ModeDir | 0755}
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	// Check if we have file content (implies file exists)
	if content, ok := m.Files[name]; ok {
		return &mockFileInfo{name: filepath.Base(name), size: int64(len(content))}, nil
	}
	return nil, os.ErrNotExist
}

// MkdirAll creates a directory along with any necessary parents.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[path]; ok {
		return err
	}
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: os.ModeDir | perm}
	return nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[name]; ok {
		return err
	}
	m.Files[name] = append([]byte(nil), data...)
	return nil
}

// ReadFile reads the named file and returns the contents.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if content, ok := m.Files[name]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

// Remove removes the named file or empty directory.
func (m *MockFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[name]; ok {
		return err
	}
	delete(m.Files, name)
	delete(m.Stats, name)
	return nil
}

// Rename renames (moves) oldpath to newpath.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[oldpath]; ok {
		return err
	}
	if content, ok := m.Files[oldpath]; ok {
		m.Files[newpath] = content
		delete(m.Files, oldpath)
	}
	if info, ok := m.Stats[oldpath]; ok {
		m.Stats[newpath] = info
		delete(m.Stats, oldpath)
	}
	return nil
}

// Lock records the call. Errors keyed by the lock file name are returned.
func (m *MockFileSystem) Lock(name string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	m.Locks[name]++
	return func() {}, nil
}

// FilesUnder returns the names of files whose path starts with prefix.
func (m *MockFileSystem) FilesUnder(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for k := range m.Files {
		if strings.HasPrefix(k, prefix) {
			names = append(names, k)
		}
	}
	return names
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
