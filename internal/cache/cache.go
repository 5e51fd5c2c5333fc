// Package cache persists login credentials between runs so a bot can resume a
// session without sending the password again.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// DefaultPath is the cache file used when none is configured.
const DefaultPath = ".ed.cache"

// Entry is the cached identity of one account.
type Entry struct {
	SID      string `json:"sid"`
	Secret   string `json:"secret"`
	DeviceID string `json:"device"`
	UID      string `json:"uid"`
}

// File is a JSON object of email → Entry on disk. A missing or corrupt file
// reads as empty.
type File struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *File {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{path: path, logger: logger}
}

func (f *File) Path() string {
	return f.path
}

// Get returns the entry cached for email.
func (f *File) Get(email string) (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.load()[email]
	return entry, ok
}

// Put stores entry for email, replacing any previous one.
func (f *File) Put(email string, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := f.load()
	entries[email] = entry
	return f.save(entries)
}

// Delete removes the entry for email.
func (f *File) Delete(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := f.load()
	if _, ok := entries[email]; !ok {
		return nil
	}
	delete(entries, email)
	return f.save(entries)
}

func (f *File) load() map[string]Entry {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries
	}
	if err != nil {
		f.logger.Warn("credential cache unreadable, ignoring", zap.String("path", f.path), zap.Error(err))
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		f.logger.Warn("credential cache corrupt, ignoring", zap.String("path", f.path), zap.Error(err))
		return make(map[string]Entry)
	}
	return entries
}

// save writes entries to a temp file in the same directory and renames it over
// the cache so readers never see a partial file.
func (f *File) save(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential cache: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credential cache: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to set cache permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace credential cache: %w", err)
	}
	return nil
}
