package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/Sentinel-Gate/appgate/internal/domain/theme"
)

// FileStore manages reading and writing the preferences file.
// It provides atomic writes (write-tmp-then-rename), automatic backups and
// file locking (flock for cross-process, mutex for in-process).
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a new FileStore for the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the preferences file.
// If the file does not exist, it returns Default().
// If the file contains invalid JSON, it returns an error.
// Warns if the file has permissions more open than 0600, since it may hold
// a session token.
func (s *FileStore) Load() (*Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("preferences file not found, using defaults", "path", s.path)
			return s.Default(), nil
		}
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	// Unix permission bits are not meaningful on Windows.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("preferences file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse preferences file: %w", err)
	}

	return &prefs, nil
}

// Save writes the preferences to disk atomically.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Copy current file to path+".bak" (ignored if no current file)
//  4. Marshal as indented JSON
//  5. Write to path+".tmp" with 0600 permissions, fsync
//  6. Rename path+".tmp" -> path
func (s *FileStore) Save(prefs *Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(prefs)
}

// Update loads the preferences, applies fn and saves the result while
// holding the store lock.
func (s *FileStore) Update(fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Load()
	if err != nil {
		return err
	}
	fn(prefs)
	return s.saveLocked(prefs)
}

func (s *FileStore) saveLocked(prefs *Preferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	if prefs.Version == "" {
		prefs.Version = CurrentVersion
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	// Acquire cross-process file lock.
	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := lockPrefs(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer unlockPrefs(lockFile.Fd()) //nolint:errcheck

	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on preferences file", "error", err)
	}

	s.logger.Debug("preferences saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to preferences: %w", err)
	}
	return nil
}

// Default returns empty preferences at the current schema version.
func (s *FileStore) Default() *Preferences {
	now := time.Now().UTC()
	return &Preferences{
		Version:   CurrentVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Exists returns true if the preferences file exists on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadTheme returns the saved theme mode, or theme.Default when none is
// saved or the saved value is unknown.
func (s *FileStore) LoadTheme() (theme.Mode, error) {
	prefs, err := s.Load()
	if err != nil {
		return theme.Default, err
	}
	if prefs.ThemeMode == "" {
		return theme.Default, nil
	}
	mode, ok := theme.ParseMode(prefs.ThemeMode)
	if !ok {
		s.logger.Warn("ignoring unknown saved theme mode", "theme_mode", prefs.ThemeMode)
		return theme.Default, nil
	}
	return mode, nil
}

// SaveTheme persists the theme mode.
func (s *FileStore) SaveTheme(mode theme.Mode) error {
	return s.Update(func(p *Preferences) {
		p.ThemeMode = string(mode)
	})
}

// LoadSessionToken returns the token saved for appID, or "" if none.
func (s *FileStore) LoadSessionToken(appID string) (string, error) {
	prefs, err := s.Load()
	if err != nil {
		return "", err
	}
	if prefs.Session == nil || prefs.Session.AppID != appID {
		return "", nil
	}
	return prefs.Session.Token, nil
}

// SaveSessionToken stores token for appID. An empty token clears the entry.
func (s *FileStore) SaveSessionToken(appID, token string) error {
	return s.Update(func(p *Preferences) {
		if token == "" {
			p.Session = nil
			return
		}
		p.Session = &SessionEntry{AppID: appID, Token: token, SavedAt: time.Now().UTC()}
	})
}
