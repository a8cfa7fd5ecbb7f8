package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sentinel-Gate/appgate/internal/domain/theme"
	"github.com/Sentinel-Gate/appgate/internal/port/outbound"
)

// ThemeService holds the theme preference and persists every change.
type ThemeService struct {
	store      outbound.PreferenceStore
	systemDark func() bool
	logger     *slog.Logger

	mu   sync.Mutex
	mode theme.Mode
}

// NewThemeService loads the saved mode from store. A store error is logged
// and the default mode is used. systemDark reports the OS preference and
// may be nil.
func NewThemeService(store outbound.PreferenceStore, systemDark func() bool, logger *slog.Logger) *ThemeService {
	if logger == nil {
		logger = slog.Default()
	}
	if systemDark == nil {
		systemDark = func() bool { return false }
	}
	mode, err := store.LoadTheme()
	if err != nil {
		logger.Warn("failed to load theme preference, using default", "error", err)
		mode = theme.Default
	}
	return &ThemeService{store: store, systemDark: systemDark, logger: logger, mode: mode}
}

// Mode returns the stored mode.
func (s *ThemeService) Mode() theme.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// IsDark reports whether the effective theme is dark.
func (s *ThemeService) IsDark() bool {
	return s.Mode().IsDark(s.systemDark())
}

// Set stores mode.
func (s *ThemeService) Set(mode theme.Mode) error {
	if _, ok := theme.ParseMode(string(mode)); !ok {
		return fmt.Errorf("unknown theme mode %q", mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveTheme(mode); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.mode = mode
	return nil
}

// Toggle switches to the explicit opposite of the effective theme.
func (s *ThemeService) Toggle() (theme.Mode, error) {
	next := s.Mode().Toggled(s.systemDark())
	if err := s.Set(next); err != nil {
		return s.Mode(), err
	}
	return next, nil
}
