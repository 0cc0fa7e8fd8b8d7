// Package memory provides repository implementations backed by Fyne preferences.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Preference keys.
const (
	keyVolume = "preferences.volume"
	keyTheme  = "preferences.theme"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Fyne preferences automatically use OS-specific app data directories:
// - macOS: ~/Library/Preferences/<app id>.plist
// - Linux: ~/.config/fyne/<app id>/
// - Windows: %APPDATA%\fyne\<app id>\
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level, defaulting to maximum.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.FloatWithFallback(keyVolume, domain.MaxVolume), nil
}

// SaveTheme persists the theme preference.
func (r *PreferencesRepository) SaveTheme(theme string) error {
	if theme != domain.ThemeDark && theme != domain.ThemeLight {
		return domain.NewValidationError("theme", theme, "must be 'light' or 'dark'")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyTheme, theme)
	return nil
}

// LoadTheme retrieves the saved theme preference, defaulting to dark.
func (r *PreferencesRepository) LoadTheme() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.StringWithFallback(keyTheme, domain.ThemeDark), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyTheme)
	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
