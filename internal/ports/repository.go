// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// StationCatalog provides the read-only list of stations.
// The catalog is loaded once at startup and never changes afterwards.
//
// Thread-safety: Implementations must be thread-safe.
type StationCatalog interface {
	// All returns every station in catalog order.
	// The returned slice is a copy; callers may modify it freely.
	All() []domain.Station

	// Get retrieves a station by ID.
	// If the station doesn't exist, returns domain.ErrStationNotFound.
	Get(id string) (domain.Station, error)

	// Len returns the number of stations.
	Len() int
}

// PreferencesRepository handles the persistence of user preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level.
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns domain.MaxVolume.
	LoadVolume() (float64, error)

	// SaveTheme persists the theme preference.
	SaveTheme(theme string) error

	// LoadTheme retrieves the saved theme preference.
	// If no theme was saved, returns domain.ThemeDark.
	LoadTheme() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
