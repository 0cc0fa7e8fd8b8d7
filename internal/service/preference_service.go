package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// PreferenceService manages application preferences and settings.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	volume float64
	theme  string

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved values.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	service := &PreferenceService{
		logger:     logger.With(slog.String("service", "PreferenceService")),
		repository: repository,
		bus:        bus,
		volume:     domain.MaxVolume,
		theme:      domain.ThemeDark,
	}

	service.loadPreferences()
	service.logger.Debug("preference service initialized",
		slog.Float64("volume", service.volume),
		slog.String("theme", service.theme))

	return service
}

// loadPreferences loads all preferences from the repository into the cache.
// Unreadable or out of range values keep their defaults.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vol, err := s.repository.LoadVolume(); err != nil {
		s.logger.Warn("failed to load volume", slog.Any("error", err))
	} else if vol >= 0 && vol <= 1 {
		s.volume = vol
	}

	if theme, err := s.repository.LoadTheme(); err != nil {
		s.logger.Warn("failed to load theme", slog.Any("error", err))
	} else if validTheme(theme) {
		s.theme = theme
	}
}

// GetVolume returns the saved volume preference (0.0 to 1.0).
func (s *PreferenceService) GetVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SetVolume saves the volume preference (0.0 to 1.0).
func (s *PreferenceService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	if err := s.repository.SaveVolume(volume); err != nil {
		return domain.NewServiceError("PreferenceService", "SetVolume", "failed to save volume", err)
	}

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// GetTheme returns the saved theme preference.
func (s *PreferenceService) GetTheme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme saves the theme preference.
func (s *PreferenceService) SetTheme(theme string) error {
	if !validTheme(theme) {
		return domain.NewValidationError("theme", theme, "must be 'light' or 'dark'")
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if err := s.repository.SaveTheme(theme); err != nil {
		return domain.NewServiceError("PreferenceService", "SetTheme", "failed to save theme", err)
	}

	s.bus.Publish(domain.NewThemeChangedEvent(theme))
	return nil
}

// ToggleTheme switches between the dark and light themes and returns the new one.
func (s *PreferenceService) ToggleTheme() (string, error) {
	next := domain.ThemeLight
	if s.GetTheme() == domain.ThemeLight {
		next = domain.ThemeDark
	}
	return next, s.SetTheme(next)
}

// ResetToDefaults resets all preferences to default values.
func (s *PreferenceService) ResetToDefaults() error {
	if err := s.repository.Clear(); err != nil {
		return domain.NewServiceError("PreferenceService", "ResetToDefaults", "failed to clear preferences", err)
	}

	s.mu.Lock()
	s.volume = domain.MaxVolume
	s.theme = domain.ThemeDark
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(domain.MaxVolume))
	s.bus.Publish(domain.NewThemeChangedEvent(domain.ThemeDark))
	return nil
}

// Shutdown cleans up resources.
func (s *PreferenceService) Shutdown() error {
	// No cleanup needed for preference service
	return nil
}

func validTheme(theme string) bool {
	return theme == domain.ThemeDark || theme == domain.ThemeLight
}

// Verify that PreferenceService implements the expected interface patterns
var _ interface {
	GetVolume() float64
	SetVolume(float64) error
	GetTheme() string
	SetTheme(string) error
	ToggleTheme() (string, error)
	ResetToDefaults() error
	Shutdown() error
} = (*PreferenceService)(nil)
