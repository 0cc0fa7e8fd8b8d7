package memory

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// Helper to create a test preferences repository
func newTestPreferencesRepository() *PreferencesRepository {
	app := test.NewApp()
	prefs := app.Preferences()

	return NewPreferencesRepository(prefs)
}

func TestPreferencesRepository_SaveAndLoadVolume(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Save volume
	err := repo.SaveVolume(0.75)
	require.NoError(t, err)

	// Load volume
	volume, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 0.75, volume)
}

func TestPreferencesRepository_LoadVolume_Default(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Load when nothing saved - should return default (1.0)
	volume, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 1.0, volume)
}

func TestPreferencesRepository_SaveVolume_BoundaryValues(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Test minimum
	err := repo.SaveVolume(0.0)
	require.NoError(t, err)

	volume, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 0.0, volume)

	// Test maximum
	err = repo.SaveVolume(1.0)
	require.NoError(t, err)

	volume, err = repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 1.0, volume)
}
func TestPreferencesRepository_SaveVolume_OutOfRange(t *testing.T) {
	repo := newTestPreferencesRepository()

	assert.ErrorIs(t, repo.SaveVolume(-0.1), domain.ErrInvalidVolume)
	assert.ErrorIs(t, repo.SaveVolume(1.1), domain.ErrInvalidVolume)

	// Rejected values never reach storage
	volume, err := repo.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, domain.MaxVolume, volume)
}

func TestPreferencesRepository_SaveAndLoadTheme(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Save theme
	err := repo.SaveTheme(domain.ThemeLight)
	require.NoError(t, err)

	theme, err := repo.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)

	// Change theme
	err = repo.SaveTheme(domain.ThemeDark)
	require.NoError(t, err)

	theme, err = repo.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, theme)
}

func TestPreferencesRepository_LoadTheme_Default(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Load when nothing saved - should return default (dark)
	theme, err := repo.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, theme)
}

func TestPreferencesRepository_SaveTheme_Invalid(t *testing.T) {
	repo := newTestPreferencesRepository()

	err := repo.SaveTheme("system")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "theme", validationErr.Field)
}

func TestPreferencesRepository_Clear(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Save all preferences
	require.NoError(t, repo.SaveVolume(0.5))
	require.NoError(t, repo.SaveTheme(domain.ThemeLight))

	// Clear
	err := repo.Clear()
	require.NoError(t, err)

	// Verify all cleared (should return defaults)
	volume, _ := repo.LoadVolume()
	assert.Equal(t, 1.0, volume)

	theme, _ := repo.LoadTheme()
	assert.Equal(t, domain.ThemeDark, theme)
}

func TestPreferencesRepository_SaveLoadCycle(t *testing.T) {
	repo := newTestPreferencesRepository()

	// Multiple save/load cycles
	for i := 0; i < 10; i++ {
		volume := float64(i) / 10.0

		err := repo.SaveVolume(volume)
		require.NoError(t, err)

		loaded, err := repo.LoadVolume()
		require.NoError(t, err)
		assert.Equal(t, volume, loaded)
	}
}
