package fyne

import (
	"image/color"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// Visualizer accent colors, matching the bar gradient stops.
var (
	accentPrimary   = color.NRGBA{R: 139, G: 92, B: 246, A: 255}
	accentSecondary = color.NRGBA{R: 236, G: 72, B: 153, A: 255}
)

// radioTheme pins the default Fyne theme to one variant and applies the accent color.
type radioTheme struct {
	fyneapp.Theme
	variant fyneapp.ThemeVariant
}

// newRadioTheme returns the theme for a preference value ("dark" or "light").
func newRadioTheme(name string) fyneapp.Theme {
	variant := theme.VariantDark
	if name == domain.ThemeLight {
		variant = theme.VariantLight
	}
	return &radioTheme{Theme: theme.DefaultTheme(), variant: variant}
}

// Color implements fyne.Theme.
func (t *radioTheme) Color(name fyneapp.ThemeColorName, _ fyneapp.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentPrimary
	case theme.ColorNameHyperlink:
		return accentSecondary
	}
	return t.Theme.Color(name, t.variant)
}
