package fyne

import (
	"math"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	xwidget "fyne.io/x/fyne/widget"

	"github.com/tejashwikalptaru/goradio/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/goradio/internal/adapter/ui/fyne/widgets/visualizer"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
	"github.com/tejashwikalptaru/goradio/res"
)

// Window defaults.
const (
	APPNAME = "GoRadio"
	WIDTH   = 760
	HEIGHT  = 860

	artworkSize = 200
	volumeStep  = 0.05
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; they hand widget updates
// to the Fyne thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	themeButton  *widget.Button
	artwork      *canvas.Image
	stationName  *widget.Label
	stationGenre *widget.Label
	stationDesc  *widget.Label
	streamTitle  *widget.Label
	status       *widget.Label
	bars         *visualizer.Bars
	level        *widget.ProgressBar
	playButton   *widgets.PlayPauseButton
	volumeSlider *widget.Slider
	search       *xwidget.CompletionEntry
	grid         *fyneapp.Container

	// State
	cards    map[string]*widgets.StationCard
	activeID string
	theme    string

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window with a card for every station.
func NewMainWindow(app fyneapp.App, stations []domain.Station) *MainWindow {
	w := &MainWindow{
		app:   app,
		cards: make(map[string]*widgets.StationCard, len(stations)),
		theme: domain.ThemeDark,
	}

	// Create a window
	w.window = app.NewWindow(APPNAME)

	// Build UI
	w.buildUI(stations)

	// Set window properties
	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// Visualizer returns the frequency bars widget for the playback controller to draw into.
func (w *MainWindow) Visualizer() ports.Visualizer {
	return w.bars
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI(stations []domain.Station) {
	// Header
	title := canvas.NewText(APPNAME, theme.Color(theme.ColorNameForeground))
	title.TextSize = 2 * theme.TextSize()
	title.TextStyle = fyneapp.TextStyle{Bold: true}
	w.themeButton = widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), nil)
	header := container.NewBorder(nil, nil, nil, w.themeButton, title)

	// Artwork
	w.artwork = canvas.NewImageFromResource(theme.MediaMusicIcon())
	w.artwork.FillMode = canvas.ImageFillContain
	artworkHolder := container.NewGridWrap(fyneapp.NewSize(artworkSize, artworkSize), w.artwork)

	// Station info
	w.stationName = widget.NewLabel("Select a station")
	w.stationName.Alignment = fyneapp.TextAlignCenter
	w.stationName.SizeName = theme.SizeNameHeadingText
	w.stationName.TextStyle = fyneapp.TextStyle{Bold: true}
	w.stationGenre = widget.NewLabel("")
	w.stationGenre.Alignment = fyneapp.TextAlignCenter
	w.stationDesc = widget.NewLabel("")
	w.stationDesc.Alignment = fyneapp.TextAlignCenter
	w.stationDesc.Wrapping = fyneapp.TextWrapWord
	w.streamTitle = widget.NewLabel("")
	w.streamTitle.Alignment = fyneapp.TextAlignCenter
	w.streamTitle.TextStyle = fyneapp.TextStyle{Italic: true}
	w.streamTitle.Truncation = fyneapp.TextTruncateEllipsis
	w.streamTitle.Hide()
	w.status = widget.NewLabel("")
	w.status.Alignment = fyneapp.TextAlignCenter
	w.status.SizeName = theme.SizeNameCaptionText

	// Visualizer and level meter
	w.bars = visualizer.NewBars()
	w.level = widget.NewProgressBar()
	w.level.TextFormatter = func() string { return "" }

	// Controls
	w.playButton = widgets.NewPlayPauseButton(nil)
	w.volumeSlider = widget.NewSlider(0, 1)
	w.volumeSlider.Step = 0.01
	w.volumeSlider.SetValue(domain.MaxVolume)
	volIcon := widget.NewIcon(theme.VolumeUpIcon())
	volumeHolder := container.NewBorder(nil, nil, volIcon, nil, w.volumeSlider)
	controls := container.NewBorder(nil, nil, w.playButton, nil, volumeHolder)

	nowPlaying := container.NewVBox(
		container.NewCenter(artworkHolder),
		w.stationName,
		w.stationGenre,
		w.stationDesc,
		w.streamTitle,
		w.status,
		container.NewCenter(w.bars),
		w.level,
		controls,
	)

	// Search
	w.search = xwidget.NewCompletionEntry(nil)
	w.search.SetPlaceHolder("Search stations or genres...")
	w.search.ActionItem = widget.NewIcon(theme.SearchIcon())

	// Station grid
	cards := make([]fyneapp.CanvasObject, 0, len(stations))
	for _, st := range stations {
		cards = append(cards, w.card(st))
	}
	w.grid = container.NewGridWrap(fyneapp.NewSize(widgets.CardSize, widgets.CardSize), cards...)

	// Main layout
	top := container.NewVBox(header, nowPlaying, w.search)
	w.window.SetContent(container.NewPadded(
		container.NewBorder(top, nil, nil, nil, container.NewVScroll(w.grid)),
	))

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// card returns the card for station, creating it on first use.
func (w *MainWindow) card(station domain.Station) *widgets.StationCard {
	if c, ok := w.cards[station.ID]; ok {
		return c
	}
	c := widgets.NewStationCard(station, func(st domain.Station) {
		if w.presenter != nil {
			w.presenter.OnStationSelected(st)
		}
	})
	c.SetActive(station.ID == w.activeID)
	w.cards[station.ID] = c
	return c
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.playButton.OnTapped = func() {
		w.presenter.OnPlayPauseClicked()
	}

	w.themeButton.OnTapped = func() {
		w.presenter.OnThemeToggled()
	}

	w.volumeSlider.OnChanged = func(value float64) {
		w.presenter.OnVolumeChanged(value)
	}

	w.search.OnChanged = func(query string) {
		w.presenter.OnSearchChanged(query)
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	playPause := fyneapp.NewMenuItem("Play/Pause", func() {
		if w.presenter != nil {
			w.presenter.OnPlayPauseClicked()
		}
	})

	next := fyneapp.NewMenuItem("Next Station", func() {
		if w.presenter != nil {
			w.presenter.OnNextStation()
		}
	})

	previous := fyneapp.NewMenuItem("Previous Station", func() {
		if w.presenter != nil {
			w.presenter.OnPreviousStation()
		}
	})

	about := fyneapp.NewMenuItem("About", func() {
		w.showAbout()
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("Station", playPause, fyneapp.NewMenuItemSeparator(), next, previous),
		fyneapp.NewMenu("Help", about),
	}
}

func (w *MainWindow) showAbout() {
	content := widget.NewRichTextFromMarkdown(res.AboutContent)
	content.Wrapping = fyneapp.TextWrapWord
	d := dialog.NewCustom("About "+APPNAME, "Close", content, w.window)
	d.Resize(fyneapp.NewSize(420, 320))
	d.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Min(w.volumeSlider.Value+volumeStep, 1))
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.volumeSlider.SetValue(math.Max(w.volumeSlider.Value-volumeStep, 0))
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyRight,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnNextStation()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyLeft,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPreviousStation()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeySpace,
		Modifier: desktop.AltModifier,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnPlayPauseClicked()
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetStations shows the cards of stations, in order.
func (w *MainWindow) SetStations(stations []domain.Station) {
	fyneapp.Do(func() {
		objects := make([]fyneapp.CanvasObject, 0, len(stations))
		for _, st := range stations {
			objects = append(objects, w.card(st))
		}
		w.grid.Objects = objects
		w.grid.Refresh()
	})
}

// SetStationArtwork sets the image of one station card.
func (w *MainWindow) SetStationArtwork(id string, data []byte) {
	fyneapp.Do(func() {
		if c, ok := w.cards[id]; ok {
			c.SetArtwork(fyneapp.NewStaticResource("station-"+id, data))
		}
	})
}

// SetSuggestions updates the search completion list.
func (w *MainWindow) SetSuggestions(suggestions []string) {
	fyneapp.Do(func() {
		w.search.SetOptions(suggestions)
		if len(suggestions) == 0 || w.search.Text == "" {
			w.search.HideCompletion()
			return
		}
		w.search.ShowCompletion()
	})
}

// SetActiveStation shows station in the header and marks its card.
func (w *MainWindow) SetActiveStation(station domain.Station) {
	fyneapp.Do(func() {
		if c, ok := w.cards[w.activeID]; ok {
			c.SetActive(false)
		}
		w.activeID = station.ID
		w.card(station).SetActive(true)

		w.stationName.SetText(station.Name)
		w.stationGenre.SetText(station.Genre)
		w.stationDesc.SetText(station.Description)
	})
}

// SetArtwork updates the header artwork.
func (w *MainWindow) SetArtwork(data []byte) {
	fyneapp.Do(func() {
		w.artwork.Resource = fyneapp.NewStaticResource("artwork-"+w.activeID, data)
		w.artwork.Image = nil
		w.artwork.Refresh()
	})
}

// ClearArtwork resets the header artwork to the placeholder.
func (w *MainWindow) ClearArtwork() {
	fyneapp.Do(func() {
		w.artwork.Resource = theme.MediaMusicIcon()
		w.artwork.Image = nil
		w.artwork.Refresh()
	})
}

// SetStreamTitle shows the track announced by the stream. Empty hides the line.
func (w *MainWindow) SetStreamTitle(title string) {
	fyneapp.Do(func() {
		w.streamTitle.SetText(title)
		if title == "" {
			w.streamTitle.Hide()
		} else {
			w.streamTitle.Show()
		}
	})
}

// SetPlaybackState updates the play button and status line.
func (w *MainWindow) SetPlaybackState(state domain.PlaybackState) {
	fyneapp.Do(func() {
		w.playButton.SetPlaying(state == domain.StatePlaying)
		w.status.SetText(statusText(state))

		if state == domain.StateIdle || state == domain.StateLoading {
			w.level.SetValue(0)
			w.bars.Reset()
		}
	})
}

func statusText(state domain.PlaybackState) string {
	switch state {
	case domain.StateLoading:
		return "Connecting..."
	case domain.StatePlaying:
		return "Live"
	case domain.StatePaused:
		return "Paused"
	case domain.StateErrored:
		return "Station unavailable"
	}
	return ""
}

// SetLevel updates the level meter (0.0 to 1.0).
func (w *MainWindow) SetLevel(level float64) {
	fyneapp.Do(func() {
		w.level.SetValue(level)
	})
}

// SetVolume updates the volume slider (0.0 to 1.0).
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		if w.volumeSlider.Value != volume {
			w.volumeSlider.SetValue(volume)
		}
	})
}

// SetTheme applies the light or dark theme.
func (w *MainWindow) SetTheme(name string) {
	fyneapp.Do(func() {
		w.theme = name
		w.app.Settings().SetTheme(newRadioTheme(name))
	})
}

// Theme returns the applied theme name.
func (w *MainWindow) Theme() string {
	return w.theme
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
