// Package widgets provides custom Fyne widgets for the GoRadio application.
package widgets

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// CardSize is the edge length of a square station card.
const CardSize = 120

var (
	activeColor  = color.NRGBA{R: 34, G: 197, B: 94, A: 255}
	overlayColor = color.NRGBA{A: 170}
)

// StationCard is a square tile showing a station's artwork.
// The name and genre overlay is shown while the card is hovered or active,
// and an active card gets a ring and a green indicator dot.
type StationCard struct {
	widget.BaseWidget

	station  domain.Station
	onSelect func(domain.Station)
	active   bool
	hovered  bool

	artwork   *canvas.Image
	name      *canvas.Text
	genre     *canvas.Text
	overlay   *fyne.Container
	indicator *canvas.Circle
	ring      *canvas.Rectangle
}

// NewStationCard creates a card for station. onSelect runs on primary tap.
func NewStationCard(station domain.Station, onSelect func(domain.Station)) *StationCard {
	c := &StationCard{
		station:  station,
		onSelect: onSelect,
	}

	c.artwork = canvas.NewImageFromResource(theme.MediaMusicIcon())
	c.artwork.FillMode = canvas.ImageFillContain

	c.name = canvas.NewText(station.Name, color.White)
	c.name.TextStyle = fyne.TextStyle{Bold: true}
	c.name.TextSize = theme.TextSize()
	c.genre = canvas.NewText(station.Genre, color.NRGBA{R: 255, G: 255, B: 255, A: 180})
	c.genre.TextSize = theme.CaptionTextSize()

	c.overlay = container.NewStack(
		canvas.NewRectangle(overlayColor),
		container.NewPadded(container.NewVBox(layout.NewSpacer(), c.name, c.genre)),
	)

	c.indicator = canvas.NewCircle(activeColor)
	c.indicator.Resize(fyne.NewSize(12, 12))

	c.ring = canvas.NewRectangle(color.Transparent)
	c.ring.StrokeColor = color.White
	c.ring.StrokeWidth = 3
	c.ring.CornerRadius = theme.InputRadiusSize()

	c.ExtendBaseWidget(c)
	c.update()
	return c
}

// CreateRenderer implements fyne.Widget.
func (c *StationCard) CreateRenderer() fyne.WidgetRenderer {
	dot := container.NewGridWrap(fyne.NewSize(12, 12), c.indicator)
	corner := container.NewVBox(container.NewHBox(layout.NewSpacer(), dot))

	return widget.NewSimpleRenderer(container.NewStack(
		canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		c.artwork,
		c.overlay,
		container.NewPadded(corner),
		c.ring,
	))
}

// MinSize keeps cards square.
func (c *StationCard) MinSize() fyne.Size {
	return fyne.NewSize(CardSize, CardSize)
}

// Station returns the station shown by the card.
func (c *StationCard) Station() domain.Station {
	return c.station
}

// Active reports whether the card is marked as the current station.
func (c *StationCard) Active() bool {
	return c.active
}

// SetActive marks the card as the current station.
func (c *StationCard) SetActive(active bool) {
	if c.active == active {
		return
	}
	c.active = active
	c.update()
}

// SetArtwork replaces the placeholder with the station's image.
func (c *StationCard) SetArtwork(res fyne.Resource) {
	if res == nil {
		return
	}
	c.artwork.Resource = res
	c.artwork.Image = nil
	c.artwork.FillMode = canvas.ImageFillStretch
	c.artwork.Refresh()
}

// OverlayVisible reports whether the name and genre are showing.
func (c *StationCard) OverlayVisible() bool {
	return c.overlay.Visible()
}

func (c *StationCard) update() {
	if c.active || c.hovered {
		c.overlay.Show()
	} else {
		c.overlay.Hide()
	}

	if c.active {
		c.indicator.Show()
		c.ring.Show()
	} else {
		c.indicator.Hide()
		c.ring.Hide()
	}
	c.Refresh()
}

// Tapped implements fyne.Tappable.
func (c *StationCard) Tapped(*fyne.PointEvent) {
	if c.onSelect != nil {
		c.onSelect(c.station)
	}
}

// MouseIn implements desktop.Hoverable.
func (c *StationCard) MouseIn(*desktop.MouseEvent) {
	c.hovered = true
	c.update()
}

// MouseMoved implements desktop.Hoverable.
func (c *StationCard) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (c *StationCard) MouseOut() {
	c.hovered = false
	c.update()
}

// Cursor shows a pointer over cards.
func (c *StationCard) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

// Ensure StationCard implements the required interfaces
var _ fyne.Tappable = (*StationCard)(nil)
var _ desktop.Hoverable = (*StationCard)(nil)
var _ desktop.Cursorable = (*StationCard)(nil)
