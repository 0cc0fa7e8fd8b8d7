package visualizer

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Default drawing surface size in pixels.
const (
	SurfaceWidth  = 400
	SurfaceHeight = 80
)

// barFill is the share of the surface height a full-scale bin reaches.
const barFill = 0.8

// BarGradient returns the top and bottom gradient stops for bin i.
func BarGradient(i int) (top, bottom color.NRGBA) {
	return HSLA(262+float64(i), 0.83, 0.65, 0.8), HSLA(340+float64(i), 0.82, 0.68, 0.8)
}

// RenderBars clears img and draws one vertical bar per bin of snapshot.
//
// Bars are barWidth = width/N*2 wide and start at i*(barWidth+1), so with the
// usual bin counts only the lower half of the spectrum fits on the surface.
// Bar i is snapshot[i]/255 * height * 0.8 tall, anchored to the bottom edge, and
// filled with a vertical gradient from BarGradient(i) top to bottom.
func RenderBars(img *image.RGBA, snapshot domain.FrequencySnapshot) {
	Clear(img)

	n := len(snapshot)
	if n == 0 {
		return
	}

	width := float64(img.Rect.Dx())
	height := float64(img.Rect.Dy())
	barWidth := width / float64(n) * 2

	x := 0.0
	for i, v := range snapshot {
		if x >= width {
			break
		}
		barHeight := float64(v) / 255 * height * barFill
		top, bottom := BarGradient(i)
		fillBar(img, x, height-barHeight, barWidth, barHeight, top, bottom)
		x += barWidth + 1
	}
}

// fillBar fills the rectangle with a vertical gradient, snapping edges to the nearest pixel.
func fillBar(img *image.RGBA, x, y, w, h float64, top, bottom color.NRGBA) {
	if h <= 0 || w <= 0 {
		return
	}

	b := img.Rect
	x0 := b.Min.X + int(math.Round(x))
	x1 := min(b.Min.X+int(math.Round(x+w)), b.Max.X)
	y0 := max(b.Min.Y+int(math.Round(y)), b.Min.Y)
	y1 := b.Max.Y

	for py := y0; py < y1; py++ {
		t := (float64(py-b.Min.Y) + 0.5 - y) / h
		c := color.RGBAModel.Convert(Lerp(top, bottom, t)).(color.RGBA)
		for px := x0; px < x1; px++ {
			img.SetRGBA(px, py, c)
		}
	}
}

// Bars is the frequency bar visualizer widget.
//
// RenderFrame may be called from any goroutine; the repaint itself is handed to
// the Fyne UI thread.
type Bars struct {
	BaseVisualizer
}

// NewBars creates a new bar visualizer.
func NewBars() *Bars {
	b := &Bars{}
	b.Raster = canvas.NewRaster(b.draw)
	b.ExtendBaseWidget(b)
	return b
}

// MinSize returns the default drawing surface size.
func (b *Bars) MinSize() fyne.Size {
	return fyne.NewSize(SurfaceWidth, SurfaceHeight)
}

// RenderFrame stores a copy of snapshot and schedules a repaint.
// A nil snapshot is a no-op.
func (b *Bars) RenderFrame(snapshot domain.FrequencySnapshot) {
	if !b.store(snapshot) {
		return
	}
	fyne.Do(b.Raster.Refresh)
}

func (b *Bars) draw(w, h int) image.Image {
	return b.paint(w, h, RenderBars)
}

// Verify interface implementation
var _ ports.Visualizer = (*Bars)(nil)
