// Package visualizer provides audio visualization widgets for the GoRadio application.
package visualizer

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// BaseVisualizer provides the raster plumbing shared by visualizers.
// It holds the latest snapshot and two frame buffers that are swapped on every paint,
// so the image handed to Fyne is never the one being drawn into.
type BaseVisualizer struct {
	widget.BaseWidget

	Raster *canvas.Raster

	mu       sync.Mutex
	snapshot domain.FrequencySnapshot
	buffers  [2]*image.RGBA
	front    int
}

// CreateRenderer implements fyne.Widget.
func (v *BaseVisualizer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.Raster)
}

// store copies snapshot into the widget. Returns false for a nil snapshot.
func (v *BaseVisualizer) store(snapshot domain.FrequencySnapshot) bool {
	if snapshot == nil {
		return false
	}

	v.mu.Lock()
	if cap(v.snapshot) < len(snapshot) {
		v.snapshot = make(domain.FrequencySnapshot, len(snapshot))
	}
	v.snapshot = v.snapshot[:len(snapshot)]
	copy(v.snapshot, snapshot)
	v.mu.Unlock()
	return true
}

// Reset drops the stored snapshot so the next paint is blank.
func (v *BaseVisualizer) Reset() {
	v.mu.Lock()
	v.snapshot = v.snapshot[:0]
	v.mu.Unlock()

	fyne.Do(v.Raster.Refresh)
}

// paint draws the stored snapshot with fn into the back buffer and returns it.
func (v *BaseVisualizer) paint(w, h int, fn func(img *image.RGBA, snapshot domain.FrequencySnapshot)) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	back := 1 - v.front
	img := v.buffers[back]
	if img == nil || img.Rect.Dx() != w || img.Rect.Dy() != h {
		img = image.NewRGBA(image.Rect(0, 0, w, h))
		v.buffers[back] = img
	}

	fn(img, v.snapshot)
	v.front = back
	return img
}
