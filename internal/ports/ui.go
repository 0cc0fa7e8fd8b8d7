// Package ports define the UI-facing interfaces.
// These allow services to drive presentation without depending on Fyne directly.
package ports

import (
	"context"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// Visualizer paints frequency snapshots onto a raster surface it owns.
//
// RenderFrame is called from the scheduler thread once per frame while a station is playing.
// Implementations must not block; they should copy what they need and hand the
// actual repaint to the UI thread.
type Visualizer interface {
	// RenderFrame draws one frame.
	// A nil snapshot means nothing is playing and must be a no-op.
	RenderFrame(snapshot domain.FrequencySnapshot)
}

// ArtworkProvider fetches station artwork.
// Implementations may cache results; the returned bytes must not be modified by the caller.
type ArtworkProvider interface {
	// Fetch returns the raw image bytes (PNG, JPEG, ...) behind url.
	// Returns an error if the image cannot be retrieved.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
