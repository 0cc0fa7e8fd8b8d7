// Package ports define interfaces for dependency inversion.
// These interfaces allow the core playback logic to remain independent of audio and UI frameworks.
package ports

import (
	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// MediaSource wraps one streamable audio endpoint and exposes transport control.
// A source is single-use: it is bound to one URL by Load and released by Dispose.
//
// Implementations must be thread-safe. Lifecycle events may be delivered from any goroutine;
// consumers that need serialization must re-dispatch them.
type MediaSource interface {
	// ID returns a unique identifier for this source instance.
	ID() string

	// Load binds the source to url and starts opening the stream.
	// Failures are never returned synchronously: they arrive as a MediaErrored event
	// carrying an error that matches domain.ErrMediaLoad. Success is a MediaLoaded event.
	Load(url string)

	// Play requests playback.
	// Returns an error matching domain.ErrPlaybackBlocked if the output refuses to start.
	// The MediaPlaying event confirms that audio is flowing.
	Play() error

	// Pause requests a pause. It never fails from the caller's perspective;
	// a MediaPaused event follows once the output is silent.
	Pause()

	// SetVolume sets the output volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// OnEvent registers a lifecycle listener. Listeners are dropped on Dispose.
	OnEvent(handler domain.MediaEventHandler)

	// Connect routes decoded samples into sink.
	// A source accepts exactly one sink over its whole lifetime; any further call
	// returns domain.ErrAlreadyAttached, even after Disconnect.
	Connect(sink SampleSink) error

	// Disconnect stops routing samples to the connected sink.
	Disconnect()

	// Dispose stops the stream, releases all resources and detaches every listener.
	// It is idempotent. The returned error reports best-effort cleanup failures only.
	Dispose() error
}

// MediaSourceFactory creates fresh, never-used media sources.
type MediaSourceFactory interface {
	NewSource() MediaSource
}

// SampleSink receives decoded stereo samples from a media source.
// WriteSamples is called from the audio goroutine and must not block.
type SampleSink interface {
	WriteSamples(samples [][2]float64)
}

// AnalysisGraph turns a media source's signal into queryable frequency data.
type AnalysisGraph interface {
	// BinCount returns the number of frequency bins per snapshot.
	BinCount() int

	// Snapshot fills buf (len == BinCount) with the current magnitudes (0-255).
	// Returns domain.ErrGraphDisposed after Dispose.
	Snapshot(buf domain.FrequencySnapshot) error

	// Dispose detaches from the source and releases the pipeline. Idempotent.
	Dispose() error
}

// AnalysisGraphFactory builds analysis graphs on top of media sources.
type AnalysisGraphFactory interface {
	// Attach builds a graph for src. Returns domain.ErrAlreadyAttached if src was attached before.
	Attach(src MediaSource, cfg domain.AnalysisConfig) (AnalysisGraph, error)
}
