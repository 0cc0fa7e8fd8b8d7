// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the GoRadio internet radio player.
package domain

import (
	"strings"
)

// Station represents a single internet radio station from the catalog.
// Stations are loaded once at startup and never mutated afterwards.
type Station struct {
	// ID is the unique identifier of the station within the catalog
	ID string

	// Name is the display name
	Name string

	// StreamURL is the HTTP endpoint of the audio stream (or a .pls/.m3u playlist pointing to one)
	StreamURL string

	// ImageURL points to the station artwork
	ImageURL string

	// Genre is a free-form genre label used for display and search
	Genre string

	// Description is a short blurb shown under the station name
	Description string
}

// Matches reports whether the station name or genre contains the query, ignoring case.
// An empty query matches every station.
func (s Station) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Genre), q)
}

// PlaybackState represents the state of the playback controller.
type PlaybackState int

const (
	// StateIdle indicates no pipeline is live
	StateIdle PlaybackState = iota

	// StateLoading indicates a station switch is opening a new stream
	StateLoading

	// StatePlaying indicates the media source reported playback
	StatePlaying

	// StatePaused indicates playback is paused (including when blocked by the output)
	StatePaused

	// StateErrored indicates the last station switch failed
	StateErrored
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// FrequencySnapshot holds one magnitude sample (0-255) per frequency bin.
// It is refilled in place every frame and has no identity beyond its current contents.
type FrequencySnapshot []uint8

// NewFrequencySnapshot allocates a snapshot sized for the given configuration.
func NewFrequencySnapshot(cfg AnalysisConfig) FrequencySnapshot {
	return make(FrequencySnapshot, cfg.BinCount())
}

// FrameHandle identifies one scheduled frame loop.
// It is opaque to callers and only meaningful to the scheduler that issued it.
type FrameHandle uint64

const (
	// InvalidFrameHandle represents the absence of a frame loop
	InvalidFrameHandle FrameHandle = 0
)

// Theme names accepted by the preference layer.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// MaxVolume is the output volume used unless a preference overrides it.
const MaxVolume = 1.0
