package domain

// MediaEventKind identifies a lifecycle event emitted by a media source.
type MediaEventKind int

const (
	// MediaLoaded is emitted once the stream is open and decodable
	MediaLoaded MediaEventKind = iota

	// MediaPlaying is emitted when audio actually starts flowing to the output
	MediaPlaying

	// MediaPaused is emitted after a pause request took effect
	MediaPaused

	// MediaErrored is emitted when loading fails or the stream drops; Err carries the kind
	MediaErrored

	// MediaTitle is emitted when in-band stream metadata announces a new title
	MediaTitle
)

// String returns a human-readable representation of the event kind.
func (k MediaEventKind) String() string {
	switch k {
	case MediaLoaded:
		return "loaded"
	case MediaPlaying:
		return "playing"
	case MediaPaused:
		return "paused"
	case MediaErrored:
		return "errored"
	case MediaTitle:
		return "title"
	default:
		return "unknown"
	}
}

// MediaEvent is a lifecycle notification from one media source.
type MediaEvent struct {
	Kind     MediaEventKind
	SourceID string
	Err      error  // Set for MediaErrored
	Title    string // Set for MediaTitle
}

// MediaEventHandler receives media source lifecycle events.
type MediaEventHandler func(event MediaEvent)
