package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// PlayPauseButton shows a pause icon while playing and a play icon otherwise.
// It only reflects state; the owner decides what a tap does and calls SetPlaying.
type PlayPauseButton struct {
	widget.Button

	playing bool
}

// NewPlayPauseButton creates the button. onToggle runs on tap.
func NewPlayPauseButton(onToggle func()) *PlayPauseButton {
	b := &PlayPauseButton{}
	b.Icon = theme.MediaPlayIcon()
	b.Importance = widget.HighImportance
	b.OnTapped = onToggle
	b.ExtendBaseWidget(b)
	return b
}

// SetPlaying switches the icon.
func (b *PlayPauseButton) SetPlaying(playing bool) {
	if b.playing == playing {
		return
	}
	b.playing = playing
	if playing {
		b.SetIcon(theme.MediaPauseIcon())
	} else {
		b.SetIcon(theme.MediaPlayIcon())
	}
}

// Playing reports the displayed state.
func (b *PlayPauseButton) Playing() bool {
	return b.playing
}

// Label returns the accessible name for the current state.
func (b *PlayPauseButton) Label() string {
	if b.playing {
		return "Pause"
	}
	return "Play"
}

// MinSize makes the button a large square target.
func (b *PlayPauseButton) MinSize() fyne.Size {
	size := b.Button.MinSize()
	edge := max(size.Width, size.Height, 56)
	return fyne.NewSize(edge, edge)
}
