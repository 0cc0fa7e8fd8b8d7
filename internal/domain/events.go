// Package domain defines events for the event-driven architecture.
// Events replace the callback system and enable loose coupling between components.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventStationSelected EventType = "station.selected"
	EventStateChanged    EventType = "playback.state_changed"
	EventPlaybackBlocked EventType = "playback.blocked"
	EventPlaybackErrored EventType = "playback.errored"
	EventStreamTitle     EventType = "stream.title"
	EventPipelineFault   EventType = "pipeline.fault"

	// Visualization events
	EventLevelSampled EventType = "level.sampled"

	// Preference events
	EventVolumeChanged EventType = "volume.changed"
	EventThemeChanged  EventType = "theme.changed"

	// Catalog events
	EventCatalogFiltered EventType = "catalog.filtered"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// StationSelectedEvent is published when a station switch begins.
type StationSelectedEvent struct {
	baseEvent
	Station Station
}

// Type returns the event type.
func (e StationSelectedEvent) Type() EventType {
	return EventStationSelected
}

// NewStationSelectedEvent creates a new StationSelectedEvent.
func NewStationSelectedEvent(station Station) StationSelectedEvent {
	return StationSelectedEvent{
		baseEvent: newBaseEvent(),
		Station:   station,
	}
}

// StateChangedEvent is published on every playback state transition.
type StateChangedEvent struct {
	baseEvent
	From    PlaybackState
	To      PlaybackState
	Station *Station // Current station (nil when none was ever selected)
}

// Type returns the event type.
func (e StateChangedEvent) Type() EventType {
	return EventStateChanged
}

// NewStateChangedEvent creates a new StateChangedEvent.
func NewStateChangedEvent(from, to PlaybackState, station *Station) StateChangedEvent {
	return StateChangedEvent{
		baseEvent: newBaseEvent(),
		From:      from,
		To:        to,
		Station:   station,
	}
}

// PlaybackBlockedEvent is published when the output refused to start.
// The controller stays paused until the user toggles playback.
type PlaybackBlockedEvent struct {
	baseEvent
	Station Station
	Error   error
}

// Type returns the event type.
func (e PlaybackBlockedEvent) Type() EventType {
	return EventPlaybackBlocked
}

// NewPlaybackBlockedEvent creates a new PlaybackBlockedEvent.
func NewPlaybackBlockedEvent(station Station, err error) PlaybackBlockedEvent {
	return PlaybackBlockedEvent{
		baseEvent: newBaseEvent(),
		Station:   station,
		Error:     err,
	}
}

// PlaybackErroredEvent is published when a stream fails to load or drops.
type PlaybackErroredEvent struct {
	baseEvent
	Station Station
	Error   error
}

// Type returns the event type.
func (e PlaybackErroredEvent) Type() EventType {
	return EventPlaybackErrored
}

// NewPlaybackErroredEvent creates a new PlaybackErroredEvent.
func NewPlaybackErroredEvent(station Station, err error) PlaybackErroredEvent {
	return PlaybackErroredEvent{
		baseEvent: newBaseEvent(),
		Station:   station,
		Error:     err,
	}
}

// StreamTitleChangedEvent is published when the stream announces a new title (ICY metadata).
type StreamTitleChangedEvent struct {
	baseEvent
	Station Station
	Title   string
}

// Type returns the event type.
func (e StreamTitleChangedEvent) Type() EventType {
	return EventStreamTitle
}

// NewStreamTitleChangedEvent creates a new StreamTitleChangedEvent.
func NewStreamTitleChangedEvent(station Station, title string) StreamTitleChangedEvent {
	return StreamTitleChangedEvent{
		baseEvent: newBaseEvent(),
		Station:   station,
		Title:     title,
	}
}

// PipelineFaultEvent is published when a lifecycle invariant of the pipeline is violated.
// It always indicates a programming error.
type PipelineFaultEvent struct {
	baseEvent
	Op    string
	Error error
}

// Type returns the event type.
func (e PipelineFaultEvent) Type() EventType {
	return EventPipelineFault
}

// NewPipelineFaultEvent creates a new PipelineFaultEvent.
func NewPipelineFaultEvent(op string, err error) PipelineFaultEvent {
	return PipelineFaultEvent{
		baseEvent: newBaseEvent(),
		Op:        op,
		Error:     err,
	}
}

// LevelSampledEvent is published once per frame with the current loudness estimate.
type LevelSampledEvent struct {
	baseEvent
	Level float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e LevelSampledEvent) Type() EventType {
	return EventLevelSampled
}

// NewLevelSampledEvent creates a new LevelSampledEvent.
func NewLevelSampledEvent(level float64) LevelSampledEvent {
	return LevelSampledEvent{
		baseEvent: newBaseEvent(),
		Level:     level,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// ThemeChangedEvent is published when the UI theme changes.
type ThemeChangedEvent struct {
	baseEvent
	Theme string
}

// Type returns the event type.
func (e ThemeChangedEvent) Type() EventType {
	return EventThemeChanged
}

// NewThemeChangedEvent creates a new ThemeChangedEvent.
func NewThemeChangedEvent(theme string) ThemeChangedEvent {
	return ThemeChangedEvent{
		baseEvent: newBaseEvent(),
		Theme:     theme,
	}
}

// CatalogFilteredEvent is published when the visible station list changes after a search.
type CatalogFilteredEvent struct {
	baseEvent
	Query    string
	Stations []Station
}

// Type returns the event type.
func (e CatalogFilteredEvent) Type() EventType {
	return EventCatalogFiltered
}

// NewCatalogFilteredEvent creates a new CatalogFilteredEvent.
func NewCatalogFilteredEvent(query string, stations []Station) CatalogFilteredEvent {
	return CatalogFilteredEvent{
		baseEvent: newBaseEvent(),
		Query:     query,
		Stations:  stations,
	}
}
