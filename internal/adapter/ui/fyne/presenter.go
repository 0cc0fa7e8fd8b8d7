// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
	"github.com/tejashwikalptaru/goradio/internal/service"
)

// artworkWorkers bounds concurrent artwork downloads.
const artworkWorkers = 4

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
//
// Methods are called from whichever goroutine published the triggering event,
// so implementations must hand widget changes to the UI thread.
type UIView interface {
	// Station grid
	SetStations(stations []domain.Station)
	SetStationArtwork(id string, data []byte)
	SetSuggestions(suggestions []string)

	// Now playing
	SetActiveStation(station domain.Station)
	SetArtwork(data []byte)
	ClearArtwork()
	SetStreamTitle(title string)
	SetPlaybackState(state domain.PlaybackState)
	SetLevel(level float64)

	// Settings
	SetVolume(volume float64)
	SetTheme(theme string)

	// Notifications
	ShowNotification(title, message string)
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate UI commands to service method calls
// - Fetch station artwork off the event path
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	controller        *service.PlaybackController
	stationService    *service.StationService
	preferenceService *service.PreferenceService
	artwork           ports.ArtworkProvider

	eventBus      ports.EventBus
	subscriptions []domain.SubscriptionID

	// UI view
	view UIView

	// Presentation state
	current *domain.Station
	closed  bool // no downloads start once set

	// Artwork downloads
	ctx    context.Context
	cancel context.CancelFunc
	slots  chan struct{}
	wg     sync.WaitGroup

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
func NewPresenter(
	logger *slog.Logger,
	controller *service.PlaybackController,
	stationService *service.StationService,
	preferenceService *service.PreferenceService,
	artwork ports.ArtworkProvider,
	eventBus ports.EventBus,
	view UIView,
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:            logger.With(slog.String("service", "Presenter")),
		controller:        controller,
		stationService:    stationService,
		preferenceService: preferenceService,
		artwork:           artwork,
		eventBus:          eventBus,
		view:              view,
		ctx:               ctx,
		cancel:            cancel,
		slots:             make(chan struct{}, artworkWorkers),
	}

	// Subscribe to events
	p.subscribeToEvents()

	// Sync UI with current state
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventStationSelected: p.onStationSelected,
		domain.EventStateChanged:    p.onStateChanged,
		domain.EventStreamTitle:     p.onStreamTitle,
		domain.EventLevelSampled:    p.onLevelSampled,
		domain.EventPlaybackBlocked: p.onPlaybackBlocked,
		domain.EventPlaybackErrored: p.onPlaybackErrored,
		domain.EventPipelineFault:   p.onPipelineFault,

		// Preference events
		domain.EventVolumeChanged: p.onVolumeChanged,
		domain.EventThemeChanged:  p.onThemeChanged,

		// Catalog events
		domain.EventCatalogFiltered: p.onCatalogFiltered,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	p.view.SetVolume(p.preferenceService.GetVolume())
	p.view.SetTheme(p.preferenceService.GetTheme())
	p.view.SetStations(p.stationService.Visible())
	p.view.SetPlaybackState(p.controller.State())

	if st := p.controller.CurrentStation(); st != nil {
		p.setCurrent(*st)
	} else {
		p.view.ClearArtwork()
	}

	for _, st := range p.stationService.All() {
		p.loadArtwork(st.ImageURL, func(data []byte) {
			p.view.SetStationArtwork(st.ID, data)
		})
	}
}

// Event handlers

func (p *Presenter) onStationSelected(event domain.Event) {
	e, ok := event.(domain.StationSelectedEvent)
	if !ok {
		return
	}
	p.setCurrent(e.Station)
}

func (p *Presenter) setCurrent(station domain.Station) {
	p.mu.Lock()
	p.current = &station
	p.mu.Unlock()

	p.view.SetActiveStation(station)
	p.view.SetStreamTitle("")

	if station.ImageURL == "" {
		p.view.ClearArtwork()
		return
	}
	p.loadArtwork(station.ImageURL, func(data []byte) {
		// A later selection owns the header now
		if cur := p.Current(); cur == nil || cur.ID != station.ID {
			return
		}
		p.view.SetArtwork(data)
	})
}

func (p *Presenter) onStateChanged(event domain.Event) {
	e, ok := event.(domain.StateChangedEvent)
	if !ok {
		return
	}
	p.view.SetPlaybackState(e.To)
}

func (p *Presenter) onStreamTitle(event domain.Event) {
	e, ok := event.(domain.StreamTitleChangedEvent)
	if !ok {
		return
	}
	p.view.SetStreamTitle(e.Title)
}

func (p *Presenter) onLevelSampled(event domain.Event) {
	e, ok := event.(domain.LevelSampledEvent)
	if !ok {
		return
	}
	p.view.SetLevel(e.Level)
}

func (p *Presenter) onPlaybackBlocked(event domain.Event) {
	e, ok := event.(domain.PlaybackBlockedEvent)
	if !ok {
		return
	}
	p.view.ShowNotification("Playback Blocked",
		fmt.Sprintf("%s is ready. Press play to start audio.", e.Station.Name))
}

func (p *Presenter) onPlaybackErrored(event domain.Event) {
	e, ok := event.(domain.PlaybackErroredEvent)
	if !ok {
		return
	}

	message := fmt.Sprintf("%s could not be played: %v", e.Station.Name, e.Error)
	var mediaErr *domain.MediaError
	if errors.As(e.Error, &mediaErr) && mediaErr.StatusCode != 0 {
		message = fmt.Sprintf("%s answered with HTTP %d", e.Station.Name, mediaErr.StatusCode)
	}
	p.view.ShowNotification("Playback Error", message)
}

func (p *Presenter) onPipelineFault(event domain.Event) {
	e, ok := event.(domain.PipelineFaultEvent)
	if !ok {
		return
	}
	p.logger.Error("pipeline fault", slog.String("op", e.Op), slog.Any("error", e.Error))
	p.view.ShowNotification("Audio Pipeline Error", "Playback was reset. Select a station to continue.")
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	p.view.SetVolume(e.Volume)
}

func (p *Presenter) onThemeChanged(event domain.Event) {
	e, ok := event.(domain.ThemeChangedEvent)
	if !ok {
		return
	}
	p.view.SetTheme(e.Theme)
}

func (p *Presenter) onCatalogFiltered(event domain.Event) {
	e, ok := event.(domain.CatalogFilteredEvent)
	if !ok {
		return
	}
	p.view.SetStations(e.Stations)
}

// loadArtwork downloads url in the background and hands the bytes to apply.
// Failures only get logged; the view keeps its placeholder.
func (p *Presenter) loadArtwork(url string, apply func([]byte)) {
	if p.artwork == nil || url == "" {
		return
	}

	// Add must not race with the Wait in Shutdown
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		select {
		case p.slots <- struct{}{}:
			defer func() { <-p.slots }()
		case <-p.ctx.Done():
			return
		}

		data, err := p.artwork.Fetch(p.ctx, url)
		if err != nil {
			if p.ctx.Err() == nil {
				p.logger.Debug("artwork unavailable", slog.String("url", url), slog.Any("error", err))
			}
			return
		}
		if p.ctx.Err() != nil {
			return
		}
		apply(data)
	}()
}

// UI Command handlers (called by UI)

// OnStationSelected handles a tap on a station card.
func (p *Presenter) OnStationSelected(station domain.Station) {
	if err := p.controller.SelectStation(station); err != nil {
		p.logger.Error("station select failed", slog.String("station_id", station.ID), slog.Any("error", err))
		p.view.ShowNotification("Playback Error",
			fmt.Sprintf("Failed to switch to %s: %v", station.Name, err))
	}
}

// OnPlayPauseClicked toggles playback. After a failure it retries the current station.
func (p *Presenter) OnPlayPauseClicked() {
	state := p.controller.State()
	if state == domain.StateIdle || state == domain.StateErrored {
		if st := p.controller.CurrentStation(); st != nil {
			p.OnStationSelected(*st)
		}
		return
	}

	if err := p.controller.TogglePlayPause(); err != nil {
		p.logger.Error("play/pause failed", slog.Any("error", err))
		p.view.ShowNotification("Playback Error",
			fmt.Sprintf("Failed to toggle playback: %v", err))
	}
}

// OnNextStation switches to the next visible station.
func (p *Presenter) OnNextStation() {
	p.step(p.stationService.Next)
}

// OnPreviousStation switches to the previous visible station.
func (p *Presenter) OnPreviousStation() {
	p.step(p.stationService.Previous)
}

func (p *Presenter) step(neighbor func(id string) (domain.Station, error)) {
	id := ""
	if cur := p.Current(); cur != nil {
		id = cur.ID
	}

	st, err := neighbor(id)
	if err != nil {
		p.logger.Debug("no station to switch to", slog.Any("error", err))
		return
	}
	p.OnStationSelected(st)
}

// PlayFirstStation selects the first visible station, if any.
func (p *Presenter) PlayFirstStation() {
	visible := p.stationService.Visible()
	if len(visible) == 0 {
		return
	}
	p.OnStationSelected(visible[0])
}

// OnVolumeChanged handles volume slider changes (0 to 1).
func (p *Presenter) OnVolumeChanged(volume float64) {
	if err := p.controller.SetVolume(volume); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
		p.view.ShowNotification("Volume Error",
			fmt.Sprintf("Failed to change volume: %v", err))
		return
	}
	if err := p.preferenceService.SetVolume(volume); err != nil {
		p.logger.Warn("failed to persist volume", slog.Any("error", err))
	}
}

// OnSearchChanged filters the station grid and refreshes the completion list.
func (p *Presenter) OnSearchChanged(query string) {
	p.stationService.Filter(query)
	p.view.SetSuggestions(p.stationService.Suggestions(query))
}

// OnThemeToggled switches between the light and dark theme.
func (p *Presenter) OnThemeToggled() {
	if _, err := p.preferenceService.ToggleTheme(); err != nil {
		p.logger.Warn("failed to persist theme", slog.Any("error", err))
	}
}

// Current returns the station shown in the header, or nil.
func (p *Presenter) Current() *domain.Station {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	st := *p.current
	return &st
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.eventBus.Unsubscribe(id)
		}

		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		// Abort downloads and wait for their goroutines
		p.cancel()
		p.wg.Wait()
	})
}
