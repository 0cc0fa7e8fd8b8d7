package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// shutdownTimeout bounds how long Shutdown waits for the scheduler to tear the pipeline down.
const shutdownTimeout = 5 * time.Second

// ControllerConfig tunes the playback controller.
type ControllerConfig struct {
	// Analysis shapes every analysis graph and snapshot buffer
	Analysis domain.AnalysisConfig

	// Volume is applied to every new media source (0.0 to 1.0)
	Volume float64

	// StrictLifecycle panics on pipeline invariant violations instead of recovering to Idle
	StrictLifecycle bool
}

// DefaultControllerConfig returns the configuration used by the player.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Analysis: domain.DefaultAnalysisConfig(),
		Volume:   domain.MaxVolume,
	}
}

// PlaybackController owns the live (MediaSource, AnalysisGraph) pair and the two frame loops
// reading from it, and drives the playback state machine:
//
//	Idle -> Loading -> Playing <-> Paused
//	any  -> Loading            (SelectStation)
//	Loading -> Errored -> Idle (load failure)
//
// Public methods may be called from any goroutine. They only record the request and post
// the work to the scheduler, so every pipeline mutation and every frame callback runs on
// the scheduler thread, one at a time.
type PlaybackController struct {
	// Dependencies (injected)
	logger    *slog.Logger
	sources   ports.MediaSourceFactory
	graphs    ports.AnalysisGraphFactory
	scheduler ports.Scheduler
	bus       ports.EventBus
	cfg       ControllerConfig

	sampler  *LevelSampler
	renderer *FrameRenderer

	// Pipeline, touched only on the scheduler thread
	source     ports.MediaSource
	graph      ports.AnalysisGraph
	levelLoop  domain.FrameHandle
	renderLoop domain.FrameHandle
	generation uint64

	// State mirrored for readers on other goroutines
	mu        sync.RWMutex
	state     domain.PlaybackState
	station   *domain.Station
	volume    float64
	pending   *domain.Station // latest requested station not yet switched to
	switching bool            // a switch task is queued on the scheduler
	closed    bool
}

// NewPlaybackController creates a controller in the Idle state.
// visualizer may be nil when nothing is drawn (headless runs, tests).
func NewPlaybackController(
	logger *slog.Logger,
	sources ports.MediaSourceFactory,
	graphs ports.AnalysisGraphFactory,
	scheduler ports.Scheduler,
	bus ports.EventBus,
	visualizer ports.Visualizer,
	cfg ControllerConfig,
) *PlaybackController {
	if cfg.Volume < 0 || cfg.Volume > 1 {
		cfg.Volume = domain.MaxVolume
	}

	c := &PlaybackController{
		logger:     logger.With(slog.String("service", "PlaybackController")),
		sources:    sources,
		graphs:     graphs,
		scheduler:  scheduler,
		bus:        bus,
		cfg:        cfg,
		sampler:    NewLevelSampler(logger, bus, cfg.Analysis),
		renderer:   NewFrameRenderer(visualizer, cfg.Analysis),
		levelLoop:  domain.InvalidFrameHandle,
		renderLoop: domain.InvalidFrameHandle,
		state:      domain.StateIdle,
		volume:     cfg.Volume,
	}

	c.logger.Debug("playback controller initialized",
		slog.Int("fft_size", cfg.Analysis.FFTSize),
		slog.Bool("strict", cfg.StrictLifecycle))
	return c
}

// SelectStation switches playback to station. It is valid from any state.
// Requests arriving faster than the scheduler can run them are coalesced:
// only the latest one builds a pipeline.
func (c *PlaybackController) SelectStation(station domain.Station) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrSchedulerClosed
	}
	c.pending = &station
	queued := c.switching
	c.switching = true
	c.mu.Unlock()

	c.logger.Debug("station requested", slog.String("station_id", station.ID), slog.Bool("coalesced", queued))
	if queued {
		return nil
	}

	if err := c.scheduler.Post(c.applyPendingSelection); err != nil {
		c.mu.Lock()
		c.switching = false
		c.pending = nil
		c.mu.Unlock()
		return err
	}
	return nil
}

// TogglePlayPause pauses a playing station or resumes a paused one.
// In any other state the request is ignored.
func (c *PlaybackController) TogglePlayPause() error {
	return c.scheduler.Post(c.togglePlayPause)
}

// SetVolume sets the output volume (0.0 to 1.0) of the current and every future source.
func (c *PlaybackController) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	c.mu.Lock()
	c.volume = volume
	c.mu.Unlock()

	return c.scheduler.Post(func() {
		if c.source == nil {
			return
		}
		if err := c.source.SetVolume(volume); err != nil {
			c.logger.Warn("failed to apply volume", slog.Any("error", err))
		}
	})
}

// State returns the current playback state.
func (c *PlaybackController) State() domain.PlaybackState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentStation returns the last selected station, or nil if none was selected.
func (c *PlaybackController) CurrentStation() *domain.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stationLocked()
}

// Volume returns the volume applied to sources.
func (c *PlaybackController) Volume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume
}

// Level returns the last sampled audio level (0.0 to 1.0).
func (c *PlaybackController) Level() float64 {
	return c.sampler.Level()
}

// Shutdown releases the live pipeline. Later requests fail with domain.ErrSchedulerClosed.
func (c *PlaybackController) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.pending = nil
	c.mu.Unlock()

	done := make(chan struct{})
	release := func() {
		c.teardown()
		c.setState(domain.StateIdle)
	}

	if err := c.scheduler.Post(func() {
		release()
		close(done)
	}); err != nil {
		// The scheduler thread is gone, so nothing else can touch the pipeline
		release()
		return nil
	}

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		return domain.NewServiceError("PlaybackController", "shutdown", "timed out waiting for pipeline teardown", nil)
	}

	c.logger.Debug("playback controller shut down")
	return nil
}

func (c *PlaybackController) applyPendingSelection() {
	c.mu.Lock()
	station := c.pending
	c.pending = nil
	c.switching = false
	closed := c.closed
	c.mu.Unlock()

	if station == nil || closed {
		return
	}
	c.switchTo(*station)
}

// switchTo runs the station-switch transaction. Both loops are cancelled before the old
// pair is disposed, and the new loops start only once the new graph is attached.
func (c *PlaybackController) switchTo(station domain.Station) {
	c.logger.Info("switching station",
		slog.String("station_id", station.ID),
		slog.String("name", station.Name))

	c.teardown()

	c.generation++
	gen := c.generation

	c.mu.Lock()
	c.station = &station
	volume := c.volume
	c.mu.Unlock()

	c.bus.Publish(domain.NewStationSelectedEvent(station))
	c.setState(domain.StateLoading)

	src := c.sources.NewSource()
	src.OnEvent(func(e domain.MediaEvent) {
		if err := c.scheduler.Post(func() { c.handleMediaEvent(gen, e) }); err != nil {
			c.logger.Debug("media event dropped", slog.String("kind", e.Kind.String()), slog.Any("error", err))
		}
	})
	if err := src.SetVolume(volume); err != nil {
		c.logger.Warn("failed to set initial volume", slog.Any("error", err))
	}

	c.source = src
	src.Load(station.StreamURL)
}

// teardown cancels both loops, then disposes the graph, then the source.
// Cleanup failures are logged and never stop the remaining steps.
func (c *PlaybackController) teardown() {
	c.scheduler.Cancel(c.levelLoop)
	c.scheduler.Cancel(c.renderLoop)
	c.levelLoop = domain.InvalidFrameHandle
	c.renderLoop = domain.InvalidFrameHandle

	if c.graph != nil {
		if err := c.graph.Dispose(); err != nil {
			c.logger.Warn("failed to dispose analysis graph", slog.Any("error", err))
		}
		c.graph = nil
	}

	if c.source != nil {
		if err := c.source.Dispose(); err != nil {
			c.logger.Warn("failed to dispose media source",
				slog.String("source_id", c.source.ID()),
				slog.Any("error", err))
		}
		c.source = nil
	}

	c.sampler.Reset()
}

// handleMediaEvent applies a lifecycle event from the source created in generation gen.
// Events from disposed sources may still be queued and are dropped.
func (c *PlaybackController) handleMediaEvent(gen uint64, e domain.MediaEvent) {
	if gen != c.generation || c.source == nil {
		c.logger.Debug("stale media event ignored",
			slog.String("kind", e.Kind.String()),
			slog.String("source_id", e.SourceID))
		return
	}

	switch e.Kind {
	case domain.MediaLoaded:
		c.onLoaded()
	case domain.MediaPlaying:
		c.setState(domain.StatePlaying)
	case domain.MediaPaused:
		if c.State() == domain.StatePlaying {
			c.setState(domain.StatePaused)
		}
	case domain.MediaErrored:
		c.fail(e.Err)
	case domain.MediaTitle:
		if station := c.CurrentStation(); station != nil {
			c.bus.Publish(domain.NewStreamTitleChangedEvent(*station, e.Title))
		}
	}
}

func (c *PlaybackController) onLoaded() {
	graph, err := c.graphs.Attach(c.source, c.cfg.Analysis)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAttached) {
			c.fault("attach", err)
			return
		}
		c.fail(err)
		return
	}

	c.graph = graph
	c.levelLoop = c.scheduler.Start(c.levelFrame)
	c.renderLoop = c.scheduler.Start(c.renderFrame)
	c.play()
}

// play asks the source to play. The state moves to Playing only when the source reports it.
func (c *PlaybackController) play() {
	err := c.source.Play()
	if err == nil {
		return
	}

	if errors.Is(err, domain.ErrPlaybackBlocked) {
		c.logger.Info("playback blocked, waiting for user", slog.Any("error", err))
		c.setState(domain.StatePaused)
		if station := c.CurrentStation(); station != nil {
			c.bus.Publish(domain.NewPlaybackBlockedEvent(*station, err))
		}
		return
	}
	c.fail(err)
}

func (c *PlaybackController) togglePlayPause() {
	switch state := c.State(); state {
	case domain.StatePlaying:
		c.source.Pause()
		c.setState(domain.StatePaused)
	case domain.StatePaused:
		c.play()
	default:
		c.logger.Debug("toggle ignored", slog.String("state", state.String()))
	}
}

// fail tears the pipeline down and settles in Idle, passing through Errored.
func (c *PlaybackController) fail(err error) {
	station := c.CurrentStation()
	c.logger.Warn("playback failed", slog.Any("error", err))

	c.teardown()
	c.setState(domain.StateErrored)
	if station != nil {
		c.bus.Publish(domain.NewPlaybackErroredEvent(*station, err))
	}
	c.setState(domain.StateIdle)
}

// fault reports a broken pipeline invariant. In strict mode it panics; otherwise the
// controller recovers to Idle so later station switches still work.
func (c *PlaybackController) fault(op string, err error) {
	c.logger.Error("pipeline invariant violated", slog.String("op", op), slog.Any("error", err))
	c.bus.Publish(domain.NewPipelineFaultEvent(op, err))

	if c.cfg.StrictLifecycle {
		panic(fmt.Sprintf("pipeline %s: %v", op, err))
	}
	c.fail(err)
}

func (c *PlaybackController) levelFrame(time.Time) {
	if c.State() != domain.StatePlaying {
		c.sampler.Reset()
		return
	}
	if err := c.sampler.Sample(c.graph); err != nil {
		c.fault("level snapshot", err)
	}
}

func (c *PlaybackController) renderFrame(time.Time) {
	if c.State() != domain.StatePlaying {
		return
	}
	if err := c.renderer.Render(c.graph); err != nil {
		c.fault("render snapshot", err)
	}
}

func (c *PlaybackController) setState(to domain.PlaybackState) {
	c.mu.Lock()
	from := c.state
	if from == to {
		c.mu.Unlock()
		return
	}
	c.state = to
	station := c.stationLocked()
	c.mu.Unlock()

	c.logger.Debug("state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	c.bus.Publish(domain.NewStateChangedEvent(from, to, station))
}

// stationLocked returns a copy of the current station. Caller must hold mu.
func (c *PlaybackController) stationLocked() *domain.Station {
	if c.station == nil {
		return nil
	}
	station := *c.station
	return &station
}

// Verify that PlaybackController implements the expected interface patterns
var _ interface {
	SelectStation(domain.Station) error
	TogglePlayPause() error
	SetVolume(float64) error
	State() domain.PlaybackState
	CurrentStation() *domain.Station
	Level() float64
	Shutdown() error
} = (*PlaybackController)(nil)
