// Package mock provides in-memory implementations of the MediaSource interfaces.
// These are used for testing services without network access or an audio device.
package mock

import (
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// MockSampleRate is the rate used by the synthetic signal generator.
const MockSampleRate = 44100

// Source is a mock implementation of the MediaSource interface.
// It simulates a stream in memory without actually playing audio.
//
// Thread-safety: This implementation is thread-safe.
type Source struct {
	// Dependencies
	logger *slog.Logger

	id string

	// Behavior configuration (for testing error scenarios)
	failLoad     bool
	blockPlay    bool
	manualEvents bool

	// Stream state
	url         string
	loaded      bool
	playing     bool
	volume      float64
	sink        ports.SampleSink
	connected   bool // true once Connect succeeded, never reset
	disposed    bool
	disposeCall int
	listeners   []domain.MediaEventHandler
	phase       float64

	mu sync.RWMutex

	onDispose func(*Source)
}

// NewSource creates a standalone mock source with default behavior.
func NewSource() *Source {
	return &Source{
		logger: slog.New(slog.DiscardHandler),
		id:     uuid.NewString(),
		volume: domain.MaxVolume,
	}
}

// SetLogger sets the logger for this source.
func (s *Source) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger.With(slog.String("source_id", s.id))
}

// SetFailLoad configures the mock to fail loading streams (for testing).
func (s *Source) SetFailLoad(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = fail
}

// SetBlockPlay configures the mock to reject Play with ErrPlaybackBlocked (for testing).
func (s *Source) SetBlockPlay(block bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockPlay = block
}

// SetManualEvents stops the mock from emitting lifecycle events on its own.
// Tests then drive the lifecycle through Emit.
func (s *Source) SetManualEvents(manual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualEvents = manual
}

// ID returns the unique source identifier.
func (s *Source) ID() string {
	return s.id
}

// Load binds the source to url and reports the outcome as an event.
func (s *Source) Load(url string) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.url = url
	fail := s.failLoad || url == ""
	if !fail {
		s.loaded = true
	}
	manual := s.manualEvents
	s.mu.Unlock()

	if manual {
		return
	}
	if fail {
		s.emit(domain.MediaEvent{Kind: domain.MediaErrored, Err: domain.NewMediaLoadError(url, 0, nil)})
		return
	}
	s.emit(domain.MediaEvent{Kind: domain.MediaLoaded})
}

// Play starts simulated playback.
func (s *Source) Play() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return domain.ErrSourceDisposed
	}
	if s.blockPlay {
		s.mu.Unlock()
		return domain.NewPlaybackBlockedError(nil)
	}
	s.playing = true
	manual := s.manualEvents
	s.mu.Unlock()

	if !manual {
		s.emit(domain.MediaEvent{Kind: domain.MediaPlaying})
	}
	return nil
}

// Pause stops simulated playback.
func (s *Source) Pause() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.playing = false
	manual := s.manualEvents
	s.mu.Unlock()

	if !manual {
		s.emit(domain.MediaEvent{Kind: domain.MediaPaused})
	}
}

// SetVolume sets the simulated output volume.
func (s *Source) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return domain.ErrSourceDisposed
	}
	s.volume = volume
	return nil
}

// OnEvent registers a lifecycle listener.
func (s *Source) OnEvent(handler domain.MediaEventHandler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.listeners = append(s.listeners, handler)
}

// Connect routes generated samples to sink. Only the first call succeeds.
func (s *Source) Connect(sink ports.SampleSink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return domain.ErrAlreadyAttached
	}
	if s.disposed {
		return domain.ErrSourceDisposed
	}
	s.connected = true
	s.sink = sink
	return nil
}

// Disconnect detaches the sink.
func (s *Source) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = nil
}

// Dispose releases the simulated stream. Only the first call has side effects.
func (s *Source) Dispose() error {
	s.mu.Lock()
	s.disposeCall++
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.playing = false
	s.loaded = false
	s.sink = nil
	s.listeners = nil
	onDispose := s.onDispose
	logger := s.logger
	s.mu.Unlock()

	logger.Debug("mock source disposed")
	if onDispose != nil {
		onDispose(s)
	}
	return nil
}

// Emit delivers a lifecycle event to the registered listeners (for testing).
func (s *Source) Emit(kind domain.MediaEventKind) {
	s.emit(domain.MediaEvent{Kind: kind})
}

// EmitError delivers a MediaErrored event carrying err (for testing).
func (s *Source) EmitError(err error) {
	s.emit(domain.MediaEvent{Kind: domain.MediaErrored, Err: err})
}

// EmitTitle delivers a MediaTitle event (for testing).
func (s *Source) EmitTitle(title string) {
	s.emit(domain.MediaEvent{Kind: domain.MediaTitle, Title: title})
}

func (s *Source) emit(event domain.MediaEvent) {
	event.SourceID = s.id

	s.mu.RLock()
	listeners := make([]domain.MediaEventHandler, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

// Feed pushes samples to the connected sink, if any (for testing).
func (s *Source) Feed(samples [][2]float64) {
	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()

	if sink != nil {
		sink.WriteSamples(samples)
	}
}

// FeedSine pushes n samples of a sine wave at freq Hz and the given amplitude.
// The phase carries over between calls so consecutive feeds form one continuous tone.
func (s *Source) FeedSine(freq, amplitude float64, n int) {
	samples := make([][2]float64, n)

	s.mu.Lock()
	step := 2 * math.Pi * freq / MockSampleRate
	for i := range samples {
		v := amplitude * math.Sin(s.phase)
		samples[i] = [2]float64{v, v}
		s.phase += step
	}
	s.phase = math.Mod(s.phase, 2*math.Pi)
	s.mu.Unlock()

	s.Feed(samples)
}

// URL returns the URL passed to Load.
func (s *Source) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// IsPlaying reports whether simulated playback is running.
func (s *Source) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// Volume returns the current simulated volume.
func (s *Source) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// IsDisposed reports whether Dispose has been called.
func (s *Source) IsDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// DisposeCalls returns how many times Dispose was called.
func (s *Source) DisposeCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposeCall
}

// ListenerCount returns the number of registered listeners.
func (s *Source) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// HasSink reports whether a sink is currently connected.
func (s *Source) HasSink() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sink != nil
}

// Verify that Source implements the MediaSource interface
var _ ports.MediaSource = (*Source)(nil)
