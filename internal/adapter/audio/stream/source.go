// Package stream provides the network MediaSource: HTTP radio streams decoded with beep.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Volume curve: the slider is perceptual, effects.Volume works in base-2 exponents.
const (
	VolumeCurveExponent = 0.5
	MinVolumeExponent   = -10.0
	ResampleQuality     = 4
	SampleBufferSize    = 8192
	decodeChunk         = 4096
	playlistFetchLimit  = 64 * 1024
)

// errStreamEnded is reported when a live stream stops delivering audio.
var errStreamEnded = errors.New("stream ended unexpectedly")

// NewHTTPClient returns a client tuned for long-lived radio streams: no overall timeout,
// bounded connection setup and no transparent compression.
func NewHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: connectTimeout + 5*time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
		},
	}
}

// Factory creates network media sources sharing one HTTP client and one output device.
type Factory struct {
	logger    *slog.Logger
	client    *http.Client
	output    Output
	userAgent string
}

// NewFactory creates a source factory.
func NewFactory(logger *slog.Logger, client *http.Client, output Output, userAgent string) *Factory {
	return &Factory{
		logger:    logger.With(slog.String("service", "MediaSource")),
		client:    client,
		output:    output,
		userAgent: userAgent,
	}
}

// NewSource creates a fresh, unloaded source.
func (f *Factory) NewSource() ports.MediaSource {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Source{
		logger:    f.logger.With(slog.String("source_id", id)),
		id:        id,
		client:    f.client,
		output:    f.output,
		userAgent: f.userAgent,
		ctx:       ctx,
		cancel:    cancel,
		volume:    domain.MaxVolume,
		ended:     make(chan error, 1),
	}
}

// sinkRef boxes the connected sink so the audio goroutine can read it without locks.
type sinkRef struct {
	sink ports.SampleSink
}

// Source is a MediaSource backed by an HTTP audio stream.
//
// Load runs on its own goroutine; lifecycle events are emitted from that goroutine
// and from the caller of Play and Pause.
//
// Thread-safety: This implementation is thread-safe.
type Source struct {
	logger    *slog.Logger
	id        string
	client    *http.Client
	output    Output
	userAgent string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sink  atomic.Pointer[sinkRef]
	ended chan error

	mu        sync.Mutex
	listeners []domain.MediaEventHandler
	connected bool
	loading   bool
	loaded    bool
	started   bool // ctrl handed to the output
	disposed  bool
	volume    float64
	body      io.Closer
	decoder   beep.StreamSeekCloser
	vol       *effects.Volume
	ctrl      *beep.Ctrl
}

// ID returns the unique source identifier.
func (s *Source) ID() string {
	return s.id
}

// Load opens url in the background. Only the first call has an effect.
func (s *Source) Load(url string) {
	s.mu.Lock()
	if s.disposed || s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.load(url)
}

func (s *Source) load(rawURL string) {
	defer s.wg.Done()

	decoder, samples, err := s.open(rawURL)
	if err == nil {
		s.wg.Add(2)
		go s.pump(decoder, samples)
		go s.watch()
		s.emit(domain.MediaEvent{Kind: domain.MediaLoaded})
		return
	}

	if s.ctx.Err() != nil {
		s.logger.Debug("load abandoned", slog.Any("error", err))
		return
	}

	s.logger.Warn("stream load failed", slog.String("url", rawURL), slog.Any("error", err))
	var mediaErr *domain.MediaError
	if !errors.As(err, &mediaErr) {
		err = domain.NewMediaLoadError(rawURL, 0, err)
	}
	s.emit(domain.MediaEvent{Kind: domain.MediaErrored, Err: err})
}

// open resolves, connects and decodes the stream, leaving a paused ctrl ready to play.
// The returned channel is fed by pump and drained by the output.
func (s *Source) open(rawURL string) (beep.StreamSeekCloser, chan [2]float64, error) {
	resp, err := s.get(rawURL)
	if err != nil {
		return nil, nil, domain.NewMediaLoadError(rawURL, 0, err)
	}

	streamURL := rawURL
	if isPlaylist(rawURL, resp.Header.Get("Content-Type")) {
		urls, perr := parsePlaylist(io.LimitReader(resp.Body, playlistFetchLimit))
		resp.Body.Close()
		if perr != nil {
			return nil, nil, domain.NewMediaLoadError(rawURL, 0, perr)
		}
		streamURL = urls[0]
		s.logger.Debug("playlist resolved", slog.String("stream_url", streamURL), slog.Int("entries", len(urls)))

		if resp, err = s.get(streamURL); err != nil {
			return nil, nil, domain.NewMediaLoadError(streamURL, 0, err)
		}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, domain.NewMediaLoadError(streamURL, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var audio io.Reader = resp.Body
	if metaint, _ := strconv.Atoi(resp.Header.Get("icy-metaint")); metaint > 0 {
		s.logger.Debug("ICY metadata enabled", slog.Int("metaint", metaint))
		audio = newICYReader(resp.Body, metaint, func(title string) {
			s.emit(domain.MediaEvent{Kind: domain.MediaTitle, Title: title})
		})
	}

	br := bufio.NewReaderSize(audio, 64*1024)
	head, _ := br.Peek(sniffSize)
	codec := selectCodec(resp.Header.Get("Content-Type"), head)
	if codec == CodecUnknown {
		resp.Body.Close()
		return nil, nil, domain.NewMediaLoadError(streamURL, 0,
			fmt.Errorf("%w (content-type %q)", domain.ErrUnsupportedFormat, resp.Header.Get("Content-Type")))
	}

	decoder, format, err := decode(codec, readCloser{Reader: br, Closer: resp.Body})
	if err != nil {
		resp.Body.Close()
		return nil, nil, domain.NewMediaLoadError(streamURL, 0, fmt.Errorf("decode %s: %w", codec, err))
	}
	s.logger.Debug("stream decoded",
		slog.String("codec", string(codec)),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int("channels", format.NumChannels))

	samples := make(chan [2]float64, SampleBufferSize)
	var streamer beep.Streamer = &buffered{samples: samples}
	if rate := s.output.SampleRate(); format.SampleRate != rate {
		streamer = beep.Resample(ResampleQuality, format.SampleRate, rate, streamer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		decoder.Close()
		resp.Body.Close()
		return nil, nil, context.Canceled
	}

	s.body = resp.Body
	s.decoder = decoder
	s.vol = &effects.Volume{
		Streamer: &tap{src: s, s: streamer},
		Base:     2,
		Volume:   volumeExponent(s.volume),
		Silent:   s.volume == 0,
	}
	s.ctrl = &beep.Ctrl{Streamer: s.vol, Paused: true}
	s.loaded = true
	return decoder, samples, nil
}

// pump decodes the network stream into samples so the output never waits on the network.
func (s *Source) pump(decoder beep.Streamer, samples chan<- [2]float64) {
	defer s.wg.Done()
	defer close(samples)

	chunk := make([][2]float64, decodeChunk)
	for {
		n, ok := decoder.Stream(chunk)
		for i := 0; i < n; i++ {
			select {
			case samples <- chunk[i]:
			case <-s.ctx.Done():
				return
			}
		}
		if !ok {
			err := decoder.Err()
			if err == nil {
				err = errStreamEnded
			}
			select {
			case s.ended <- err:
			default:
			}
			return
		}
		if s.ctx.Err() != nil {
			return
		}
	}
}

func (s *Source) get(rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Icy-MetaData", "1")
	return s.client.Do(req)
}

// watch turns an end of stream seen by the audio goroutine into an errored event.
func (s *Source) watch() {
	defer s.wg.Done()

	select {
	case <-s.ctx.Done():
	case err := <-s.ended:
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Warn("stream dropped", slog.Any("error", err))
		s.emit(domain.MediaEvent{Kind: domain.MediaErrored, Err: domain.NewMediaLoadError("", 0, err)})
	}
}

// Play unpauses the stream, opening the output device on first use.
func (s *Source) Play() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return domain.ErrSourceDisposed
	}
	if !s.loaded {
		s.mu.Unlock()
		return fmt.Errorf("play before load completed: %w", domain.ErrInvalidTransition)
	}

	if err := s.output.Init(); err != nil {
		s.mu.Unlock()
		s.logger.Warn("audio output refused", slog.Any("error", err))
		return domain.NewPlaybackBlockedError(err)
	}

	ctrl := s.ctrl
	first := !s.started
	s.started = true
	s.mu.Unlock()

	s.output.Lock()
	ctrl.Paused = false
	s.output.Unlock()
	if first {
		s.output.Play(ctrl)
	}

	s.emit(domain.MediaEvent{Kind: domain.MediaPlaying})
	return nil
}

// Pause silences the stream. The connection stays open.
func (s *Source) Pause() {
	s.mu.Lock()
	if s.disposed || !s.started {
		s.mu.Unlock()
		return
	}
	ctrl := s.ctrl
	s.mu.Unlock()

	s.output.Lock()
	ctrl.Paused = true
	s.output.Unlock()

	s.emit(domain.MediaEvent{Kind: domain.MediaPaused})
}

// SetVolume sets the output volume (0.0 to 1.0).
func (s *Source) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return domain.ErrSourceDisposed
	}
	s.volume = volume
	vol := s.vol
	started := s.started
	s.mu.Unlock()

	if vol == nil {
		return nil
	}
	if started {
		s.output.Lock()
		defer s.output.Unlock()
	}
	vol.Volume = volumeExponent(volume)
	vol.Silent = volume == 0
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

// Connect routes decoded samples to sink. A source accepts one sink over its lifetime.
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
	s.sink.Store(&sinkRef{sink: sink})
	return nil
}

// Disconnect stops routing samples to the sink.
func (s *Source) Disconnect() {
	s.sink.Store(nil)
}

// Dispose stops the stream and releases the connection, decoder and listeners.
func (s *Source) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.listeners = nil
	ctrl := s.ctrl
	started := s.started
	decoder := s.decoder
	body := s.body
	s.mu.Unlock()

	s.sink.Store(nil)
	s.cancel()

	// Detach from the mix; a nil streamer makes the output drop the ctrl
	if ctrl != nil && started {
		s.output.Lock()
		ctrl.Streamer = nil
		s.output.Unlock()
	}

	s.wg.Wait()

	var errs []error
	if decoder != nil {
		if err := decoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close decoder: %w", err))
		}
	}
	if body != nil {
		if err := body.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close body: %w", err))
		}
	}

	s.logger.Debug("source disposed")
	return errors.Join(errs...)
}

func (s *Source) emit(event domain.MediaEvent) {
	event.SourceID = s.id

	s.mu.Lock()
	listeners := make([]domain.MediaEventHandler, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// buffered feeds the output from the pump channel without ever blocking.
// An empty channel plays silence so network stalls do not hold the output lock.
type buffered struct {
	samples <-chan [2]float64
	done    bool
}

func (b *buffered) Stream(samples [][2]float64) (int, bool) {
	if b.done {
		return 0, false
	}

	filled := 0
fill:
	for filled < len(samples) {
		select {
		case sample, more := <-b.samples:
			if !more {
				b.done = true
				break fill
			}
			samples[filled] = sample
			filled++
		default:
			break fill
		}
	}

	if b.done && filled == 0 {
		return 0, false
	}
	clear(samples[filled:])
	return len(samples), true
}

func (b *buffered) Err() error {
	return nil
}

// tap copies audio into the connected sink on its way to the output.
type tap struct {
	src *Source
	s   beep.Streamer
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if n > 0 {
		if ref := t.src.sink.Load(); ref != nil {
			ref.sink.WriteSamples(samples[:n])
		}
	}
	return n, ok
}

func (t *tap) Err() error {
	return t.s.Err()
}

// readCloser pairs a buffered reader with the body it wraps.
type readCloser struct {
	io.Reader
	io.Closer
}

// volumeExponent maps a linear 0..1 volume onto effects.Volume's base-2 exponent.
func volumeExponent(v float64) float64 {
	if v <= 0 {
		return MinVolumeExponent
	}
	if v >= 1 {
		return 0
	}
	return (1.0 - math.Pow(v, VolumeCurveExponent)) * MinVolumeExponent
}

// Verify interface compliance
var (
	_ ports.MediaSource        = (*Source)(nil)
	_ ports.MediaSourceFactory = (*Factory)(nil)
)
