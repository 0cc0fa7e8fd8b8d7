// Package analysis turns a media source's signal into frequency snapshots.
//
// The transform follows the usual analyser-node recipe: the latest FFTSize samples are
// Blackman-windowed, transformed, normalized by the window length, smoothed over time,
// converted to decibels and scaled to a byte between MinDecibels and MaxDecibels.
package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"sync"

	"github.com/madelynnblue/go-dsp/fft"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Factory attaches analysis graphs to media sources.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new graph factory.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{logger: logger.With(slog.String("service", "AnalysisGraph"))}
}

// Attach connects a new ring sink to src and builds a graph reading from it.
// The source's attach-once rule surfaces here as domain.ErrAlreadyAttached.
func (f *Factory) Attach(src ports.MediaSource, cfg domain.AnalysisConfig) (ports.AnalysisGraph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ring := NewRing(cfg.FFTSize)
	if err := src.Connect(ring); err != nil {
		return nil, fmt.Errorf("attach source %s: %w", src.ID(), err)
	}

	g := newGraph(src, ring, cfg)
	f.logger.Debug("analysis graph attached",
		slog.String("source_id", src.ID()),
		slog.Int("fft_size", cfg.FFTSize))
	return g, nil
}

// Graph is an AnalysisGraph over one media source.
//
// Thread-safety: Snapshot and Dispose are safe to call from any goroutine.
type Graph struct {
	src  ports.MediaSource
	ring *Ring
	cfg  domain.AnalysisConfig

	mu       sync.Mutex
	window   []float64
	frame    []float64
	smoothed []float64
	bytes    []uint8
	analyzed uint64 // ring position of the last analysis
	fresh    bool   // bytes reflect at least one analysis
	disposed bool
}

func newGraph(src ports.MediaSource, ring *Ring, cfg domain.AnalysisConfig) *Graph {
	n := cfg.FFTSize
	return &Graph{
		src:      src,
		ring:     ring,
		cfg:      cfg,
		window:   blackman(n),
		frame:    make([]float64, n),
		smoothed: make([]float64, cfg.BinCount()),
		bytes:    make([]uint8, cfg.BinCount()),
	}
}

// BinCount returns the number of frequency bins per snapshot.
func (g *Graph) BinCount() int {
	return g.cfg.BinCount()
}

// Snapshot copies the current byte magnitudes into buf.
// The analysis only advances when the source delivered new samples since the last call,
// so repeated calls within one frame return identical data.
func (g *Graph) Snapshot(buf domain.FrequencySnapshot) error {
	if len(buf) != g.cfg.BinCount() {
		return domain.NewValidationError("snapshot", len(buf),
			fmt.Sprintf("buffer length must be %d", g.cfg.BinCount()))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return domain.ErrGraphDisposed
	}

	written := g.ring.CopyLatest(g.frame)
	if !g.fresh || written != g.analyzed {
		g.analyze()
		g.analyzed = written
		g.fresh = true
	}

	copy(buf, g.bytes)
	return nil
}

// analyze runs one transform over g.frame. Callers hold g.mu.
func (g *Graph) analyze() {
	n := len(g.frame)
	for i := range g.frame {
		g.frame[i] *= g.window[i]
	}

	spectrum := fft.FFTReal(g.frame)

	tau := g.cfg.SmoothingTimeConstant
	span := g.cfg.MaxDecibels - g.cfg.MinDecibels
	for k := range g.smoothed {
		mag := cmplx.Abs(spectrum[k]) / float64(n)
		g.smoothed[k] = tau*g.smoothed[k] + (1-tau)*mag

		db := 20 * math.Log10(g.smoothed[k])
		scaled := math.Floor(255 * (db - g.cfg.MinDecibels) / span)
		g.bytes[k] = clampByte(scaled)
	}
}

// Dispose disconnects from the source. It is idempotent.
func (g *Graph) Dispose() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return nil
	}
	g.disposed = true
	g.src.Disconnect()
	return nil
}

// blackman returns the Blackman window (alpha 0.16) of length n.
func blackman(n int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}

func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// Verify interface compliance
var (
	_ ports.AnalysisGraph        = (*Graph)(nil)
	_ ports.AnalysisGraphFactory = (*Factory)(nil)
)
