package analysis

import (
	"sync"
)

// Ring is a SampleSink that keeps the most recent samples as a mono mix.
// It is written from the audio goroutine and read by the analysis graph.
type Ring struct {
	mu      sync.Mutex
	buf     []float64
	pos     int
	size    int
	written uint64
}

// NewRing creates a ring holding the last size samples.
func NewRing(size int) *Ring {
	return &Ring{
		buf:  make([]float64, size),
		size: size,
	}
}

// WriteSamples captures a mono mix of samples.
func (r *Ring) WriteSamples(samples [][2]float64) {
	r.mu.Lock()
	for i := range samples {
		r.buf[r.pos] = (samples[i][0] + samples[i][1]) / 2
		r.pos = (r.pos + 1) % r.size
	}
	r.written += uint64(len(samples))
	r.mu.Unlock()
}

// CopyLatest fills dst with the last len(dst) samples in chronological order
// and returns the total number of samples ever written.
// Samples not yet received read as silence.
func (r *Ring) CopyLatest(dst []float64) uint64 {
	n := len(dst)
	if n > r.size {
		clear(dst[:n-r.size])
		dst = dst[n-r.size:]
		n = r.size
	}

	r.mu.Lock()
	start := (r.pos - n + r.size) % r.size
	for i := range n {
		dst[i] = r.buf[(start+i)%r.size]
	}
	written := r.written
	r.mu.Unlock()

	return written
}

// Written returns the total number of samples received.
func (r *Ring) Written() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}
