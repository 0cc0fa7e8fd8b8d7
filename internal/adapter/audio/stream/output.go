package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output rates and buffering.
const (
	DefaultSampleRate = beep.SampleRate(44100)
	SpeakerBufferSize = 250 * time.Millisecond
	nullTick          = 10 * time.Millisecond
)

// Output is the audio device sources play into.
// Lock and Unlock guard every streamer handed to Play, the same way speaker.Lock does.
type Output interface {
	// SampleRate is the rate every played streamer must produce.
	SampleRate() beep.SampleRate

	// Init opens the device. It is idempotent; an error means playback is refused.
	Init() error

	// Play adds s to the device mix.
	Play(s beep.Streamer)

	Lock()
	Unlock()

	// Close releases the device.
	Close() error
}

// Speaker plays through the system audio device via beep's speaker package.
// The device is process-wide, so one Speaker should be shared by all sources.
type Speaker struct {
	rate beep.SampleRate

	mu          sync.Mutex
	initialized bool
}

// NewSpeaker creates an output running at rate.
func NewSpeaker(rate beep.SampleRate) *Speaker {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Speaker{rate: rate}
}

// SampleRate returns the device rate.
func (s *Speaker) SampleRate() beep.SampleRate {
	return s.rate
}

// Init initializes the speaker on first use.
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(s.rate, s.rate.N(SpeakerBufferSize)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	s.initialized = true
	return nil
}

// Play adds st to the speaker mix.
func (s *Speaker) Play(st beep.Streamer) {
	speaker.Play(st)
}

// Lock locks the speaker mix.
func (s *Speaker) Lock() {
	speaker.Lock()
}

// Unlock unlocks the speaker mix.
func (s *Speaker) Unlock() {
	speaker.Unlock()
}

// Close shuts the speaker down if it was initialized.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
	return nil
}

// NullOutput consumes audio in real time without a device.
// It keeps the pipeline (and therefore the analysis tap) flowing on headless machines and in tests.
type NullOutput struct {
	rate beep.SampleRate

	mix   sync.Mutex // the "speaker lock"
	mixer beep.Mixer

	mu      sync.Mutex
	blocked bool
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewNullOutput creates a silent output running at rate.
func NewNullOutput(rate beep.SampleRate) *NullOutput {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &NullOutput{rate: rate}
}

// SetBlocked makes Init fail, simulating an environment that refuses audio (for testing).
func (n *NullOutput) SetBlocked(blocked bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.blocked = blocked
}

// SampleRate returns the output rate.
func (n *NullOutput) SampleRate() beep.SampleRate {
	return n.rate
}

// Init starts the draining goroutine on first use.
func (n *NullOutput) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.blocked {
		return fmt.Errorf("audio output refused")
	}
	if n.running {
		return nil
	}

	n.running = true
	n.stop = make(chan struct{})
	n.wg.Add(1)
	go n.drain(n.stop)
	return nil
}

func (n *NullOutput) drain(stop <-chan struct{}) {
	defer n.wg.Done()

	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()

	buf := make([][2]float64, n.rate.N(nullTick))
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.mix.Lock()
			n.mixer.Stream(buf)
			n.mix.Unlock()
		}
	}
}

// Play adds s to the mix.
func (n *NullOutput) Play(s beep.Streamer) {
	n.mix.Lock()
	n.mixer.Add(s)
	n.mix.Unlock()
}

// Lock locks the mix.
func (n *NullOutput) Lock() {
	n.mix.Lock()
}

// Unlock unlocks the mix.
func (n *NullOutput) Unlock() {
	n.mix.Unlock()
}

// Close stops the draining goroutine and drops every streamer.
func (n *NullOutput) Close() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	close(n.stop)
	n.mu.Unlock()

	n.wg.Wait()

	n.mix.Lock()
	n.mixer.Clear()
	n.mix.Unlock()
	return nil
}

// Verify interface compliance
var (
	_ Output = (*Speaker)(nil)
	_ Output = (*NullOutput)(nil)
)
