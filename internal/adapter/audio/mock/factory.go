package mock

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Factory is a mock implementation of the MediaSourceFactory interface.
// Behavior toggles apply to every source created afterwards, and every source
// is remembered so tests can inspect the whole history of a controller.
//
// Thread-safety: This implementation is thread-safe.
type Factory struct {
	logger *slog.Logger

	mu      sync.Mutex
	sources []*Source
	live    int

	// Behavior configuration applied to new sources (for testing error scenarios)
	failLoad     bool
	blockPlay    bool
	manualEvents bool
}

// NewFactory creates a new mock source factory.
func NewFactory() *Factory {
	return &Factory{logger: slog.New(slog.DiscardHandler)}
}

// SetLogger sets the logger handed to new sources.
func (f *Factory) SetLogger(logger *slog.Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger = logger
}

// SetFailLoad configures new sources to fail loading (for testing).
func (f *Factory) SetFailLoad(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLoad = fail
}

// SetBlockPlay configures new sources to reject Play (for testing).
func (f *Factory) SetBlockPlay(block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockPlay = block
}

// SetManualEvents configures new sources to emit lifecycle events only through Emit.
func (f *Factory) SetManualEvents(manual bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manualEvents = manual
}

// NewSource creates a fresh mock source.
func (f *Factory) NewSource() ports.MediaSource {
	f.mu.Lock()
	defer f.mu.Unlock()

	src := NewSource()
	src.logger = f.logger.With(slog.String("source_id", src.id))
	src.failLoad = f.failLoad
	src.blockPlay = f.blockPlay
	src.manualEvents = f.manualEvents
	src.onDispose = f.released

	f.sources = append(f.sources, src)
	f.live++
	return src
}

func (f *Factory) released(*Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live--
}

// Sources returns every source created so far, oldest first.
func (f *Factory) Sources() []*Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Source, len(f.sources))
	copy(out, f.sources)
	return out
}

// Last returns the most recently created source, or nil.
func (f *Factory) Last() *Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sources) == 0 {
		return nil
	}
	return f.sources[len(f.sources)-1]
}

// Live returns the number of created sources that have not been disposed.
func (f *Factory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// Verify that Factory implements the MediaSourceFactory interface
var _ ports.MediaSourceFactory = (*Factory)(nil)
