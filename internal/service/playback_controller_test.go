package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/analysis"
	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/goradio/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/goradio/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/logger"
	"github.com/tejashwikalptaru/goradio/internal/ports"
	"github.com/tejashwikalptaru/goradio/internal/testutil"
)

const frame = 16 * time.Millisecond

type controllerFixture struct {
	sched   *scheduler.Manual
	sources *mock.Factory
	bus     *eventbus.SyncEventBus
	vis     *recordingVisualizer
	ctrl    *PlaybackController

	states  []domain.PlaybackState
	errored []domain.PlaybackErroredEvent
	blocked []domain.PlaybackBlockedEvent
	faults  []domain.PipelineFaultEvent
}

func newControllerFixture(t *testing.T, graphs ports.AnalysisGraphFactory, cfg ControllerConfig) *controllerFixture {
	t.Helper()
	testLogger := logger.NewTestLogger()

	f := &controllerFixture{
		sched:   scheduler.NewManual(time.Unix(0, 0)),
		sources: mock.NewFactory(),
		bus:     eventbus.NewSyncEventBus(),
		vis:     &recordingVisualizer{},
	}
	if graphs == nil {
		graphs = analysis.NewFactory(testLogger)
	}

	f.bus.Subscribe(domain.EventStateChanged, func(e domain.Event) {
		f.states = append(f.states, e.(domain.StateChangedEvent).To)
	})
	f.bus.Subscribe(domain.EventPlaybackErrored, func(e domain.Event) {
		f.errored = append(f.errored, e.(domain.PlaybackErroredEvent))
	})
	f.bus.Subscribe(domain.EventPlaybackBlocked, func(e domain.Event) {
		f.blocked = append(f.blocked, e.(domain.PlaybackBlockedEvent))
	})
	f.bus.Subscribe(domain.EventPipelineFault, func(e domain.Event) {
		f.faults = append(f.faults, e.(domain.PipelineFaultEvent))
	})

	f.ctrl = NewPlaybackController(testLogger, f.sources, graphs, f.sched, f.bus, f.vis, cfg)
	return f
}

func (f *controllerFixture) selectAndSettle(t *testing.T, station domain.Station) {
	t.Helper()
	require.NoError(t, f.ctrl.SelectStation(station))
	f.sched.Flush()
}

func testStation(i int) domain.Station {
	return domain.Station{
		ID:        fmt.Sprintf("s%d", i),
		Name:      fmt.Sprintf("Station %d", i),
		StreamURL: fmt.Sprintf("http://radio.example/%d", i),
	}
}

func TestController_SelectStationPlays(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())

	var selected []string
	f.bus.Subscribe(domain.EventStationSelected, func(e domain.Event) {
		selected = append(selected, e.(domain.StationSelectedEvent).Station.ID)
	})

	assert.Equal(t, domain.StateIdle, f.ctrl.State())
	assert.Nil(t, f.ctrl.CurrentStation())

	f.selectAndSettle(t, jazzFM)

	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
	assert.Equal(t, []domain.PlaybackState{domain.StateLoading, domain.StatePlaying}, f.states)
	assert.Equal(t, []string{"a"}, selected)
	require.NotNil(t, f.ctrl.CurrentStation())
	assert.Equal(t, jazzFM, *f.ctrl.CurrentStation())

	src := f.sources.Last()
	assert.Equal(t, jazzFM.StreamURL, src.URL())
	assert.True(t, src.IsPlaying())
	assert.True(t, src.HasSink(), "analysis graph attached")
	assert.Equal(t, 1, f.sources.Live())
	assert.Equal(t, 2, f.sched.Active(), "level and render loops running")
}

func TestController_LevelAndVisualizerFollowAudio(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)

	var levels []float64
	f.bus.Subscribe(domain.EventLevelSampled, func(e domain.Event) {
		levels = append(levels, e.(domain.LevelSampledEvent).Level)
	})

	f.sources.Last().FeedSine(2000, 0.8, 4096)
	f.sched.Tick(frame)

	assert.Greater(t, f.ctrl.Level(), 0.0)
	assert.LessOrEqual(t, f.ctrl.Level(), 1.0)
	require.NotEmpty(t, levels)
	require.Len(t, f.vis.frames, 1)
	assert.Len(t, f.vis.frames[0], domain.DefaultAnalysisConfig().BinCount())
}

func TestController_VisualizerIdleWhilePaused(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)

	f.sources.Last().FeedSine(2000, 0.8, 4096)
	f.sched.Tick(frame)
	require.Len(t, f.vis.frames, 1)
	require.Greater(t, f.ctrl.Level(), 0.0)

	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()
	require.Equal(t, domain.StatePaused, f.ctrl.State())

	f.sched.Frames(3, frame)
	assert.Len(t, f.vis.frames, 1, "no frames drawn while paused")
	assert.Equal(t, 0.0, f.ctrl.Level(), "level drops to silence while paused")
}

func TestController_SequentialSelectsKeepOnePipeline(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())

	const n = 6
	for i := 0; i < n; i++ {
		f.selectAndSettle(t, testStation(i))
		f.sched.Tick(frame)
	}

	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
	assert.Equal(t, "s5", f.ctrl.CurrentStation().ID)
	assert.Equal(t, 1, f.sources.Live(), "exactly one live source")
	assert.Equal(t, 2, f.sched.Active(), "exactly one pair of loops")
	assert.Equal(t, f.sched.Starts()-f.sched.Active(), f.sched.Cancels())

	sources := f.sources.Sources()
	require.Len(t, sources, n)
	for _, src := range sources[:n-1] {
		assert.True(t, src.IsDisposed())
		assert.Equal(t, 1, src.DisposeCalls())
		assert.False(t, src.HasSink(), "graph released its source")
		assert.Zero(t, src.ListenerCount())
	}
	assert.False(t, sources[n-1].IsDisposed())
}

func TestController_RapidSelectsCoalesce(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())

	for i := 0; i < 5; i++ {
		require.NoError(t, f.ctrl.SelectStation(testStation(i)))
	}
	assert.Equal(t, 1, f.sched.Pending(), "one switch queued for all requests")

	f.sched.Flush()

	require.Len(t, f.sources.Sources(), 1)
	assert.Equal(t, "http://radio.example/4", f.sources.Last().URL())
	assert.Equal(t, "s4", f.ctrl.CurrentStation().ID)
	assert.Equal(t, 1, f.sources.Live())
	assert.Equal(t, 2, f.sched.Active())
	assert.Equal(t, f.sched.Starts()-f.sched.Active(), f.sched.Cancels())
}

func TestController_RapidSelectsDuringLoad(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.sources.SetManualEvents(true)

	f.selectAndSettle(t, testStation(1))
	first := f.sources.Last()

	// The first source finishes loading only after the user already moved on
	require.NoError(t, f.ctrl.SelectStation(testStation(2)))
	first.Emit(domain.MediaLoaded)
	f.sched.Flush()

	assert.True(t, first.IsDisposed())
	assert.False(t, first.HasSink(), "stale load never attaches a graph")
	assert.Equal(t, domain.StateLoading, f.ctrl.State())
	assert.Zero(t, f.sched.Active())

	second := f.sources.Last()
	second.Emit(domain.MediaLoaded)
	second.Emit(domain.MediaPlaying)
	f.sched.Flush()

	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
	assert.Equal(t, 1, f.sources.Live())
	assert.Equal(t, 2, f.sched.Active())
}

func TestController_LoadFailure(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.sources.SetFailLoad(true)

	f.selectAndSettle(t, jazzFM)

	assert.Equal(t, []domain.PlaybackState{domain.StateLoading, domain.StateErrored, domain.StateIdle}, f.states)
	require.Len(t, f.errored, 1)
	assert.Equal(t, jazzFM.ID, f.errored[0].Station.ID)
	assert.True(t, errors.Is(f.errored[0].Error, domain.ErrMediaLoad))
	assert.Zero(t, f.sources.Live())
	assert.Zero(t, f.sched.Active())

	// The user retries with another station
	f.sources.SetFailLoad(false)
	f.selectAndSettle(t, rockHits)
	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
	assert.Equal(t, 1, f.sources.Live())
}

func TestController_StreamDropWhilePlaying(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)

	f.sources.Last().EmitError(domain.NewMediaLoadError(jazzFM.StreamURL, 0, errors.New("connection reset")))
	f.sched.Flush()

	assert.Equal(t, domain.StateIdle, f.ctrl.State())
	assert.Contains(t, f.states, domain.StateErrored)
	assert.Zero(t, f.sources.Live())
	assert.Zero(t, f.sched.Active())
	assert.Equal(t, f.sched.Starts(), f.sched.Cancels())
}

func TestController_PlaybackBlocked(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.sources.SetBlockPlay(true)

	f.selectAndSettle(t, jazzFM)

	assert.Equal(t, domain.StatePaused, f.ctrl.State())
	require.Len(t, f.blocked, 1)
	assert.True(t, errors.Is(f.blocked[0].Error, domain.ErrPlaybackBlocked))
	assert.Empty(t, f.errored, "blocked playback is not an error")
	assert.Equal(t, 1, f.sources.Live(), "pipeline stays ready for the user")

	// An explicit user action starts playback
	f.sources.Last().SetBlockPlay(false)
	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()

	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
}

func TestController_ToggleWaitsForPlayingEvent(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.sources.SetManualEvents(true)

	f.selectAndSettle(t, jazzFM)
	src := f.sources.Last()
	assert.Equal(t, domain.StateLoading, f.ctrl.State())

	src.Emit(domain.MediaLoaded)
	f.sched.Flush()
	assert.True(t, src.IsPlaying(), "play requested once loaded")
	assert.Equal(t, domain.StateLoading, f.ctrl.State(), "not playing before the source says so")

	src.Emit(domain.MediaPlaying)
	f.sched.Flush()
	assert.Equal(t, domain.StatePlaying, f.ctrl.State())

	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()
	assert.Equal(t, domain.StatePaused, f.ctrl.State(), "pause takes effect immediately")
	assert.False(t, src.IsPlaying())

	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()
	assert.True(t, src.IsPlaying())
	assert.Equal(t, domain.StatePaused, f.ctrl.State())

	src.Emit(domain.MediaPlaying)
	f.sched.Flush()
	assert.Equal(t, domain.StatePlaying, f.ctrl.State())
}

func TestController_ToggleIgnoredOutsidePlayback(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())

	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()
	assert.Equal(t, domain.StateIdle, f.ctrl.State())

	f.sources.SetManualEvents(true)
	f.selectAndSettle(t, jazzFM)
	require.NoError(t, f.ctrl.TogglePlayPause())
	f.sched.Flush()
	assert.Equal(t, domain.StateLoading, f.ctrl.State())
	assert.False(t, f.sources.Last().IsPlaying())
}

func TestController_StreamTitle(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)

	var got domain.StreamTitleChangedEvent
	f.bus.Subscribe(domain.EventStreamTitle, func(e domain.Event) {
		got = e.(domain.StreamTitleChangedEvent)
	})

	f.sources.Last().EmitTitle("Coltrane - Naima")
	f.sched.Flush()

	assert.Equal(t, "Coltrane - Naima", got.Title)
	assert.Equal(t, jazzFM.ID, got.Station.ID)
}

func TestController_Volume(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	assert.Equal(t, domain.MaxVolume, f.ctrl.Volume())

	require.NoError(t, f.ctrl.SetVolume(0.3))
	f.selectAndSettle(t, jazzFM)
	assert.Equal(t, 0.3, f.sources.Last().Volume(), "new sources start at the chosen volume")

	require.NoError(t, f.ctrl.SetVolume(0.7))
	f.sched.Flush()
	assert.Equal(t, 0.7, f.sources.Last().Volume())

	assert.ErrorIs(t, f.ctrl.SetVolume(1.2), domain.ErrInvalidVolume)
	assert.Equal(t, 0.7, f.ctrl.Volume())
}

// reattachingGraphs attaches every source twice, as a controller that skipped
// teardown would.
type reattachingGraphs struct {
	inner ports.AnalysisGraphFactory
}

func (g reattachingGraphs) Attach(src ports.MediaSource, cfg domain.AnalysisConfig) (ports.AnalysisGraph, error) {
	first, err := g.inner.Attach(src, cfg)
	if err != nil {
		return nil, err
	}
	_ = first.Dispose()
	return g.inner.Attach(src, cfg)
}

func TestController_AlreadyAttachedIsAFault(t *testing.T) {
	graphs := reattachingGraphs{inner: analysis.NewFactory(logger.NewTestLogger())}
	f := newControllerFixture(t, graphs, DefaultControllerConfig())

	f.selectAndSettle(t, jazzFM)

	require.Len(t, f.faults, 1)
	assert.Equal(t, "attach", f.faults[0].Op)
	assert.True(t, errors.Is(f.faults[0].Error, domain.ErrAlreadyAttached))
	assert.Equal(t, domain.StateIdle, f.ctrl.State(), "recovers cleanly")
	assert.Zero(t, f.sources.Live())
	assert.Zero(t, f.sched.Active())
}

func TestController_AlreadyAttachedPanicsInStrictMode(t *testing.T) {
	cfg := DefaultControllerConfig()
	cfg.StrictLifecycle = true
	graphs := reattachingGraphs{inner: analysis.NewFactory(logger.NewTestLogger())}
	f := newControllerFixture(t, graphs, cfg)

	require.NoError(t, f.ctrl.SelectStation(jazzFM))
	assert.Panics(t, func() { f.sched.Flush() })
	require.Len(t, f.faults, 1)
}

// stubGraphs hands out one prepared graph.
type stubGraphs struct {
	graph ports.AnalysisGraph
}

func (g stubGraphs) Attach(ports.MediaSource, domain.AnalysisConfig) (ports.AnalysisGraph, error) {
	return g.graph, nil
}

func TestController_DisposedGraphReadIsAFault(t *testing.T) {
	f := newControllerFixture(t, stubGraphs{graph: &fixedGraph{err: domain.ErrGraphDisposed}}, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)
	require.Equal(t, domain.StatePlaying, f.ctrl.State())

	f.sched.Tick(frame)

	require.NotEmpty(t, f.faults)
	assert.Equal(t, "level snapshot", f.faults[0].Op)
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
	assert.Zero(t, f.sched.Active())
	assert.Zero(t, f.sources.Live())
}

func TestController_AttachFailureIsALoadError(t *testing.T) {
	cfg := DefaultControllerConfig()
	cfg.Analysis.FFTSize = 100 // not a power of two
	f := newControllerFixture(t, nil, cfg)

	f.selectAndSettle(t, jazzFM)

	assert.Empty(t, f.faults)
	require.Len(t, f.errored, 1)
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
}

func TestController_ShutdownAfterSchedulerClosed(t *testing.T) {
	f := newControllerFixture(t, nil, DefaultControllerConfig())
	f.selectAndSettle(t, jazzFM)

	require.NoError(t, f.sched.Close())
	require.NoError(t, f.ctrl.Shutdown())
	require.NoError(t, f.ctrl.Shutdown())

	assert.Zero(t, f.sources.Live())
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
	assert.ErrorIs(t, f.ctrl.SelectStation(rockHits), domain.ErrSchedulerClosed)
}

// syncVisualizer counts frames drawn from the scheduler goroutine.
type syncVisualizer struct {
	mu     sync.Mutex
	frames int
}

func (v *syncVisualizer) RenderFrame(s domain.FrequencySnapshot) {
	if s == nil {
		return
	}
	v.mu.Lock()
	v.frames++
	v.mu.Unlock()
}

func (v *syncVisualizer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

func TestController_WithFrameLoop(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	testLogger := logger.NewTestLogger()
	loop := scheduler.NewLoop(testLogger, 120)
	defer loop.Close()

	sources := mock.NewFactory()
	bus := eventbus.NewSyncEventBus()
	vis := &syncVisualizer{}
	ctrl := NewPlaybackController(testLogger, sources, analysis.NewFactory(testLogger), loop, bus, vis, DefaultControllerConfig())

	for i := 0; i < 10; i++ {
		require.NoError(t, ctrl.SelectStation(testStation(i)))
	}
	require.Eventually(t, func() bool {
		current := ctrl.CurrentStation()
		return current != nil && current.ID == "s9" && ctrl.State() == domain.StatePlaying
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return vis.count() > 0 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, sources.Live())
	assert.Equal(t, 2, loop.Active())

	require.NoError(t, ctrl.Shutdown())
	assert.Zero(t, sources.Live())
	assert.Zero(t, loop.Active())
	assert.Equal(t, domain.StateIdle, ctrl.State())
}
