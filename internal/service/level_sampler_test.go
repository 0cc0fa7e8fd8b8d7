package service

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/goradio/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/logger"
)

// fixedGraph is an AnalysisGraph returning the same contents every frame.
type fixedGraph struct {
	values domain.FrequencySnapshot
	err    error
	reads  int
}

func (g *fixedGraph) BinCount() int { return len(g.values) }

func (g *fixedGraph) Snapshot(buf domain.FrequencySnapshot) error {
	if g.err != nil {
		return g.err
	}
	g.reads++
	copy(buf, g.values)
	return nil
}

func (g *fixedGraph) Dispose() error { return nil }

func filled(n int, v uint8) domain.FrequencySnapshot {
	s := make(domain.FrequencySnapshot, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestComputeLevel_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		n := 1 + rng.IntN(512)
		buf := make(domain.FrequencySnapshot, n)
		allZero, allMax := true, true
		for j := range buf {
			buf[j] = uint8(rng.IntN(256))
			allZero = allZero && buf[j] == 0
			allMax = allMax && buf[j] == 255
		}

		level := ComputeLevel(buf)
		require.GreaterOrEqual(t, level, 0.0)
		require.LessOrEqual(t, level, 1.0)
		assert.Equal(t, allZero, level == 0)
		assert.Equal(t, allMax, level == 1)
	}
}

func TestComputeLevel_Extremes(t *testing.T) {
	assert.Equal(t, 0.0, ComputeLevel(filled(128, 0)))
	assert.Equal(t, 1.0, ComputeLevel(filled(128, 255)))
	assert.Equal(t, 0.0, ComputeLevel(nil))

	// One loud bin lifts the level above zero; one quiet bin keeps it below one
	almostSilent := filled(128, 0)
	almostSilent[5] = 1
	assert.Greater(t, ComputeLevel(almostSilent), 0.0)

	almostFull := filled(128, 255)
	almostFull[5] = 254
	assert.Less(t, ComputeLevel(almostFull), 1.0)
}

func TestComputeLevel_Mean(t *testing.T) {
	assert.InDelta(t, 0.5, ComputeLevel(domain.FrequencySnapshot{0, 255}), 1e-9)
	assert.InDelta(t, 51.0/255.0, ComputeLevel(domain.FrequencySnapshot{51, 51, 51}), 1e-9)
}

func TestLevelSampler_PublishesChanges(t *testing.T) {
	bus := eventbus.NewSyncEventBus()
	cfg := domain.DefaultAnalysisConfig()
	sampler := NewLevelSampler(logger.NewTestLogger(), bus, cfg)

	var levels []float64
	bus.Subscribe(domain.EventLevelSampled, func(e domain.Event) {
		levels = append(levels, e.(domain.LevelSampledEvent).Level)
	})

	graph := &fixedGraph{values: filled(cfg.BinCount(), 255)}
	require.NoError(t, sampler.Sample(graph))
	require.NoError(t, sampler.Sample(graph))
	assert.Equal(t, 1.0, sampler.Level())

	sampler.Reset()
	sampler.Reset()
	assert.Equal(t, 0.0, sampler.Level())

	assert.Equal(t, []float64{1, 0}, levels, "unchanged levels are not republished")
	assert.Equal(t, 2, graph.reads)
}

func TestLevelSampler_SnapshotError(t *testing.T) {
	cfg := domain.DefaultAnalysisConfig()
	sampler := NewLevelSampler(logger.NewTestLogger(), eventbus.NewSyncEventBus(), cfg)

	err := sampler.Sample(&fixedGraph{err: domain.ErrGraphDisposed})
	assert.True(t, errors.Is(err, domain.ErrGraphDisposed))
	assert.Equal(t, 0.0, sampler.Level())
}

// recordingVisualizer keeps a copy of every frame it is asked to draw.
type recordingVisualizer struct {
	frames []domain.FrequencySnapshot
}

func (v *recordingVisualizer) RenderFrame(s domain.FrequencySnapshot) {
	if s == nil {
		return
	}
	frame := make(domain.FrequencySnapshot, len(s))
	copy(frame, s)
	v.frames = append(v.frames, frame)
}

func TestFrameRenderer(t *testing.T) {
	cfg := domain.DefaultAnalysisConfig()
	vis := &recordingVisualizer{}
	renderer := NewFrameRenderer(vis, cfg)

	graph := &fixedGraph{values: filled(cfg.BinCount(), 42)}
	require.NoError(t, renderer.Render(graph))
	require.NoError(t, renderer.Render(nil))

	require.Len(t, vis.frames, 1)
	assert.Equal(t, filled(cfg.BinCount(), 42), vis.frames[0])

	assert.ErrorIs(t, renderer.Render(&fixedGraph{err: domain.ErrGraphDisposed}), domain.ErrGraphDisposed)

	// Without a visualizer nothing is read
	headless := NewFrameRenderer(nil, cfg)
	unread := &fixedGraph{values: filled(cfg.BinCount(), 1)}
	require.NoError(t, headless.Render(unread))
	assert.Zero(t, unread.reads)
}
