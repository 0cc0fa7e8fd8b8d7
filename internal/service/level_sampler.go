// Package service provides business logic for the GoRadio application.
package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// ComputeLevel returns the mean magnitude of snapshot scaled to [0, 1].
// An empty snapshot has level 0.
func ComputeLevel(snapshot domain.FrequencySnapshot) float64 {
	if len(snapshot) == 0 {
		return 0
	}

	var sum int
	for _, v := range snapshot {
		sum += int(v)
	}
	return float64(sum) / float64(len(snapshot)) / 255.0
}

// LevelSampler turns frequency snapshots into a loudness level for ambient UI feedback.
// Sample is called once per frame from the scheduler thread; Level may be read from any goroutine.
type LevelSampler struct {
	logger *slog.Logger
	bus    ports.EventBus
	buf    domain.FrequencySnapshot

	mu    sync.RWMutex
	level float64
}

// NewLevelSampler creates a sampler for snapshots shaped by cfg.
func NewLevelSampler(logger *slog.Logger, bus ports.EventBus, cfg domain.AnalysisConfig) *LevelSampler {
	return &LevelSampler{
		logger: logger.With(slog.String("service", "LevelSampler")),
		bus:    bus,
		buf:    domain.NewFrequencySnapshot(cfg),
	}
}

// Sample reads the current snapshot from graph and publishes the resulting level.
func (s *LevelSampler) Sample(graph ports.AnalysisGraph) error {
	if err := graph.Snapshot(s.buf); err != nil {
		return err
	}
	s.set(ComputeLevel(s.buf))
	return nil
}

// Reset drops the level to silence.
func (s *LevelSampler) Reset() {
	s.set(0)
}

// Level returns the last sampled level.
func (s *LevelSampler) Level() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// set stores level and publishes it when it changed.
func (s *LevelSampler) set(level float64) {
	s.mu.Lock()
	if s.level == level {
		s.mu.Unlock()
		return
	}
	s.level = level
	s.mu.Unlock()

	s.bus.Publish(domain.NewLevelSampledEvent(level))
}
