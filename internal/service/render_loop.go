package service

import (
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// FrameRenderer feeds one visualizer from an analysis graph, one snapshot per frame.
// It owns its own buffer; the level sampler reading the same graph never shares it.
type FrameRenderer struct {
	visualizer ports.Visualizer
	buf        domain.FrequencySnapshot
}

// NewFrameRenderer creates a renderer for snapshots shaped by cfg.
func NewFrameRenderer(visualizer ports.Visualizer, cfg domain.AnalysisConfig) *FrameRenderer {
	return &FrameRenderer{
		visualizer: visualizer,
		buf:        domain.NewFrequencySnapshot(cfg),
	}
}

// Render draws the current contents of graph. A nil graph means nothing is playing
// and draws nothing.
func (r *FrameRenderer) Render(graph ports.AnalysisGraph) error {
	if r.visualizer == nil || graph == nil {
		return nil
	}
	if err := graph.Snapshot(r.buf); err != nil {
		return err
	}
	r.visualizer.RenderFrame(r.buf)
	return nil
}
