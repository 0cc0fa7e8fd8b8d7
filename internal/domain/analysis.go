package domain

import (
	"fmt"
)

// Analysis defaults mirror a typical browser analyser node.
const (
	DefaultFFTSize               = 256
	DefaultMinDecibels           = -100.0
	DefaultMaxDecibels           = -30.0
	DefaultSmoothingTimeConstant = 0.8

	minFFTSize = 32
	maxFFTSize = 32768
)

// AnalysisConfig describes the frequency transform used by an analysis graph.
// It is fixed for the lifetime of the process.
type AnalysisConfig struct {
	// FFTSize is the transform window length in samples (power of two)
	FFTSize int

	// MinDecibels maps to magnitude 0
	MinDecibels float64

	// MaxDecibels maps to magnitude 255
	MaxDecibels float64

	// SmoothingTimeConstant blends each analysis with the previous one (0 disables smoothing)
	SmoothingTimeConstant float64
}

// DefaultAnalysisConfig returns the configuration used by the player.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		FFTSize:               DefaultFFTSize,
		MinDecibels:           DefaultMinDecibels,
		MaxDecibels:           DefaultMaxDecibels,
		SmoothingTimeConstant: DefaultSmoothingTimeConstant,
	}
}

// BinCount returns the number of frequency bins produced per snapshot.
func (c AnalysisConfig) BinCount() int {
	return c.FFTSize / 2
}

// Validate checks that the configuration can drive a transform.
func (c AnalysisConfig) Validate() error {
	if c.FFTSize < minFFTSize || c.FFTSize > maxFFTSize || c.FFTSize&(c.FFTSize-1) != 0 {
		return NewValidationError("FFTSize", c.FFTSize,
			fmt.Sprintf("must be a power of two between %d and %d", minFFTSize, maxFFTSize))
	}
	if c.MinDecibels >= c.MaxDecibels {
		return NewValidationError("MinDecibels", c.MinDecibels, "must be lower than MaxDecibels")
	}
	if c.SmoothingTimeConstant < 0 || c.SmoothingTimeConstant > 1 {
		return NewValidationError("SmoothingTimeConstant", c.SmoothingTimeConstant, "must be between 0 and 1")
	}
	return nil
}
