package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/stream"
	"github.com/tejashwikalptaru/goradio/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/logger"
)

// Audio outputs.
const (
	OutputSpeaker = "speaker"
	OutputNull    = "null"
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// CatalogPath is a station list JSON file (empty for the built-in catalog)
	CatalogPath string

	// FrameRate is the number of frames per second the scheduler runs
	FrameRate int

	// Analysis shapes the frequency analysis
	Analysis domain.AnalysisConfig

	// StrictLifecycle panics on pipeline invariant violations (development aid)
	StrictLifecycle bool

	// Autoplay selects the first station when the window opens
	Autoplay bool

	// AudioOutput is OutputSpeaker or OutputNull
	AudioOutput string

	// SampleRate is the output sample rate
	SampleRate int

	// ConnectTimeout bounds connection setup for streams and artwork
	ConnectTimeout time.Duration

	// UseMockAudio replaces network sources with in-memory ones (for testing)
	UseMockAudio bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:          "com.goradio.app",
		AppName:        "GoRadio",
		FrameRate:      scheduler.DefaultFrameRate,
		Analysis:       domain.DefaultAnalysisConfig(),
		Autoplay:       true,
		AudioOutput:    OutputSpeaker,
		SampleRate:     int(stream.DefaultSampleRate),
		ConnectTimeout: 10 * time.Second,
		LogLevel:       loggerCfg.Level,
		LogFormat:      loggerCfg.Format,
	}
}

// FromEnv overrides cfg with GORADIO_* environment variables.
// Unset or unparsable variables keep the value from cfg.
func FromEnv(cfg Config) Config {
	cfg.CatalogPath = envStr("GORADIO_CATALOG", cfg.CatalogPath)
	cfg.FrameRate = envInt("GORADIO_FPS", cfg.FrameRate)
	cfg.Analysis.FFTSize = envInt("GORADIO_FFT_SIZE", cfg.Analysis.FFTSize)
	cfg.Analysis.SmoothingTimeConstant = envFloat("GORADIO_SMOOTHING", cfg.Analysis.SmoothingTimeConstant)
	cfg.StrictLifecycle = envBool("GORADIO_STRICT", cfg.StrictLifecycle)
	cfg.Autoplay = envBool("GORADIO_AUTOPLAY", cfg.Autoplay)
	cfg.AudioOutput = strings.ToLower(envStr("GORADIO_OUTPUT", cfg.AudioOutput))
	cfg.SampleRate = envInt("GORADIO_SAMPLE_RATE", cfg.SampleRate)
	cfg.ConnectTimeout = time.Duration(envInt("GORADIO_CONNECT_TIMEOUT", int(cfg.ConnectTimeout/time.Second))) * time.Second
	cfg.UseMockAudio = envBool("GORADIO_MOCK_AUDIO", cfg.UseMockAudio)
	return cfg
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return domain.NewValidationError("FrameRate", c.FrameRate, "must be positive")
	}
	if c.SampleRate <= 0 {
		return domain.NewValidationError("SampleRate", c.SampleRate, "must be positive")
	}
	if c.AudioOutput != OutputSpeaker && c.AudioOutput != OutputNull {
		return domain.NewValidationError("AudioOutput", c.AudioOutput,
			fmt.Sprintf("must be %q or %q", OutputSpeaker, OutputNull))
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
