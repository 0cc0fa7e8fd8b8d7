package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.goradio.app", config.AppID)
	assert.Equal(t, "GoRadio", config.AppName)
	assert.Equal(t, 60, config.FrameRate)
	assert.Equal(t, 256, config.Analysis.FFTSize)
	assert.Equal(t, 44100, config.SampleRate)
	assert.Equal(t, OutputSpeaker, config.AudioOutput)
	assert.True(t, config.Autoplay)
	assert.False(t, config.StrictLifecycle)
	assert.False(t, config.UseMockAudio)
	assert.Empty(t, config.CatalogPath)
	require.NoError(t, config.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GORADIO_CATALOG", "/tmp/stations.json")
	t.Setenv("GORADIO_FPS", "30")
	t.Setenv("GORADIO_FFT_SIZE", "512")
	t.Setenv("GORADIO_SMOOTHING", "0.5")
	t.Setenv("GORADIO_STRICT", "true")
	t.Setenv("GORADIO_AUTOPLAY", "0")
	t.Setenv("GORADIO_OUTPUT", "NULL")
	t.Setenv("GORADIO_CONNECT_TIMEOUT", "3")
	t.Setenv("GORADIO_MOCK_AUDIO", "1")

	config := FromEnv(DefaultConfig())

	assert.Equal(t, "/tmp/stations.json", config.CatalogPath)
	assert.Equal(t, 30, config.FrameRate)
	assert.Equal(t, 512, config.Analysis.FFTSize)
	assert.Equal(t, 0.5, config.Analysis.SmoothingTimeConstant)
	assert.True(t, config.StrictLifecycle)
	assert.False(t, config.Autoplay)
	assert.Equal(t, OutputNull, config.AudioOutput)
	assert.Equal(t, 3*time.Second, config.ConnectTimeout)
	assert.True(t, config.UseMockAudio)
}

func TestFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("GORADIO_FPS", "fast")
	t.Setenv("GORADIO_STRICT", "maybe")
	t.Setenv("GORADIO_SMOOTHING", "")

	config := FromEnv(DefaultConfig())

	assert.Equal(t, 60, config.FrameRate)
	assert.False(t, config.StrictLifecycle)
	assert.Equal(t, domain.DefaultSmoothingTimeConstant, config.Analysis.SmoothingTimeConstant)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"frame rate", func(c *Config) { c.FrameRate = 0 }, "FrameRate"},
		{"sample rate", func(c *Config) { c.SampleRate = -1 }, "SampleRate"},
		{"output", func(c *Config) { c.AudioOutput = "alsa" }, "AudioOutput"},
		{"fft size", func(c *Config) { c.Analysis.FFTSize = 100 }, "FFTSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, config.Validate(), &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
