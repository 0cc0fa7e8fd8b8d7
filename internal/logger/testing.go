// Package logger provides test helpers for structured logging.
package logger

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
)

// NewTestLogger creates a logger for tests.
// By default, uses WARN level to keep test output quiet.
// Set TEST_DEBUG environment variable to enable debug logging in tests.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn // Quiet by default

	// Allow tests to enable debug logging
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// Capture collects log output in memory so tests can assert on it.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// NewCaptureLogger creates a debug-level logger writing into the returned Capture.
func NewCaptureLogger() (*slog.Logger, *Capture) {
	c := &Capture{}
	return NewLoggerTo(c, Config{Level: slog.LevelDebug, Format: "text"}), c
}
