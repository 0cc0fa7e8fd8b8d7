package ports

import (
	"time"

	"github.com/tejashwikalptaru/goradio/internal/domain"
)

// FrameFunc is a per-frame callback. now is the time of the frame being rendered.
type FrameFunc func(now time.Time)

// Scheduler drives per-frame callbacks and serializes pipeline work onto one logical thread.
//
// Every callback passed to Start and every task passed to Post runs on the scheduler's thread,
// never concurrently with another. A started loop has at most one pending invocation; it is
// re-armed only after the current invocation returns and only if its handle is still valid.
type Scheduler interface {
	// Start arms fn for the next frame and returns the handle controlling the loop.
	Start(fn FrameFunc) domain.FrameHandle

	// Cancel invalidates the handle. Unknown or already cancelled handles are ignored.
	// Called on the scheduler thread, no invocation of the loop starts after Cancel returns
	// and an invocation in flight will not re-arm. Other goroutines should Post their cancels.
	Cancel(handle domain.FrameHandle)

	// Post queues task to run on the scheduler thread before the next frame.
	// Tasks run in submission order. After Close the task is dropped and
	// domain.ErrSchedulerClosed is returned.
	Post(task func()) error

	// Close stops the scheduler. Pending tasks and loops are dropped.
	Close() error
}
