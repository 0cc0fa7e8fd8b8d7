package scheduler

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// Manual is a deterministic Scheduler stepped explicitly by the caller.
// Nothing runs until Flush or Tick is called, and everything runs on the calling goroutine.
//
// Thread-safety: Start, Cancel and Post may be called from any goroutine.
// Flush and Tick must not be called concurrently with each other.
type Manual struct {
	mu  sync.Mutex
	reg registry
	now time.Time
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Start arms fn for the next Tick.
func (m *Manual) Start(fn ports.FrameFunc) domain.FrameHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.start(fn)
}

// Cancel invalidates the handle.
func (m *Manual) Cancel(handle domain.FrameHandle) {
	if handle == domain.InvalidFrameHandle {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg.cancel(handle)
}

// Post queues task until the next Flush or Tick.
func (m *Manual) Post(task func()) error {
	if task == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reg.closed {
		return domain.ErrSchedulerClosed
	}
	m.reg.tasks = append(m.reg.tasks, task)
	return nil
}

// Close drops all pending work.
func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg.close()
	return nil
}

// Flush runs posted tasks until the queue is empty, including tasks posted by tasks.
// Returns the number of tasks run.
func (m *Manual) Flush() int {
	ran := 0
	for {
		m.mu.Lock()
		tasks := m.reg.takeTasks()
		m.mu.Unlock()

		if len(tasks) == 0 {
			return ran
		}
		for _, task := range tasks {
			task()
			ran++
		}
	}
}

// Tick advances the clock by d and runs one frame: pending tasks, then every armed
// callback in start order, then any tasks those callbacks posted.
func (m *Manual) Tick(d time.Duration) {
	m.Flush()

	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	loops := m.reg.snapshotLoops()
	m.mu.Unlock()

	for _, fl := range loops {
		m.mu.Lock()
		armed := m.reg.armed(fl.handle)
		m.mu.Unlock()
		if armed {
			fl.fn(now)
		}
	}

	m.Flush()
}

// Frames runs n ticks of d each.
func (m *Manual) Frames(n int, d time.Duration) {
	for i := 0; i < n; i++ {
		m.Tick(d)
	}
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reg.tasks)
}

// Starts returns how many loops were ever started.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.starts
}

// Cancels returns how many live loops were cancelled.
// Cancels of unknown or already cancelled handles are not counted.
func (m *Manual) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.cancels
}

// Active returns the number of armed loops.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reg.loops)
}

// IsArmed reports whether handle still refers to an armed loop.
func (m *Manual) IsArmed(handle domain.FrameHandle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.armed(handle)
}

// Verify that Manual implements the Scheduler interface
var _ ports.Scheduler = (*Manual)(nil)
