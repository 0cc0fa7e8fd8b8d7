// Package scheduler provides implementations of the Scheduler interface.
// Loop drives frames from a real ticker; Manual is stepped by tests.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// DefaultFrameRate approximates a display refresh.
const DefaultFrameRate = 60

// frameLoop is one armed per-frame callback.
type frameLoop struct {
	handle domain.FrameHandle
	fn     ports.FrameFunc
}

// registry holds the tasks and loops shared by both scheduler implementations.
// Callers must hold the owning scheduler's mutex.
type registry struct {
	tasks  []func()
	loops  []frameLoop
	nextID uint64
	closed bool

	starts  int
	cancels int
}

func (r *registry) start(fn ports.FrameFunc) domain.FrameHandle {
	if r.closed || fn == nil {
		return domain.InvalidFrameHandle
	}
	r.nextID++
	h := domain.FrameHandle(r.nextID)
	r.loops = append(r.loops, frameLoop{handle: h, fn: fn})
	r.starts++
	return h
}

func (r *registry) cancel(h domain.FrameHandle) bool {
	for i, l := range r.loops {
		if l.handle == h {
			r.loops = append(r.loops[:i:i], r.loops[i+1:]...)
			r.cancels++
			return true
		}
	}
	return false
}

func (r *registry) armed(h domain.FrameHandle) bool {
	for _, l := range r.loops {
		if l.handle == h {
			return true
		}
	}
	return false
}

func (r *registry) takeTasks() []func() {
	tasks := r.tasks
	r.tasks = nil
	return tasks
}

func (r *registry) snapshotLoops() []frameLoop {
	out := make([]frameLoop, len(r.loops))
	copy(out, r.loops)
	return out
}

func (r *registry) close() {
	r.closed = true
	r.tasks = nil
	r.loops = nil
}

// Loop is a Scheduler backed by one goroutine and a time.Ticker.
//
// Each tick runs all posted tasks, then every armed frame callback in start order.
// Posted tasks also wake the goroutine between ticks so commands are not held back
// by the frame interval.
type Loop struct {
	logger   *slog.Logger
	interval time.Duration

	mu  sync.Mutex
	reg registry

	wake      chan struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLoop creates and starts a frame loop running at frameRate frames per second.
// A non-positive frameRate selects DefaultFrameRate.
func NewLoop(logger *slog.Logger, frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	l := &Loop{
		logger:   logger.With(slog.String("service", "Scheduler")),
		interval: time.Second / time.Duration(frameRate),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}

	l.wg.Add(1)
	go l.run()

	l.logger.Debug("frame loop started", slog.Int("frame_rate", frameRate))
	return l
}

// Start arms fn for the next frame.
// Returns domain.InvalidFrameHandle if the loop is closed.
func (l *Loop) Start(fn ports.FrameFunc) domain.FrameHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.start(fn)
}

// Cancel invalidates the handle.
func (l *Loop) Cancel(handle domain.FrameHandle) {
	if handle == domain.InvalidFrameHandle {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.cancel(handle)
}

// Post queues a task for the loop goroutine.
func (l *Loop) Post(task func()) error {
	if task == nil {
		return nil
	}

	l.mu.Lock()
	if l.reg.closed {
		l.mu.Unlock()
		l.logger.Debug("task dropped", slog.Any("error", domain.ErrSchedulerClosed))
		return domain.ErrSchedulerClosed
	}
	l.reg.tasks = append(l.reg.tasks, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the goroutine and drops pending work.
// It is safe to call multiple times; calling it from a callback is not supported.
func (l *Loop) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.reg.close()
		l.mu.Unlock()

		close(l.stop)
		l.wg.Wait()
		l.logger.Debug("frame loop stopped")
	})
	return nil
}

// Active returns the number of armed frame loops.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reg.loops)
}

func (l *Loop) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
			l.runTasks()
		case now := <-ticker.C:
			l.runTasks()
			l.runFrame(now)
		}
	}
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.reg.takeTasks()
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}

func (l *Loop) runFrame(now time.Time) {
	l.mu.Lock()
	loops := l.reg.snapshotLoops()
	l.mu.Unlock()

	for _, fl := range loops {
		// An earlier callback in this frame may have cancelled this one
		l.mu.Lock()
		armed := l.reg.armed(fl.handle)
		l.mu.Unlock()
		if !armed {
			continue
		}
		fl.fn(now)
	}
}

// Verify that Loop implements the Scheduler interface
var _ ports.Scheduler = (*Loop)(nil)
