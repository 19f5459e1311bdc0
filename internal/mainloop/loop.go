// Package mainloop provides the single UI execution context the bridge
// delivers responses and events on.
//
// A Loop owns one goroutine pinned to one OS thread. Work is handed to it with
// Post, which never blocks the caller, or Deliver, which runs inline when the
// caller is already on the loop.
package mainloop

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Run when the loop is already running.
var ErrAlreadyRunning = errors.New("mainloop: already running")

// Loop is a FIFO task queue drained by a single OS-thread-pinned goroutine.
type Loop struct {
	logger *zap.Logger

	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake    chan struct{}
	started chan struct{}
	done    chan struct{}

	running atomic.Bool
	// thread is the id of the OS thread running the loop, 0 when not running.
	thread atomic.Int64
}

// New creates a loop. It does not start until Run is called.
func New(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run drains the queue on the calling goroutine until ctx is cancelled.
// Tasks posted before Run are executed once it starts. Tasks still queued on
// cancellation are discarded.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.thread.Store(currentThreadID())
	close(l.started)
	l.logger.Debug("UI loop started", zap.Int64("thread", l.thread.Load()))

	defer func() {
		l.mu.Lock()
		l.stopped = true
		dropped := len(l.queue)
		l.queue = nil
		l.mu.Unlock()

		l.thread.Store(0)
		close(l.done)
		l.logger.Debug("UI loop stopped", zap.Int("dropped", dropped))
	}()

	for {
		for _, task := range l.take() {
			l.run(task)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}
	}
}

// Started is closed once Run has pinned its thread.
func (l *Loop) Started() <-chan struct{} {
	return l.started
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post enqueues fn for execution on the loop and returns immediately.
// It reports false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Deliver runs fn synchronously if the caller is on the loop, otherwise it
// posts fn. The caller never waits for a posted fn to run.
func (l *Loop) Deliver(fn func()) bool {
	if l.IsCurrent() {
		l.run(fn)
		return true
	}
	return l.Post(fn)
}

// IsCurrent reports whether the caller is executing on the loop's thread.
func (l *Loop) IsCurrent() bool {
	id := l.thread.Load()
	return id != 0 && id == currentThreadID()
}

// Sync posts fn and waits for it to finish, or for ctx to be done.
// Calling Sync from the loop itself runs fn inline.
func (l *Loop) Sync(ctx context.Context, fn func()) error {
	if l.IsCurrent() {
		l.run(fn)
		return nil
	}
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return errStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return errStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

var errStopped = errors.New("mainloop: stopped")

// IsStopped reports whether err was caused by posting to a stopped loop.
func IsStopped(err error) bool {
	return errors.Is(err, errStopped)
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.queue
	l.queue = nil
	return tasks
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("UI loop task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	task()
}
