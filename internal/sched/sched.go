// Package sched provides the cooperative scheduling capability shared by the
// session recorder and the waveform renderer. Every callback handed to a
// Scheduler runs on a single goroutine, so callbacks never race each other.
package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Cancel stops a scheduled activity. Calling it more than once is safe.
// Once Cancel returns, the callback will not run again, even if a tick was
// already queued.
type Cancel func()

// Scheduler is the timer capability injected into the recorder.
type Scheduler interface {
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Cancel
	// NextFrame runs fn once on the next display frame.
	NextFrame(fn func()) Cancel
	// Now reports the scheduler's current time.
	Now() time.Time
}

// ErrStopped is returned by Do when the loop is no longer running.
var ErrStopped = errors.New("scheduler loop stopped")

// DefaultFrameInterval paces the frame loop at roughly 60 fps.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is the production Scheduler: a single goroutine draining a queue of
// callbacks posted by wall-clock timers and by external callers.
type Loop struct {
	frame time.Duration
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop whose frame primitive fires every frame interval.
// A non-positive interval selects DefaultFrameInterval.
func NewLoop(frame time.Duration) *Loop {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Loop{
		frame: frame,
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled. It must be called
// exactly once; every callback runs on the goroutine that called Run.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn for execution on the loop goroutine. It reports false if the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for its result. It must not be
// called from a loop callback.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Every implements Scheduler.
func (l *Loop) Every(d time.Duration, fn func()) Cancel {
	var stopped atomic.Bool
	ticker := time.NewTicker(d)
	quit := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !stopped.Load() {
						fn()
					}
				})
			case <-quit:
				return
			case <-l.done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(quit)
		})
	}
}

// NextFrame implements Scheduler.
func (l *Loop) NextFrame(fn func()) Cancel {
	var stopped atomic.Bool
	timer := time.AfterFunc(l.frame, func() {
		l.Post(func() {
			if !stopped.Load() {
				fn()
			}
		})
	})
	return func() {
		stopped.Store(true)
		timer.Stop()
	}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}
