package sched

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("sched: loop stopped")

type loopTask struct {
	gen   uint64
	timer *time.Timer
}

// Loop is a real-time Scheduler that serialises every timer callback and every
// posted event onto the goroutine running Run. Callbacks never run concurrently.
type Loop struct {
	mu    sync.Mutex
	tasks map[string]*loopTask
	gen   uint64

	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(map[string]*loopTask),
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Schedule implements Scheduler.
func (l *Loop) Schedule(key string, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.tasks[key]; ok {
		prev.timer.Stop()
	}
	l.gen++
	gen := l.gen
	task := &loopTask{gen: gen}
	task.timer = time.AfterFunc(delay, func() {
		l.enqueue(func() { l.fire(key, gen, fn) })
	})
	l.tasks[key] = task
}

// Cancel implements Scheduler.
func (l *Loop) Cancel(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.tasks[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(l.tasks, key)
	return true
}

// Pending implements Scheduler.
func (l *Loop) Pending(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.tasks[key]
	return ok
}

// fire runs fn only if the task under key is still the one that armed this timer.
// A timer that fired just before being replaced or cancelled is dropped here.
func (l *Loop) fire(key string, gen uint64, fn func()) {
	l.mu.Lock()
	task, ok := l.tasks[key]
	if !ok || task.gen != gen {
		l.mu.Unlock()
		return
	}
	delete(l.tasks, key)
	l.mu.Unlock()

	fn()
}

func (l *Loop) enqueue(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.queue <- fn:
		return true
	}
}

// Post queues fn to run on the loop goroutine. Dropped if the loop has stopped.
func (l *Loop) Post(fn func()) {
	if !l.enqueue(fn) {
		slog.Debug("sched: post after stop dropped")
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.enqueue(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued callbacks until ctx is cancelled, then stops all timers.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// run isolates a single callback so one bad task cannot take the widget down.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sched: task panicked", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		for key, task := range l.tasks {
			task.timer.Stop()
			delete(l.tasks, key)
		}
		l.mu.Unlock()
	})
}
