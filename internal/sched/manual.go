package sched

import "time"

type manualTask struct {
	due time.Time
	seq uint64
	fn  func()
}

// Manual is a Scheduler driven by an explicit clock. Tasks only run inside Advance,
// synchronously and in due order. Used by tests and for fast-forwarding a session.
type Manual struct {
	now   time.Time
	seq   uint64
	tasks map[string]*manualTask
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:   start,
		tasks: make(map[string]*manualTask),
	}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	return m.now
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(key string, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	m.seq++
	m.tasks[key] = &manualTask{due: m.now.Add(delay), seq: m.seq, fn: fn}
}

// Cancel implements Scheduler.
func (m *Manual) Cancel(key string) bool {
	if _, ok := m.tasks[key]; !ok {
		return false
	}
	delete(m.tasks, key)
	return true
}

// Pending implements Scheduler.
func (m *Manual) Pending(key string) bool {
	_, ok := m.tasks[key]
	return ok
}

// Due returns when the task under key will run.
func (m *Manual) Due(key string) (time.Time, bool) {
	task, ok := m.tasks[key]
	if !ok {
		return time.Time{}, false
	}
	return task.due, true
}

// Advance moves the clock forward by d, running every task that falls due on the
// way. Tasks scheduled by running tasks are honoured if they are due within d.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		key, task := m.next(target)
		if task == nil {
			break
		}
		delete(m.tasks, key)
		m.now = task.due
		task.fn()
	}
	m.now = target
}

// Set jumps the clock to t without running anything.
func (m *Manual) Set(t time.Time) {
	m.now = t
}

func (m *Manual) next(limit time.Time) (string, *manualTask) {
	var (
		bestKey string
		best    *manualTask
	)
	for key, task := range m.tasks {
		if task.due.After(limit) {
			continue
		}
		if best == nil || task.due.Before(best.due) || (task.due.Equal(best.due) && task.seq < best.seq) {
			bestKey, best = key, task
		}
	}
	return bestKey, best
}
