// Package sched provides keyed, cancelable timers for the widget.
//
// Every subsystem (animation layers, drift, ambient cue, action lock) owns a key.
// Scheduling under a key replaces whatever was pending there, so at most one task
// per key is ever outstanding.
package sched

import "time"

// Scheduler runs callbacks after a delay, at most one pending callback per key.
type Scheduler interface {
	// Schedule replaces any pending task under key with fn, to run after delay.
	Schedule(key string, delay time.Duration, fn func())
	// Cancel drops the pending task under key. Reports whether one was pending.
	Cancel(key string) bool
	// Pending reports whether a task is waiting under key.
	Pending(key string) bool
	// Now is the scheduler's clock.
	Now() time.Time
}

// Keys used by the widget subsystems.
const (
	KeyBaseLayer    = "anim:base"
	KeyOverlayLayer = "anim:overlay"
	KeyModeReset    = "mode:reset"
	KeySwimBurst    = "swim:burst"
	KeyActionLock   = "action:lock"
	KeyDrift        = "drift"
	KeyCue          = "cue"
)
