package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
)

// DefaultLock is how long all actions stay disabled after one is accepted.
const DefaultLock = 1500 * time.Millisecond

// Rejection reasons, in validation order.
var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrLocked            = errors.New("actions locked")
	ErrCooldown          = errors.New("action on cooldown")
	ErrBlocked           = errors.New("action blocked in current mode")
	ErrNotSleepTime      = errors.New("not sleep time")
	ErrInvalidTransition = errors.New("invalid posture transition")
)

// Rejection is returned when an action fails validation. Its Error is the
// user-facing message; errors.Is matches the reason.
type Rejection struct {
	Action  Action
	Reason  error
	Message string
}

func (r *Rejection) Error() string { return r.Message }
func (r *Rejection) Unwrap() error { return r.Reason }

// ModeEnterer switches the animation mode.
type ModeEnterer interface {
	EnterMode(m pet.Mode)
}

// UI is the part of the renderer the engine talks to.
type UI interface {
	ShowMessage(text string)
	SetButtons(names []string, enabled bool)
}

// Config configures an Engine. Zero fields take the defaults.
type Config struct {
	Actions       map[Action]ActionConfig
	Lock          time.Duration
	SleepWindow   pet.SleepWindow
	LockedMessage string
	OnRoam        func()
}

// Engine validates actions and applies the accepted ones. It must only be used
// from the scheduler's goroutine.
type Engine struct {
	state  *pet.PetState
	modes  ModeEnterer
	sched  sched.Scheduler
	ui     UI
	onRoam func()

	actions   map[Action]ActionConfig
	lock      time.Duration
	window    pet.SleepWindow
	lockedMsg string

	cooldowns map[Action]time.Time
}

// New creates an engine.
func New(state *pet.PetState, modes ModeEnterer, s sched.Scheduler, ui UI, cfg Config) *Engine {
	if cfg.Actions == nil {
		cfg.Actions = DefaultActions()
	}
	if cfg.Lock <= 0 {
		cfg.Lock = DefaultLock
	}
	if cfg.LockedMessage == "" {
		cfg.LockedMessage = "Hang on, still busy."
	}
	return &Engine{
		state:     state,
		modes:     modes,
		sched:     s,
		ui:        ui,
		onRoam:    cfg.OnRoam,
		actions:   cfg.Actions,
		lock:      cfg.Lock,
		window:    cfg.SleepWindow,
		lockedMsg: cfg.LockedMessage,
		cooldowns: make(map[Action]time.Time),
	}
}

// Locked reports whether the post-action lock window is running.
func (e *Engine) Locked() bool {
	return e.sched.Pending(sched.KeyActionLock)
}

// CooldownLeft returns how long until a is off cooldown.
func (e *Engine) CooldownLeft(a Action) time.Duration {
	left := e.cooldowns[a].Sub(e.sched.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Check validates a without changing anything. The first failing rule wins.
func (e *Engine) Check(a Action) error {
	cfg, ok := e.actions[a]
	if !ok {
		return &Rejection{Action: a, Reason: ErrUnknownAction, Message: fmt.Sprintf("Don't know how to %s.", a)}
	}

	mode := e.state.Mode()
	if e.Locked() && mode != pet.ModeIdle {
		return &Rejection{Action: a, Reason: ErrLocked, Message: e.lockedMsg}
	}
	if e.CooldownLeft(a) > 0 {
		return &Rejection{Action: a, Reason: ErrCooldown, Message: cfg.Messages.Busy}
	}
	if slices.Contains(cfg.BlockedModes, mode) {
		return &Rejection{Action: a, Reason: ErrBlocked, Message: cfg.Messages.Blocked}
	}
	if cfg.RequireSleepTime && !e.window.Contains(e.sched.Now()) {
		return &Rejection{Action: a, Reason: ErrNotSleepTime, Message: cfg.Messages.NotSleepTime}
	}
	if cfg.TargetBase != "" {
		from := e.state.BaseState()
		if !Legal(from, cfg.TargetBase) {
			msg := cfg.Messages.InvalidTransition[from]
			if msg == "" {
				msg = fmt.Sprintf("Can't go from %s to %s.", from, cfg.TargetBase)
			}
			return &Rejection{Action: a, Reason: ErrInvalidTransition, Message: msg}
		}
	}
	return nil
}

// Do validates and, when accepted, performs a. A rejection is shown on the UI
// and returned as a *Rejection; state is left untouched.
func (e *Engine) Do(a Action) error {
	if err := e.Check(a); err != nil {
		slog.Debug("rules: rejected", "action", a, "err", err)
		if e.ui != nil {
			e.ui.ShowMessage(err.Error())
		}
		return err
	}

	cfg := e.actions[a]
	e.cooldowns[a] = e.sched.Now().Add(cfg.Cooldown)
	e.engageLock()

	e.modes.EnterMode(cfg.Mode)

	changed := false
	for _, d := range cfg.Deltas {
		if e.state.ApplyDelta(d.Stat, d.Amount) {
			changed = true
		}
	}
	e.state.SetCurrentAction(string(a))
	if !changed {
		e.state.RecomputeHappiness()
	}

	if a == ActionRoam && e.onRoam != nil {
		e.onRoam()
	}

	slog.Info("rules: accepted", "action", a, "mode", cfg.Mode, "changed", changed)
	return nil
}

func (e *Engine) engageLock() {
	names := e.buttonNames()
	if e.ui != nil {
		e.ui.SetButtons(names, false)
	}
	e.sched.Schedule(sched.KeyActionLock, e.lock, func() {
		if e.ui != nil {
			e.ui.SetButtons(names, true)
		}
	})
}

func (e *Engine) buttonNames() []string {
	names := make([]string, 0, len(e.actions))
	for _, a := range Order {
		if _, ok := e.actions[a]; ok {
			names = append(names, string(a))
		}
	}
	return names
}
