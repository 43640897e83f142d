// Package drift applies the natural hourly change of the pet's stats, both live
// and as a catch-up for time spent with the widget closed.
package drift

import (
	"log/slog"
	"time"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
)

// DefaultTick is one simulated hour.
const DefaultTick = time.Hour

// Rates are the per-hour stat changes.
type Rates map[pet.Stat]int

// DefaultRates: hungrier, sleepier, more bored, a little more wound up and a
// little less attached every hour.
func DefaultRates() Rates {
	return Rates{
		pet.Hunger:     3,
		pet.Sleepiness: 2,
		pet.Boredom:    3,
		pet.Overstim:   1,
		pet.Affection:  -2,
	}
}

// Config for the drift engine.
type Config struct {
	Tick        time.Duration   // length of one drift hour; shorten to fast-forward
	Rates       Rates           // nil means DefaultRates
	SleepWindow pet.SleepWindow // live ticks inside this window do not drift
}

// Engine applies drift to a pet.
type Engine struct {
	state  *pet.PetState
	sched  sched.Scheduler
	tick   time.Duration
	rates  Rates
	window pet.SleepWindow
}

// New creates a drift engine. Stamping lastTick goes through the pet's listener,
// which is what persists a batch that changed no stat.
func New(state *pet.PetState, s sched.Scheduler, cfg Config) *Engine {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Rates == nil {
		cfg.Rates = DefaultRates()
	}
	return &Engine{
		state:  state,
		sched:  s,
		tick:   cfg.Tick,
		rates:  cfg.Rates,
		window: cfg.SleepWindow,
	}
}

// Tick returns the configured drift hour.
func (e *Engine) Tick() time.Duration {
	return e.tick
}

// ApplyNaturalDrift applies hours worth of drift as silent deltas, then a single
// happiness recompute if anything moved. lastTick is always set to ts.
func (e *Engine) ApplyNaturalDrift(hours int, ts time.Time) {
	changed := false
	if hours > 0 {
		for _, stat := range pet.Stats {
			rate, ok := e.rates[stat]
			if !ok || rate == 0 {
				continue
			}
			if e.state.ApplySilent(stat, rate*hours) {
				changed = true
			}
		}
	}

	e.state.SetLastTick(ts)

	if changed {
		e.state.RecomputeHappiness()
	}
}

// ProcessBackfill applies the whole drift hours elapsed since lastTick in one
// batch. Less than an hour only stamps lastTick, so repeated calls inside the same
// hour never double-apply. Returns the hours applied.
func (e *Engine) ProcessBackfill() int {
	now := e.sched.Now()
	last := e.state.LastTick()

	hours := 0
	if !last.IsZero() && now.After(last) {
		hours = int(now.Sub(last) / e.tick)
	}

	if hours >= 1 {
		slog.Info("drift: backfilling", "hours", hours, "since", last)
		e.ApplyNaturalDrift(hours, now)
		return hours
	}
	e.state.SetLastTick(now)
	return 0
}

// Start arms the recurring drift tick.
func (e *Engine) Start() {
	e.sched.Schedule(sched.KeyDrift, e.tick, e.onTick)
}

// Stop cancels the recurring drift tick.
func (e *Engine) Stop() {
	e.sched.Cancel(sched.KeyDrift)
}

func (e *Engine) onTick() {
	now := e.sched.Now()
	if e.window.Contains(now) {
		// Sleeping hours are skipped, not owed.
		e.state.SetLastTick(now)
	} else {
		e.ApplyNaturalDrift(1, now)
	}
	e.sched.Schedule(sched.KeyDrift, e.tick, e.onTick)
}
