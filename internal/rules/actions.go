// Package rules validates and executes the actions a user can trigger on the pet.
package rules

import (
	"slices"
	"time"

	"github.com/moorebrett0/deskpet/internal/pet"
)

// Action names a user-triggered action.
type Action string

const (
	ActionPet   Action = "pet"
	ActionFeed  Action = "feed"
	ActionSwim  Action = "swim"
	ActionRest  Action = "rest"
	ActionSleep Action = "sleep"
	ActionRoam  Action = "roam"
)

// Order is the display order of the action buttons.
var Order = []Action{ActionPet, ActionFeed, ActionSwim, ActionRest, ActionSleep, ActionRoam}

// Delta is one stat change applied on acceptance.
type Delta struct {
	Stat   pet.Stat
	Amount int
}

// Messages are the user-facing rejection texts of one action.
type Messages struct {
	Busy         string // cooldown still running
	Blocked      string // current mode forbids the action
	NotSleepTime string
	// InvalidTransition is keyed by the posture the pet is in.
	InvalidTransition map[pet.BaseState]string
}

// ActionConfig describes one action.
type ActionConfig struct {
	Mode             pet.Mode
	Deltas           []Delta
	Cooldown         time.Duration
	BlockedModes     []pet.Mode
	RequireSleepTime bool
	TargetBase       pet.BaseState // "" skips the posture check
	Messages         Messages
}

// DefaultActions returns the built-in action table.
func DefaultActions() map[Action]ActionConfig {
	return map[Action]ActionConfig{
		ActionPet: {
			Mode: pet.ModePet,
			Deltas: []Delta{
				{pet.Affection, 8},
				{pet.Overstim, 3},
				{pet.Boredom, -4},
			},
			Cooldown:     3 * time.Second,
			BlockedModes: []pet.Mode{pet.ModeSleep, pet.ModeEat},
			Messages: Messages{
				Busy:    "Still tingly from the last pat.",
				Blocked: "Not now, busy.",
			},
		},
		ActionFeed: {
			Mode: pet.ModeEat,
			Deltas: []Delta{
				{pet.Hunger, -30},
				{pet.Boredom, -5},
				{pet.Affection, 2},
			},
			Cooldown:     30 * time.Second,
			BlockedModes: []pet.Mode{pet.ModeSleep},
			Messages: Messages{
				Busy:    "Still digesting. Try again in a bit.",
				Blocked: "Shh, sleeping. Food can wait.",
			},
		},
		ActionSwim: {
			Mode: pet.ModeSwim,
			Deltas: []Delta{
				{pet.Boredom, -15},
				{pet.Overstim, -5},
				{pet.Hunger, 5},
				{pet.Sleepiness, 5},
			},
			Cooldown:     10 * time.Second,
			BlockedModes: []pet.Mode{pet.ModeSleep, pet.ModeEat},
			TargetBase:   pet.BaseSwim,
			Messages: Messages{
				Busy:    "Catching my breath after that last lap.",
				Blocked: "Can't swim right now.",
				InvalidTransition: map[pet.BaseState]string{
					pet.BaseRest:  "Too comfy on the gravel. Float up first.",
					pet.BaseSleep: "Too groggy to swim. Wake up first.",
				},
			},
		},
		ActionRest: {
			Mode: pet.ModeRest,
			Deltas: []Delta{
				{pet.Overstim, -15},
				{pet.Sleepiness, -5},
			},
			Cooldown:     10 * time.Second,
			BlockedModes: []pet.Mode{pet.ModeSleep},
			TargetBase:   pet.BaseRest,
			Messages: Messages{
				Busy:    "Just rested. Let's do something else.",
				Blocked: "Already out cold.",
				InvalidTransition: map[pet.BaseState]string{
					pet.BaseSwim:  "Mid-lap! Slow down to a float first.",
					pet.BaseSleep: "Already asleep, that's as restful as it gets.",
				},
			},
		},
		ActionSleep: {
			Mode: pet.ModeSleep,
			Deltas: []Delta{
				{pet.Sleepiness, -40},
				{pet.Overstim, -20},
			},
			Cooldown:         time.Minute,
			BlockedModes:     []pet.Mode{pet.ModeSleep},
			RequireSleepTime: true,
			TargetBase:       pet.BaseSleep,
			Messages: Messages{
				Busy:         "Just woke up. Not tired yet.",
				Blocked:      "Already asleep.",
				NotSleepTime: "It's not bedtime yet.",
				InvalidTransition: map[pet.BaseState]string{
					pet.BaseRest: "Can't nod off on the gravel. Float up first.",
				},
			},
		},
		ActionRoam: {
			Mode: pet.ModeIdle,
			Deltas: []Delta{
				{pet.Boredom, -10},
				{pet.Affection, 1},
			},
			Cooldown:     20 * time.Second,
			BlockedModes: []pet.Mode{pet.ModeSleep},
			Messages: Messages{
				Busy:    "Just got back from a wander.",
				Blocked: "Too sleepy to wander.",
			},
		},
	}
}

// edges is the posture adjacency graph. It is directed: a swimmer can sink
// straight into sleep but a sleeper has to float up before swimming.
var edges = map[pet.BaseState][]pet.BaseState{
	pet.BaseRest:  {pet.BaseFloat},
	pet.BaseFloat: {pet.BaseRest, pet.BaseSleep, pet.BaseSwim},
	pet.BaseSleep: {pet.BaseFloat},
	pet.BaseSwim:  {pet.BaseFloat, pet.BaseSleep},
}

// Legal reports whether the posture from may move to posture to. Staying put is
// always legal and idle is reachable from and to anything.
func Legal(from, to pet.BaseState) bool {
	if from == to || from == pet.BaseIdle || to == pet.BaseIdle {
		return true
	}
	return slices.Contains(edges[from], to)
}
