package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/sched"
)

type fakeModes struct {
	state   *pet.PetState
	entered []pet.Mode
}

func (f *fakeModes) EnterMode(m pet.Mode) {
	f.entered = append(f.entered, m)
	f.state.SetMode(m)
}

type fakeUI struct {
	messages []string
	buttons  []bool
}

func (f *fakeUI) ShowMessage(text string) { f.messages = append(f.messages, text) }
func (f *fakeUI) SetButtons(_ []string, enabled bool) {
	f.buttons = append(f.buttons, enabled)
}

type recomputeCounter struct{ n int }

func (r *recomputeCounter) StatChanged(pet.Stat, int)    {}
func (r *recomputeCounter) Recomputed(pet.Snapshot, int) { r.n++ }
func (r *recomputeCounter) StateChanged(pet.Snapshot)    {}

type harness struct {
	state *pet.PetState
	sched *sched.Manual
	modes *fakeModes
	ui    *fakeUI
	eng   *Engine
	roams int
}

func newHarness(t *testing.T, hour int) *harness {
	t.Helper()
	h := &harness{
		state: pet.NewPetState(),
		sched: sched.NewManual(time.Date(2026, 3, 10, hour, 0, 0, 0, time.Local)),
		ui:    &fakeUI{},
	}
	h.modes = &fakeModes{state: h.state}
	h.eng = New(h.state, h.modes, h.sched, h.ui, Config{
		SleepWindow: pet.DefaultSleepWindow,
		OnRoam:      func() { h.roams++ },
	})
	return h
}

func expectReason(t *testing.T, err, reason error) *Rejection {
	t.Helper()
	if !errors.Is(err, reason) {
		t.Fatalf("expected %v, got %v", reason, err)
	}
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected *Rejection, got %T", err)
	}
	return rej
}

func TestLegal(t *testing.T) {
	tests := []struct {
		from, to pet.BaseState
		want     bool
	}{
		{pet.BaseRest, pet.BaseFloat, true},
		{pet.BaseFloat, pet.BaseRest, true},
		{pet.BaseFloat, pet.BaseSleep, true},
		{pet.BaseSleep, pet.BaseFloat, true},
		{pet.BaseFloat, pet.BaseSwim, true},
		{pet.BaseSwim, pet.BaseFloat, true},
		{pet.BaseSwim, pet.BaseSleep, true},
		{pet.BaseSleep, pet.BaseSwim, false},
		{pet.BaseRest, pet.BaseSwim, false},
		{pet.BaseRest, pet.BaseSleep, false},
		{pet.BaseSwim, pet.BaseRest, false},
		{pet.BaseSwim, pet.BaseSwim, true},
		{pet.BaseIdle, pet.BaseSwim, true},
		{pet.BaseSleep, pet.BaseIdle, true},
	}
	for _, tt := range tests {
		if got := Legal(tt.from, tt.to); got != tt.want {
			t.Errorf("Legal(%s, %s): expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestDo_AcceptsAndApplies(t *testing.T) {
	h := newHarness(t, 12)

	if err := h.eng.Do(ActionFeed); err != nil {
		t.Fatalf("expected feed accepted, got %v", err)
	}

	// Emptying the belly pushes happiness to 81, which levels up once.
	snap := h.state.Snapshot()
	if snap.Hunger != 0 || snap.Boredom != 20 || snap.Affection != 77 || snap.Level != 2 {
		t.Errorf("unexpected stats after feed: %+v", snap)
	}
	if snap.Mode != pet.ModeEat || snap.CurrentAction != "feed" {
		t.Errorf("expected eat/feed, got %s/%s", snap.Mode, snap.CurrentAction)
	}
	if len(h.modes.entered) != 1 || h.modes.entered[0] != pet.ModeEat {
		t.Errorf("expected eat mode entered once, got %v", h.modes.entered)
	}
	if left := h.eng.CooldownLeft(ActionFeed); left != 30*time.Second {
		t.Errorf("expected 30s cooldown, got %v", left)
	}
}

func TestDo_CooldownRejectsWithBusyMessage(t *testing.T) {
	h := newHarness(t, 12)
	if err := h.eng.Do(ActionFeed); err != nil {
		t.Fatal(err)
	}
	h.sched.Advance(5 * time.Second) // past the lock, inside the cooldown
	h.state.SetMode(pet.ModeIdle)
	h.state.ApplyDelta(pet.Affection, 44-h.state.Snapshot().Affection)
	before := h.state.Snapshot()

	rej := expectReason(t, h.eng.Do(ActionFeed), ErrCooldown)

	want := DefaultActions()[ActionFeed].Messages.Busy
	if rej.Message != want {
		t.Errorf("expected %q, got %q", want, rej.Message)
	}
	if got := h.ui.messages[len(h.ui.messages)-1]; got != want {
		t.Errorf("expected message shown, got %q", got)
	}
	if after := h.state.Snapshot(); after != before {
		t.Errorf("expected state unchanged:\n%+v\n%+v", before, after)
	}
}

func TestDo_CooldownExpires(t *testing.T) {
	h := newHarness(t, 12)
	h.eng.Do(ActionPet)
	h.sched.Advance(3 * time.Second)
	h.state.SetMode(pet.ModeIdle)

	if err := h.eng.Do(ActionPet); err != nil {
		t.Errorf("expected pet accepted after cooldown, got %v", err)
	}
}

func TestDo_LockRejectsOutsideIdle(t *testing.T) {
	h := newHarness(t, 12)
	h.eng.Do(ActionPet)

	expectReason(t, h.eng.Do(ActionFeed), ErrLocked)

	h.sched.Advance(DefaultLock)
	if err := h.eng.Do(ActionFeed); err != nil {
		t.Errorf("expected feed accepted once lock released, got %v", err)
	}
}

func TestDo_LockIgnoredFromIdle(t *testing.T) {
	h := newHarness(t, 12)
	h.eng.Do(ActionRoam) // roam keeps the pet idle

	if !h.eng.Locked() {
		t.Fatal("expected lock engaged")
	}
	if err := h.eng.Do(ActionPet); err != nil {
		t.Errorf("expected pet accepted from idle during lock, got %v", err)
	}
}

func TestDo_LockTogglesButtons(t *testing.T) {
	h := newHarness(t, 12)
	h.eng.Do(ActionRest)

	if len(h.ui.buttons) != 1 || h.ui.buttons[0] {
		t.Fatalf("expected buttons disabled, got %v", h.ui.buttons)
	}
	h.sched.Advance(DefaultLock)
	if len(h.ui.buttons) != 2 || !h.ui.buttons[1] {
		t.Errorf("expected buttons re-enabled, got %v", h.ui.buttons)
	}
}

func TestDo_BlockedMode(t *testing.T) {
	h := newHarness(t, 12)
	h.state.SetMode(pet.ModeEat)

	rej := expectReason(t, h.eng.Do(ActionSwim), ErrBlocked)
	if rej.Message != DefaultActions()[ActionSwim].Messages.Blocked {
		t.Errorf("unexpected message %q", rej.Message)
	}
}

func TestDo_SleepNeedsSleepTime(t *testing.T) {
	h := newHarness(t, 12)
	expectReason(t, h.eng.Do(ActionSleep), ErrNotSleepTime)

	night := newHarness(t, 23)
	if err := night.eng.Do(ActionSleep); err != nil {
		t.Fatalf("expected sleep accepted at night, got %v", err)
	}
	if night.state.Mode() != pet.ModeSleep {
		t.Errorf("expected sleep mode, got %s", night.state.Mode())
	}

	night.sched.Advance(2 * time.Second)
	expectReason(t, night.eng.Do(ActionFeed), ErrBlocked)
}

func TestDo_SleepToSwimRejected(t *testing.T) {
	h := newHarness(t, 12)
	h.state.SetPosture(pet.BaseSleep, "")
	before := h.state.Snapshot()

	rej := expectReason(t, h.eng.Do(ActionSwim), ErrInvalidTransition)

	want := DefaultActions()[ActionSwim].Messages.InvalidTransition[pet.BaseSleep]
	if rej.Message != want {
		t.Errorf("expected %q, got %q", want, rej.Message)
	}
	if after := h.state.Snapshot(); after != before {
		t.Error("expected state unchanged")
	}
}

func TestDo_InvalidTransitionFallbackMessage(t *testing.T) {
	h := newHarness(t, 12)
	h.state.SetPosture(pet.BaseRest, "")

	cfg := DefaultActions()
	swim := cfg[ActionSwim]
	swim.Messages.InvalidTransition = nil
	cfg[ActionSwim] = swim
	h.eng = New(h.state, h.modes, h.sched, h.ui, Config{Actions: cfg})

	rej := expectReason(t, h.eng.Do(ActionSwim), ErrInvalidTransition)
	if rej.Message != "Can't go from rest to swim." {
		t.Errorf("unexpected fallback %q", rej.Message)
	}
}

func TestDo_CooldownCheckedBeforePosture(t *testing.T) {
	h := newHarness(t, 12)
	if err := h.eng.Do(ActionSwim); err != nil {
		t.Fatal(err)
	}
	h.sched.Advance(2 * time.Second)
	h.state.SetPosture(pet.BaseRest, "") // rest -> swim is also illegal

	expectReason(t, h.eng.Do(ActionSwim), ErrCooldown)
}

func TestDo_UnknownAction(t *testing.T) {
	h := newHarness(t, 12)
	expectReason(t, h.eng.Do("dance"), ErrUnknownAction)
}

func TestDo_ForcesRecomputeWhenNothingChanged(t *testing.T) {
	h := newHarness(t, 12)
	h.state.ApplyDelta(pet.Overstim, -100)
	h.state.ApplyDelta(pet.Sleepiness, -100)
	counter := &recomputeCounter{}
	h.state.SetListener(counter)

	if err := h.eng.Do(ActionRest); err != nil {
		t.Fatal(err)
	}
	if counter.n != 1 {
		t.Errorf("expected one forced recompute, got %d", counter.n)
	}
}

func TestDo_RoamCallsHook(t *testing.T) {
	h := newHarness(t, 12)
	h.eng.Do(ActionRoam)

	if h.roams != 1 {
		t.Errorf("expected roam hook once, got %d", h.roams)
	}
	if h.state.Mode() != pet.ModeIdle {
		t.Errorf("expected idle, got %s", h.state.Mode())
	}
}

func TestCheck_DoesNotMutate(t *testing.T) {
	h := newHarness(t, 12)
	before := h.state.Snapshot()

	if err := h.eng.Check(ActionFeed); err != nil {
		t.Fatal(err)
	}
	if h.state.Snapshot() != before || h.eng.Locked() || h.eng.CooldownLeft(ActionFeed) != 0 {
		t.Error("expected Check to leave everything untouched")
	}
}
