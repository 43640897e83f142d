package widget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/moorebrett0/deskpet/internal/audio"
	"github.com/moorebrett0/deskpet/internal/drift"
	"github.com/moorebrett0/deskpet/internal/pet"
	"github.com/moorebrett0/deskpet/internal/rules"
	"github.com/moorebrett0/deskpet/internal/sched"
	"github.com/moorebrett0/deskpet/internal/storage"
)

var start = time.Date(2026, 5, 1, 15, 0, 0, 0, time.Local)

type stoppableAudio struct {
	played  []string
	stopped int
}

func (a *stoppableAudio) Play(name string, _ audio.PlayOptions) bool {
	a.played = append(a.played, name)
	return true
}
func (a *stoppableAudio) Stop(string) bool { return true }
func (a *stoppableAudio) StopAll()         { a.stopped++ }

type brokenStore struct{ sets int }

func (b *brokenStore) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (b *brokenStore) Set(string, string) error {
	b.sets++
	return errors.New("disk on fire")
}

func newController(t *testing.T, store storage.Adapter) (*Controller, *sched.Manual, *LogUI) {
	t.Helper()
	s := sched.NewManual(start)
	ui := NewLogUI()
	c, err := New(store, s, ui, nil, Config{
		Drift: drift.Config{SleepWindow: pet.DefaultSleepWindow},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return c, s, ui
}

func saved(t *testing.T, store storage.Adapter) string {
	t.Helper()
	blob, ok, err := store.Get(pet.StorageKey)
	if err != nil || !ok {
		t.Fatalf("expected saved state, ok=%v err=%v", ok, err)
	}
	return blob
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(nil, sched.NewManual(start), NewLogUI(), nil, Config{}); err == nil {
		t.Error("expected error")
	}
}

func TestNew_HydratesSavedState(t *testing.T) {
	store := storage.NewMemory()
	store.Set(pet.StorageKey, `{"name":"Bubbles","species_id":"fish","stats":{"hunger":"40.4","affection":250},"level":3}`)

	c, _, _ := newController(t, store)
	snap := c.Snapshot()

	if snap.Name != "Bubbles" || snap.Level != 3 {
		t.Errorf("expected identity and level restored, got %+v", snap)
	}
	if snap.Hunger != 40 || snap.Affection != 100 {
		t.Errorf("expected coerced and clamped stats, got hunger=%d affection=%d", snap.Hunger, snap.Affection)
	}
	if snap.Sleepiness != pet.DefaultStat(pet.Sleepiness) {
		t.Errorf("expected missing stat defaulted, got %d", snap.Sleepiness)
	}
}

func TestNew_CorruptOrUnreadableStateStartsFresh(t *testing.T) {
	store := storage.NewMemory()
	store.Set(pet.StorageKey, `not json`)
	c, _, _ := newController(t, store)
	if c.Snapshot().Happiness != 76 {
		t.Errorf("expected defaults, got happiness %d", c.Snapshot().Happiness)
	}

	broken := &brokenStore{}
	c, _, _ = newController(t, broken)
	c.Start()
	if c.Snapshot().Affection != pet.DefaultStat(pet.Affection) {
		t.Error("expected defaults when storage is unreadable")
	}
	if broken.sets == 0 {
		t.Error("expected writes attempted despite failures")
	}
}

func TestNew_CorruptStateFileStartsFreshAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, closeFn, backend := storage.OpenOrMemory(storage.BackendFile, path)
	defer closeFn()
	if backend != storage.BackendFile {
		t.Fatalf("expected file backend kept, got %s", backend)
	}

	c, _, _ := newController(t, store)
	if got := c.Snapshot().Happiness; got != 76 {
		t.Errorf("expected default happiness 76, got %d", got)
	}

	c.Start()
	if err := c.Do(rules.ActionFeed); err != nil {
		t.Fatalf("feed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	if hunger := gjson.Get(gjson.GetBytes(data, gjson.Escape(pet.StorageKey)).String(), "stats.hunger"); hunger.Int() != 0 {
		t.Errorf("expected fed pet saved to disk, got hunger %v", hunger)
	}
}

func TestStart_BackfillsAndPersists(t *testing.T) {
	store := storage.NewMemory()
	last := start.Add(-3*time.Hour - 10*time.Minute)
	store.Set(pet.StorageKey, fmt.Sprintf(`{"stats":{"hunger":40},"last_tick":%d}`, last.UnixMilli()))

	c, s, ui := newController(t, store)
	c.Start()

	if got := c.Snapshot().Hunger; got != 49 {
		t.Errorf("expected three hours of drift, got hunger %d", got)
	}
	blob := saved(t, store)
	if gjson.Get(blob, "stats.hunger").Int() != 49 {
		t.Errorf("expected drift persisted, got %s", blob)
	}
	if gjson.Get(blob, "last_tick").Int() != start.UnixMilli() {
		t.Errorf("expected last_tick stamped to now, got %s", gjson.Get(blob, "last_tick").Raw)
	}
	if ui.Stat("hunger") != 49 || ui.Stat(HappinessBar) != c.Snapshot().Happiness {
		t.Errorf("expected stat bars refreshed, got hunger=%d", ui.Stat("hunger"))
	}
	if !s.Pending(sched.KeyDrift) || !s.Pending(sched.KeyCue) {
		t.Error("expected drift and cue timers armed")
	}
	if ui.Asset("base") == "" {
		t.Error("expected idle animation on the base layer")
	}
}

func TestStart_RestoresModes(t *testing.T) {
	tests := []struct {
		saved pet.Mode
		want  pet.Mode
	}{
		{pet.ModePet, pet.ModeIdle},
		{pet.ModeSleep, pet.ModeSleep},
		{pet.ModeSwim, pet.ModeSwim},
		{"dancing", pet.ModeIdle},
	}
	for _, tt := range tests {
		store := storage.NewMemory()
		store.Set(pet.StorageKey, fmt.Sprintf(`{"mode":%q}`, tt.saved))
		c, _, _ := newController(t, store)
		c.Start()
		if got := c.Snapshot().Mode; got != tt.want {
			t.Errorf("restore %s: expected %s, got %s", tt.saved, tt.want, got)
		}
	}
}

func TestDo_AcceptedActionPersistsAndLevelsUp(t *testing.T) {
	store := storage.NewMemory()
	c, _, ui := newController(t, store)
	c.Rename("Bubbles", "fish")
	c.Start()

	if err := c.Do(rules.ActionFeed); err != nil {
		t.Fatalf("feed: %v", err)
	}
	snap := c.Snapshot()
	if snap.Mode != pet.ModeEat || snap.CurrentAction != "feed" || snap.Level != 2 {
		t.Errorf("unexpected state after feed: %+v", snap)
	}
	if ui.Message() != "Level up! Bubbles is now level 2." {
		t.Errorf("expected level-up message, got %q", ui.Message())
	}
	if ui.ButtonsEnabled() {
		t.Error("expected buttons locked right after an action")
	}

	blob := saved(t, store)
	if gjson.Get(blob, "stats.hunger").Int() != 0 || gjson.Get(blob, "current_action").String() != "feed" {
		t.Errorf("expected feed persisted, got %s", blob)
	}
}

func TestDo_RejectionShowsMessage(t *testing.T) {
	c, s, ui := newController(t, storage.NewMemory())
	c.Start()

	c.Do(rules.ActionFeed)
	s.Advance(2 * time.Second)
	if !ui.ButtonsEnabled() {
		t.Error("expected buttons re-enabled after the lock")
	}

	err := c.Do(rules.ActionFeed)
	if !errors.Is(err, rules.ErrCooldown) {
		t.Fatalf("expected cooldown, got %v", err)
	}
	if ui.Message() != err.Error() {
		t.Errorf("expected rejection shown, got %q", ui.Message())
	}
}

func TestAct_ReportsOutcome(t *testing.T) {
	c, _, _ := newController(t, storage.NewMemory())
	c.Start()

	out, err := c.Act(context.Background(), rules.ActionSwim)
	if err != nil || !strings.HasPrefix(out, "Done.") {
		t.Errorf("expected success description, got %q %v", out, err)
	}

	if _, err := c.Act(context.Background(), rules.ActionSwim); err == nil {
		t.Error("expected refusal while locked")
	}
	if _, err := c.Act(context.Background(), "juggle"); !errors.Is(err, rules.ErrUnknownAction) {
		t.Errorf("expected unknown action, got %v", err)
	}
}

func TestAct_RunsOnLoop(t *testing.T) {
	loop := sched.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	c, err := New(storage.NewMemory(), loop, NewLogUI(), nil, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := loop.Call(ctx, c.Start); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Act(ctx, rules.ActionPet); err != nil {
		t.Fatalf("pet: %v", err)
	}
	if c.Snapshot().CurrentAction != "pet" {
		t.Errorf("expected pet recorded, got %q", c.Snapshot().CurrentAction)
	}
}

func TestToggleSound(t *testing.T) {
	store := storage.NewMemory()
	am := &stoppableAudio{}
	c, err := New(store, sched.NewManual(start), NewLogUI(), am, Config{})
	if err != nil {
		t.Fatal(err)
	}

	if on := c.ToggleSound(); on {
		t.Fatal("expected sound off")
	}
	if am.stopped != 1 {
		t.Errorf("expected playing sounds stopped, got %d", am.stopped)
	}
	if gjson.Get(saved(t, store), "sound_enabled").Bool() {
		t.Error("expected sound setting persisted")
	}

	if on := c.ToggleSound(); !on || am.stopped != 1 {
		t.Errorf("expected sound back on without another stop, got on=%v stops=%d", on, am.stopped)
	}
}

func TestStop_CancelsTimers(t *testing.T) {
	c, s, _ := newController(t, storage.NewMemory())
	c.Start()
	c.Stop()
	if s.Pending(sched.KeyDrift) || s.Pending(sched.KeyCue) {
		t.Error("expected drift and cue cancelled")
	}
}
