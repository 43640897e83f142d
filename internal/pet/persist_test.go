package pet

import (
	"testing"
	"time"
)

func TestHydrate_EmptyBlobGivesDefaults(t *testing.T) {
	s, err := Hydrate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := s.Snapshot()
	if snap.Hunger != 25 || snap.Affection != 70 {
		t.Errorf("expected defaults, got hunger=%d affection=%d", snap.Hunger, snap.Affection)
	}
	if snap.Mode != ModeIdle || snap.BaseState != BaseFloat || !snap.SoundEnabled {
		t.Errorf("unexpected defaults: %+v", snap)
	}
}

func TestHydrate_NonObjectIsDiscarded(t *testing.T) {
	for _, blob := range []string{"[1,2,3]", "42", "{not json", `"hello"`} {
		s, err := Hydrate(blob)
		if err != ErrInvalidBlob {
			t.Errorf("%q: expected ErrInvalidBlob, got %v", blob, err)
		}
		if s == nil || s.Happiness() != 76 {
			t.Errorf("%q: expected usable default state", blob)
		}
	}
}

func TestHydrate_CoercesAndClamps(t *testing.T) {
	blob := `{
		"stats": {"hunger": "40", "sleepiness": 250, "boredom": -9, "overstim": "lots", "affection": 33.6},
		"level": 0,
		"next_level_threshold": 130,
		"mode": "dancing",
		"base_state": "swim",
		"sound_enabled": false,
		"happiness": 3
	}`
	s, err := Hydrate(blob)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	snap := s.Snapshot()

	if snap.Hunger != 40 {
		t.Errorf("expected numeric string coerced to 40, got %d", snap.Hunger)
	}
	if snap.Sleepiness != 100 || snap.Boredom != 0 {
		t.Errorf("expected clamping, got sleepiness=%d boredom=%d", snap.Sleepiness, snap.Boredom)
	}
	if snap.Overstim != DefaultStat(Overstim) {
		t.Errorf("expected default overstim for garbage, got %d", snap.Overstim)
	}
	if snap.Affection != 34 {
		t.Errorf("expected rounded affection 34, got %d", snap.Affection)
	}
	if snap.Level != DefaultLevel {
		t.Errorf("expected invalid level to fall back to %d, got %d", DefaultLevel, snap.Level)
	}
	if snap.NextLevelThreshold != 100 {
		t.Errorf("expected threshold clamped to 100, got %d", snap.NextLevelThreshold)
	}
	if snap.Mode != ModeIdle {
		t.Errorf("expected unknown mode to fall back to idle, got %s", snap.Mode)
	}
	if snap.BaseState != BaseSwim || snap.SoundEnabled {
		t.Errorf("expected base swim and sound off, got %s %v", snap.BaseState, snap.SoundEnabled)
	}
	// Stored happiness is ignored: (60+0+100+85+34)/5 = 55.8
	if snap.Happiness != 56 {
		t.Errorf("expected derived happiness 56, got %d", snap.Happiness)
	}
}

func TestEncode_RoundTripsThroughHydrate(t *testing.T) {
	s := NewPetState()
	s.SetIdentity("Inky", "octopus")
	s.ApplyDelta(Hunger, 12)
	s.SetMode(ModeSwim)
	s.SetPosture(BaseSwim, "swimming")
	s.SetSoundEnabled(false)
	tick := time.UnixMilli(1_700_000_000_000)
	s.SetLastTick(tick)

	blob, err := s.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Hydrate(blob)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	want, got := s.Snapshot(), back.Snapshot()
	if got != want {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}
