package pet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// StorageKey is the key the state blob is stored under.
const StorageKey = "deskpet.state"

// ErrInvalidBlob is returned by Hydrate when the stored blob is not a JSON object.
var ErrInvalidBlob = errors.New("pet: stored state is not a JSON object")

// record is the persisted JSON shape.
type record struct {
	Name               string         `json:"name,omitempty"`
	SpeciesID          string         `json:"species_id,omitempty"`
	Stats              map[string]int `json:"stats"`
	Happiness          int            `json:"happiness"`
	Level              int            `json:"level"`
	NextLevelThreshold int            `json:"next_level_threshold"`
	Mode               Mode           `json:"mode"`
	CurrentAction      string         `json:"current_action,omitempty"`
	BaseState          BaseState      `json:"base_state"`
	IdlePhase          string         `json:"idle_phase,omitempty"`
	SoundEnabled       bool           `json:"sound_enabled"`
	LastTick           int64          `json:"last_tick"`
}

// Encode serialises the full state blob.
func (s *PetState) Encode() (string, error) {
	s.mu.RLock()
	rec := record{
		Name:               s.name,
		SpeciesID:          s.speciesID,
		Stats:              make(map[string]int, len(s.stats)),
		Happiness:          s.happiness,
		Level:              s.level,
		NextLevelThreshold: s.nextLevelThreshold,
		Mode:               s.mode,
		CurrentAction:      s.currentAction,
		BaseState:          s.baseState,
		IdlePhase:          s.idlePhase,
		SoundEnabled:       s.soundEnabled,
	}
	for stat, v := range s.stats {
		rec.Stats[string(stat)] = v
	}
	if !s.lastTick.IsZero() {
		rec.LastTick = s.lastTick.UnixMilli()
	}
	s.mu.RUnlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

// Hydrate builds a PetState from a stored blob merged over the defaults.
// Missing or unusable fields keep their default, numbers are rounded and clamped,
// numeric strings are coerced. The returned state is always usable; the error only
// reports a blob that had to be discarded entirely.
func Hydrate(blob string) (*PetState, error) {
	s := NewPetState()
	if strings.TrimSpace(blob) == "" {
		return s, nil
	}
	if !gjson.Valid(blob) {
		return s, ErrInvalidBlob
	}
	root := gjson.Parse(blob)
	if !root.IsObject() {
		return s, ErrInvalidBlob
	}

	s.name = root.Get("name").String()
	s.speciesID = root.Get("species_id").String()

	stats := root.Get("stats")
	for _, stat := range Stats {
		if v, ok := numberOf(stats.Get(string(stat))); ok {
			s.stats[stat] = clamp(v)
		}
	}

	if v, ok := numberOf(root.Get("level")); ok && v >= 1 {
		s.level = v
	}
	if v, ok := numberOf(root.Get("next_level_threshold")); ok {
		s.nextLevelThreshold = clamp(v)
	}
	if m := Mode(root.Get("mode").String()); m.Valid() {
		s.mode = m
	}
	s.currentAction = root.Get("current_action").String()
	if b := BaseState(root.Get("base_state").String()); b.Valid() {
		s.baseState = b
	}
	s.idlePhase = root.Get("idle_phase").String()
	if v := root.Get("sound_enabled"); v.Type == gjson.True || v.Type == gjson.False {
		s.soundEnabled = v.Bool()
	}
	if v := root.Get("last_tick"); v.Type == gjson.Number && v.Int() > 0 {
		s.lastTick = time.UnixMilli(v.Int())
	}

	// Happiness is derived, never trusted from storage.
	s.happiness = happinessOf(s.stats)
	return s, nil
}

// numberOf coerces a JSON number or numeric string to a rounded int.
func numberOf(r gjson.Result) (int, bool) {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// Keep the conversion in range before clamping.
	f = math.Max(math.Min(f, math.MaxInt32), math.MinInt32)
	return int(math.Round(f)), true
}
