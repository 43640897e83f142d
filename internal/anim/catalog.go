// Package anim drives the creature's two animation layers and its mode state
// machine.
package anim

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moorebrett0/deskpet/internal/pet"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Layer is an animation layer.
type Layer string

const (
	LayerBase    Layer = "base"    // full-body posture, mutually exclusive
	LayerOverlay Layer = "overlay" // transient effect above the base
)

// Def is an animation as written in the catalog. Empty fields inherit from Base.
type Def struct {
	Base      string        `yaml:"base"`
	Asset     string        `yaml:"asset"`
	Layer     Layer         `yaml:"layer"`
	BaseState pet.BaseState `yaml:"base_state"`
	IdlePhase string        `yaml:"idle_phase"`
	Sound     string        `yaml:"sound"`
	Volume    float64       `yaml:"volume"`
	Duration  time.Duration `yaml:"duration"`
	Next      string        `yaml:"next"`
}

// Animation is a fully resolved definition.
type Animation struct {
	Name      string
	Asset     string
	Layer     Layer
	BaseState pet.BaseState
	IdlePhase string
	Sound     string
	Volume    float64
	Duration  time.Duration
	Next      string
}

type catalogFile struct {
	Animations map[string]Def `yaml:"animations"`
}

// LoadCatalog reads a catalog file, or the built-in one when path is empty.
// Definitions that cannot be resolved are dropped and reported in the error;
// the returned table is usable either way.
func LoadCatalog(path string) (map[string]Animation, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read animation catalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog data and resolves it.
func ParseCatalog(data []byte) (map[string]Animation, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse animation catalog: %w", err)
	}
	return Resolve(file.Animations)
}

// Resolve flattens inheritance chains into a lookup table. Child fields win over
// parent fields. Definitions with a missing parent or a cyclic chain are dropped,
// and a `next` naming an unknown animation is cleared.
func Resolve(defs map[string]Def) (map[string]Animation, error) {
	out := make(map[string]Animation, len(defs))
	var errs []error

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a, err := resolveOne(defs, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[name] = a
	}

	for _, name := range names {
		a, ok := out[name]
		if !ok || a.Next == "" {
			continue
		}
		if _, ok := out[a.Next]; !ok {
			errs = append(errs, fmt.Errorf("animation %q: next %q is not defined", name, a.Next))
			a.Next = ""
			out[name] = a
		}
	}

	return out, errors.Join(errs...)
}

func resolveOne(defs map[string]Def, name string) (Animation, error) {
	// Walk child to root, then merge root first so children override.
	var chain []Def
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			return Animation{}, fmt.Errorf("animation %q: inheritance cycle at %q", name, cur)
		}
		seen[cur] = true
		def, ok := defs[cur]
		if !ok {
			return Animation{}, fmt.Errorf("animation %q: base %q is not defined", name, cur)
		}
		chain = append(chain, def)
		cur = def.Base
	}

	a := Animation{Name: name}
	for i := len(chain) - 1; i >= 0; i-- {
		d := chain[i]
		if d.Asset != "" {
			a.Asset = d.Asset
		}
		if d.Layer != "" {
			a.Layer = d.Layer
		}
		if d.BaseState != "" {
			a.BaseState = d.BaseState
		}
		if d.IdlePhase != "" {
			a.IdlePhase = d.IdlePhase
		}
		if d.Sound != "" {
			a.Sound = d.Sound
		}
		if d.Volume != 0 {
			a.Volume = d.Volume
		}
		if d.Duration != 0 {
			a.Duration = d.Duration
		}
		if d.Next != "" {
			a.Next = d.Next
		}
	}
	if a.Layer == "" {
		a.Layer = LayerBase
	}
	if a.Layer != LayerBase && a.Layer != LayerOverlay {
		return Animation{}, fmt.Errorf("animation %q: unknown layer %q", name, a.Layer)
	}
	return a, nil
}
