// Package mods models the gameplay-modifier set: clock-rate changes and the
// difficulty-stat adjustments that follow from a chosen set of mods.
package mods

import (
	"encoding/json"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mod is one named gameplay modifier.
type Mod string

const (
	NoMod      Mod = "NoMod"
	Easy       Mod = "Easy"
	HardRock   Mod = "HardRock"
	SuddenDeath Mod = "SuddenDeath"
	DoubleTime Mod = "DoubleTime"
	NightCore  Mod = "NightCore"
	HalfTime   Mod = "HalfTime"
	Hidden     Mod = "Hidden"
	Flashlight Mod = "Flashlight"
	Relax      Mod = "Relax"
	AutoPlay   Mod = "AutoPlay"
	SpunOut    Mod = "SpunOut"
	AutoPilot  Mod = "AutoPilot"
	TouchDevice Mod = "TouchDevice"
)

// all holds every recognized mod, canonical-cased, for case-insensitive
// lookup from user-supplied strings.
var all = []Mod{
	NoMod, Easy, HardRock, SuddenDeath, DoubleTime, NightCore, HalfTime,
	Hidden, Flashlight, Relax, AutoPlay, SpunOut, AutoPilot, TouchDevice,
}

var byLowerName = func() map[string]Mod {
	m := make(map[string]Mod, len(all))
	for _, mod := range all {
		m[strings.ToLower(string(mod))] = mod
	}
	return m
}()

// Set is an unordered collection of mods, backed by a thread-unsafe set:
// it is always scoped to a single calculate_difficulty call (§5), never
// shared across goroutines.
type Set struct {
	inner mapset.Set[Mod]
}

// NewSet builds a Set from zero or more mods, normalizing each one.
func NewSet(in ...Mod) Set {
	s := Set{inner: mapset.NewThreadUnsafeSet[Mod]()}
	for _, m := range in {
		s.inner.Add(Normalize(m))
	}
	return s
}

// ParseSet accepts case-insensitive string names (as from a CLI flag or a
// stored replay) and builds the corresponding Set. Unrecognized names are
// ignored, matching the tolerant parsing style the rest of the beatmap
// format uses for unknown identifiers.
func ParseSet(names ...string) Set {
	s := Set{inner: mapset.NewThreadUnsafeSet[Mod]()}
	for _, name := range names {
		if m, ok := byLowerName[strings.ToLower(strings.TrimSpace(name))]; ok {
			s.inner.Add(m)
		}
	}
	return s
}

// Normalize canonical-cases an arbitrarily-cased mod name, falling back to
// the input unchanged if it is not recognized.
func Normalize(m Mod) Mod {
	if canon, ok := byLowerName[strings.ToLower(string(m))]; ok {
		return canon
	}
	return m
}

// DisplayCase returns a human-presentable form of an arbitrary mod string,
// used only for diagnostics, via Unicode-aware title-casing rather than the
// deprecated strings.Title.
func DisplayCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// Has reports whether mod is present.
func (s Set) Has(m Mod) bool {
	if s.inner == nil {
		return false
	}
	return s.inner.Contains(m)
}

// Slice returns the mods in the set, in no particular order.
func (s Set) Slice() []Mod {
	if s.inner == nil {
		return nil
	}
	return s.inner.ToSlice()
}

// MarshalJSON encodes the set as a sorted array of mod names, rather than
// relying on the underlying set implementation's own (unsorted) encoding, so
// serialized attributes are stable across runs.
func (s Set) MarshalJSON() ([]byte, error) {
	names := s.Slice()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return json.Marshal(names)
}

// UnmarshalJSON decodes a JSON array of mod names produced by MarshalJSON.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []Mod
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}

// Len reports the number of mods in the set.
func (s Set) Len() int {
	if s.inner == nil {
		return 0
	}
	return s.inner.Cardinality()
}

// ClockRate returns the multiplicative time-scale factor for this mod set:
// DoubleTime/NightCore multiply by 1.5, HalfTime by 0.75; the factors
// compose multiplicatively, so a (pathological) set with both is the
// product of both.
func (s Set) ClockRate() float64 {
	rate := 1.0
	if s.Has(DoubleTime) {
		rate *= 1.5
	}
	if s.Has(NightCore) {
		rate *= 1.5
	}
	if s.Has(HalfTime) {
		rate *= 0.75
	}
	return rate
}

// StatAdjustments holds the (AR, OD, CS, HP) values that result from applying
// this mod set's scaling to the beatmap's raw difficulty stats, each capped
// at 10.0.
type StatAdjustments struct {
	ApproachRate      float64
	OverallDifficulty float64
	CircleSize        float64
	DrainRate         float64
}

// Adjust applies HardRock/Easy stat scaling (each capped at 10.0) to the four
// difficulty stats.
func (s Set) Adjust(ar, od, cs, hp float64) StatAdjustments {
	if s.Has(HardRock) {
		ar *= 1.4
		od *= 1.4
		cs *= 1.3
		hp *= 1.4
	}
	if s.Has(Easy) {
		ar *= 0.5
		od *= 0.5
		cs *= 0.5
		hp *= 0.5
	}
	return StatAdjustments{
		ApproachRate:      cap10(ar),
		OverallDifficulty: cap10(od),
		CircleSize:        cap10(cs),
		DrainRate:         cap10(hp),
	}
}

func cap10(v float64) float64 {
	if v > 10.0 {
		return 10.0
	}
	return v
}
