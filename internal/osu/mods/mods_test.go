package mods

import (
	"encoding/json"
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestClockRate(t *testing.T) {
	cases := []struct {
		name string
		mods []Mod
		want float64
	}{
		{"nomod", nil, 1.0},
		{"doubletime", []Mod{DoubleTime}, 1.5},
		{"nightcore", []Mod{NightCore}, 1.5},
		{"halftime", []Mod{HalfTime}, 0.75},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSet(c.mods...)
			approx(t, s.ClockRate(), c.want, 1e-9)
		})
	}
}

func TestParseSetCaseInsensitive(t *testing.T) {
	s := ParseSet("doubletime", "HIDDEN", "HardRock")
	if !s.Has(DoubleTime) || !s.Has(Hidden) || !s.Has(HardRock) {
		t.Fatalf("expected all three mods present, got %v", s.Slice())
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestParseSetIgnoresUnknown(t *testing.T) {
	s := ParseSet("not-a-real-mod")
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %v", s.Slice())
	}
}

func TestAdjustHardRock(t *testing.T) {
	s := NewSet(HardRock)
	adj := s.Adjust(5, 5, 5, 5)
	approx(t, adj.ApproachRate, 7.0, 1e-9)
	approx(t, adj.OverallDifficulty, 7.0, 1e-9)
	approx(t, adj.CircleSize, 6.5, 1e-9)
	approx(t, adj.DrainRate, 7.0, 1e-9)
}

func TestAdjustHardRockCapsAtTen(t *testing.T) {
	s := NewSet(HardRock)
	adj := s.Adjust(9, 9, 9, 9)
	approx(t, adj.ApproachRate, 10.0, 1e-9)
}

func TestAdjustEasy(t *testing.T) {
	s := NewSet(Easy)
	adj := s.Adjust(8, 8, 8, 8)
	approx(t, adj.ApproachRate, 4.0, 1e-9)
	approx(t, adj.CircleSize, 4.0, 1e-9)
}

func TestAdjustNoMod(t *testing.T) {
	s := NewSet()
	adj := s.Adjust(5, 6, 4, 7)
	approx(t, adj.ApproachRate, 5, 1e-9)
	approx(t, adj.OverallDifficulty, 6, 1e-9)
	approx(t, adj.CircleSize, 4, 1e-9)
	approx(t, adj.DrainRate, 7, 1e-9)
}

func TestSetJSONRoundTrip(t *testing.T) {
	original := NewSet(Hidden, DoubleTime)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Set
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Has(Hidden) || !decoded.Has(DoubleTime) || decoded.Len() != 2 {
		t.Fatalf("expected decoded set to contain Hidden and DoubleTime, got %+v", decoded.Slice())
	}
}

func TestSetJSONEncodingIsSorted(t *testing.T) {
	a, err := json.Marshal(NewSet(DoubleTime, Hidden))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := json.Marshal(NewSet(Hidden, DoubleTime))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected encoding to be independent of insertion order: %s != %s", a, b)
	}
}
