package skill

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDifficultyValueWeightsDescendingPeaks(t *testing.T) {
	s := &Strain{}
	s.strainPeaks = []float64{5, 10, 2}
	s.currentSectionPeak = 0
	got := s.DifficultyValue()
	want := 10.0 + 5.0*decayWeight + 2.0*decayWeight*decayWeight
	approx(t, got, want, 1e-9)
}

func TestDifficultyValueIgnoresNonPositivePeaks(t *testing.T) {
	s := &Strain{}
	s.strainPeaks = []float64{0, -1}
	s.currentSectionPeak = 0
	if got := s.DifficultyValue(); got != 0.0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCountTopWeightedStrainsEmpty(t *testing.T) {
	s := &Strain{}
	if got := s.CountTopWeightedStrains(0); got != 0.0 {
		t.Fatalf("expected 0 for no strains, got %v", got)
	}
}

func TestCountTopWeightedStrainsAllObjectsWhenZeroDifficulty(t *testing.T) {
	s := &Strain{ObjectStrains: []float64{1, 2, 3}}
	got := s.CountTopWeightedStrains(0)
	if got != 3.0 {
		t.Fatalf("expected len(ObjectStrains)=3, got %v", got)
	}
}

func TestOsuStrainDifficultyValueSoftensTopPeaks(t *testing.T) {
	s := &Strain{}
	s.strainPeaks = make([]float64, 12)
	for i := range s.strainPeaks {
		s.strainPeaks[i] = 100.0
	}
	plain := s.DifficultyValue()
	reduced := OsuStrainDifficultyValue(s, defaultReducedSectionCount)
	if reduced >= plain {
		t.Fatalf("expected reduced value (%v) to be softened below plain value (%v)", reduced, plain)
	}
}
