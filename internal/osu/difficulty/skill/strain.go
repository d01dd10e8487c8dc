// Package skill accumulates per-object evaluator output into a single
// difficulty rating for a play: each skill decays its running strain over
// time, peaks it per 400ms section, and reduces the section peaks into one
// number with a top-weighted sum.
package skill

import (
	"math"
	"sort"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
)

const (
	sectionLength = 400.0
	decayWeight   = 0.9
)

// Strain is the common section-peak bookkeeping every strain-based skill
// shares: it knows nothing about how an individual object's strain value is
// computed (that's the evaluator's job, wired in by the embedding skill),
// only how to peak it per section and reduce the peaks afterward.
type Strain struct {
	currentSectionPeak float64
	currentSectionEnd  float64
	strainPeaks        []float64

	// ObjectStrains records the raw per-object strain value as computed
	// (pre-section-peaking), in processing order. Exposed for reporting
	// (e.g. a strain graph) the way DifficultyAttributes.Strains does.
	ObjectStrains []float64
}

// StrainValueAt and CalculateInitialStrain are supplied by the embedding
// skill; Process drives the section bookkeeping around them.
type strainSource interface {
	StrainValueAt(current *difficulty.AnnotatedObject) float64
	CalculateInitialStrain(time float64, current *difficulty.AnnotatedObject) float64
}

// Process advances the section peak state for one object and records its
// strain. src supplies the evaluator-backed strain computation; calling
// skills pass themselves.
func (s *Strain) Process(current *difficulty.AnnotatedObject, src strainSource) {
	if current.Index == 0 {
		s.currentSectionEnd = math.Ceil(current.StartTime/sectionLength) * sectionLength
	}

	for current.StartTime > s.currentSectionEnd {
		s.strainPeaks = append(s.strainPeaks, s.currentSectionPeak)
		s.currentSectionPeak = src.CalculateInitialStrain(s.currentSectionEnd, current)
		s.currentSectionEnd += sectionLength
	}

	strain := src.StrainValueAt(current)
	if strain > s.currentSectionPeak {
		s.currentSectionPeak = strain
	}
	s.ObjectStrains = append(s.ObjectStrains, strain)
}

// CurrentStrainPeaks returns every completed section peak plus the
// in-progress one.
func (s *Strain) CurrentStrainPeaks() []float64 {
	peaks := make([]float64, len(s.strainPeaks), len(s.strainPeaks)+1)
	copy(peaks, s.strainPeaks)
	return append(peaks, s.currentSectionPeak)
}

// DifficultyValue reduces the section peaks into a single number: sort
// descending, then sum with each successive peak weighted by decayWeight
// less than the one before.
func (s *Strain) DifficultyValue() float64 {
	peaks := positivePeaksDescending(s.CurrentStrainPeaks())

	difficulty := 0.0
	weight := 1.0
	for _, strain := range peaks {
		difficulty += strain * weight
		weight *= decayWeight
	}
	return difficulty
}

// CountTopWeightedStrains estimates how many objects' strain sits close to
// the skill's overall difficulty peak, used to report an "effective note
// count" a player actually has to execute at their hardest.
func (s *Strain) CountTopWeightedStrains(difficultyValue float64) float64 {
	if len(s.ObjectStrains) == 0 {
		return 0.0
	}

	consistentTopStrain := difficultyValue / 10.0
	if consistentTopStrain == 0 {
		return float64(len(s.ObjectStrains))
	}

	total := 0.0
	for _, strain := range s.ObjectStrains {
		total += 1.1 / (1.0 + math.Exp(-10.0*(strain/consistentTopStrain-0.88)))
	}
	return total
}

func positivePeaksDescending(peaks []float64) []float64 {
	out := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		if p > 0 {
			out = append(out, p)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

const (
	defaultReducedSectionCount = 10
	reducedStrainBaseline      = 0.75
)

// OsuStrainDifficultyValue is the osu!-ruleset variant of DifficultyValue:
// before the weighted sum, it softens the top reducedSections peaks on a
// log curve so a single isolated spike doesn't dominate the rating. Speed
// overrides reducedSections to 5; every other osu! strain skill uses the
// default of 10.
func OsuStrainDifficultyValue(s *Strain, reducedSections int) float64 {
	peaks := positivePeaksDescending(s.CurrentStrainPeaks())

	limit := reducedSections
	if len(peaks) < limit {
		limit = len(peaks)
	}
	for i := 0; i < limit; i++ {
		scale := math.Log10(mathutil.Clamp(float64(i)/float64(reducedSections), 0.0, 1.0)*9.0 + 1.0)
		peaks[i] *= reducedStrainBaseline + (1.0-reducedStrainBaseline)*scale
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(peaks)))

	difficulty := 0.0
	weight := 1.0
	for _, strain := range peaks {
		difficulty += strain * weight
		weight *= decayWeight
	}
	return difficulty
}
