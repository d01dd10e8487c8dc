package skill

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/difficulty/evaluate"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

const (
	speedSkillMultiplier  = 1.46
	speedStrainDecayBase  = 0.3
	speedReducedSections  = 5
)

// Speed accumulates the speed evaluator's tapping difficulty, weighted each
// object by the rhythm evaluator's irregularity score.
type Speed struct {
	Strain
	Mods mods.Set

	currentStrain float64
	currentRhythm float64
}

func (s *Speed) strainDecay(ms float64) float64 {
	return math.Pow(speedStrainDecayBase, ms/1000.0)
}

// CalculateInitialStrain implements strainSource.
func (s *Speed) CalculateInitialStrain(time float64, current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}
	return (s.currentStrain * s.currentRhythm) * s.strainDecay(time-prev.StartTime)
}

// StrainValueAt implements strainSource.
func (s *Speed) StrainValueAt(current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}

	s.currentStrain *= s.strainDecay(current.StrainTime)
	d := evaluate.Speed(current, s.Mods)
	s.currentStrain += d * speedSkillMultiplier

	s.currentRhythm = evaluate.Rhythm(current)
	return s.currentStrain * s.currentRhythm
}

// Process advances this skill by one object.
func (s *Speed) Process(current *difficulty.AnnotatedObject) {
	s.Strain.Process(current, s)
}

// DifficultyValue is the osu!-ruleset reduced strain-peak aggregation.
func (s *Speed) DifficultyValue() float64 {
	return OsuStrainDifficultyValue(&s.Strain, speedReducedSections)
}

// CountTopWeightedStrains reports how many objects sit near this skill's
// peak difficulty.
func (s *Speed) CountTopWeightedStrains() float64 {
	return s.Strain.CountTopWeightedStrains(s.DifficultyValue())
}

// RelevantNoteCount estimates how many notes meaningfully drive the speed
// rating, via the same logistic weighting GetDifficultSliders uses for aim.
func (s *Speed) RelevantNoteCount() float64 {
	if len(s.ObjectStrains) == 0 {
		return 0.0
	}
	maxStrain := s.ObjectStrains[0]
	for _, v := range s.ObjectStrains {
		if v > maxStrain {
			maxStrain = v
		}
	}
	if maxStrain <= 0 {
		return 0.0
	}
	total := 0.0
	for _, strain := range s.ObjectStrains {
		total += 1.0 / (1.0 + math.Exp(-(strain/maxStrain*12.0 - 6.0)))
	}
	return total
}
