package skill

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/difficulty/evaluate"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
)

const (
	aimSkillMultiplier = 25.6
	aimStrainDecayBase = 0.15
)

// Aim accumulates the aim evaluator's per-object difficulty into a strain
// rating, optionally counting slider travel (a second Aim instance with
// IncludeSliders=false isolates how much of the rating sliders contribute).
type Aim struct {
	Strain
	IncludeSliders bool

	currentStrain float64
	sliderStrains []float64
}

func (a *Aim) strainDecay(ms float64) float64 {
	return math.Pow(aimStrainDecayBase, ms/1000.0)
}

// CalculateInitialStrain implements strainSource.
func (a *Aim) CalculateInitialStrain(time float64, current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}
	return a.currentStrain * a.strainDecay(time-prev.StartTime)
}

// StrainValueAt implements strainSource.
func (a *Aim) StrainValueAt(current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}

	a.currentStrain *= a.strainDecay(current.DeltaTime)
	d := evaluate.Aim(current, a.IncludeSliders)
	a.currentStrain += d * aimSkillMultiplier

	if current.Base.ObjectType == difficulty.KindSlider {
		a.sliderStrains = append(a.sliderStrains, a.currentStrain)
	}

	return a.currentStrain
}

// Process advances this skill by one object.
func (a *Aim) Process(current *difficulty.AnnotatedObject) {
	a.Strain.Process(current, a)
}

// DifficultyValue is the osu!-ruleset reduced strain-peak aggregation.
func (a *Aim) DifficultyValue() float64 {
	return OsuStrainDifficultyValue(&a.Strain, defaultReducedSectionCount)
}

// CountTopWeightedStrains reports how many objects sit near this skill's
// peak difficulty.
func (a *Aim) CountTopWeightedStrains() float64 {
	return a.Strain.CountTopWeightedStrains(a.DifficultyValue())
}

// GetDifficultSliders sums, over every slider-ending strain recorded, a
// logistic weight of how close that strain sat to the hardest slider in the
// map — an estimate of how many sliders meaningfully drive the aim rating.
func (a *Aim) GetDifficultSliders() float64 {
	if len(a.sliderStrains) == 0 {
		return 0.0
	}

	maxSliderStrain := a.sliderStrains[0]
	for _, s := range a.sliderStrains {
		if s > maxSliderStrain {
			maxSliderStrain = s
		}
	}
	if maxSliderStrain <= 0 {
		return 0.0
	}

	total := 0.0
	for _, strain := range a.sliderStrains {
		total += 1.0 / (1.0 + math.Exp(-(strain/maxSliderStrain*12.0 - 6.0)))
	}
	return total
}

// CountTopWeightedSliders is the slider-count analogue of
// CountTopWeightedStrains, scaled against this skill's own difficulty.
func (a *Aim) CountTopWeightedSliders() float64 {
	if len(a.sliderStrains) == 0 {
		return 0.0
	}
	consistentTopStrain := a.DifficultyValue() / 10.0
	if consistentTopStrain == 0 {
		return 0.0
	}
	total := 0.0
	for _, strain := range a.sliderStrains {
		total += mathutil.Logistic(strain/consistentTopStrain, 0.88, 10.0, 1.1)
	}
	return total
}
