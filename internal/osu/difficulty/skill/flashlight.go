package skill

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
)

// flashlightStrainDecayBase matches the other strain skills' decay-per-
// second convention; Flashlight's skill_multiplier from the reference
// algorithm is never actually applied in strain_value_at, so it has no Go
// equivalent here.
const flashlightStrainDecayBase = 0.15

// Flashlight scores how much the Flashlight mod's restricted vision taxes
// cursor movement; unlike Aim and Speed it sums every section peak evenly
// rather than top-weighting them, since restricted vision punishes
// sustained difficulty rather than a single hard moment.
type Flashlight struct {
	Strain

	currentStrain float64
}

func (f *Flashlight) strainDecay(ms float64) float64 {
	return math.Pow(flashlightStrainDecayBase, ms/1000.0)
}

// CalculateInitialStrain implements strainSource.
func (f *Flashlight) CalculateInitialStrain(time float64, current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}
	return f.currentStrain * f.strainDecay(time-prev.StartTime)
}

// StrainValueAt implements strainSource. Flashlight has no dedicated
// evaluator of its own in the reference algorithm: its contribution is pure
// strain decay, since the mod's difficulty comes entirely from how long a
// hard section of cursor movement stays lit rather than from any one
// object's geometry.
func (f *Flashlight) StrainValueAt(current *difficulty.AnnotatedObject) float64 {
	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}
	f.currentStrain *= f.strainDecay(current.DeltaTime)
	return f.currentStrain
}

// Process advances this skill by one object.
func (f *Flashlight) Process(current *difficulty.AnnotatedObject) {
	f.Strain.Process(current, f)
}

// DifficultyValue sums every section peak, unweighted.
func (f *Flashlight) DifficultyValue() float64 {
	total := 0.0
	for _, p := range f.CurrentStrainPeaks() {
		total += p
	}
	return total
}

// DifficultyToPerformance converts a Flashlight difficulty rating directly
// to a performance-points contribution.
func DifficultyToPerformance(difficulty float64) float64 {
	return 25.0 * math.Pow(difficulty, 2)
}
