package evaluate

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

const (
	singleSpacingThreshold = 100.0 * 1.25 // NormalisedDiameter * 1.25
	minSpeedBonus          = 200.0
	speedBalancingFactor   = 40.0
	distanceMultiplier     = 0.8
)

// Speed scores how demanding an object's timing is to tap accurately,
// combining a tight-timing bonus with a spacing bonus and discounting
// likely double-taps.
func Speed(current *difficulty.AnnotatedObject, modSet mods.Set) float64 {
	if current.Base.ObjectType == difficulty.KindSpinner {
		return 0.0
	}

	prev := current.Previous(0)
	if prev == nil {
		return 0.0
	}

	strainTime := current.AdjustedDeltaTime
	doubletapness := 1.0 - current.GetDoubletapness(current.Next(0))

	strainTime /= mathutil.Clamp((strainTime/current.HitWindowGreat)/0.93, 0.92, 1.0)

	speedBonus := 0.0
	if mathutil.MillisecondsToBPM(strainTime, 4) > minSpeedBonus {
		speedBonus = 0.75 * math.Pow((mathutil.BPMToMilliseconds(minSpeedBonus, 4)-strainTime)/speedBalancingFactor, 2)
	}

	travelDistance := prev.TravelDistance
	distance := travelDistance + current.MinimumJumpDistance
	distance = math.Min(distance, singleSpacingThreshold)
	distanceBonus := math.Pow(distance/singleSpacingThreshold, 3.95) * distanceMultiplier
	distanceBonus *= math.Sqrt(current.SmallCircleBonus)

	if modSet.Has(mods.AutoPilot) {
		distanceBonus = 0.0
	}

	result := (1.0 + speedBonus + distanceBonus) * 1000.0 / strainTime
	return result * doubletapness
}
