// Package evaluate implements the per-object difficulty contribution
// functions (aim, speed, rhythm) that strain skills accumulate over a play.
// Each evaluator is a pure function of the annotated object arena: it reads
// an object's neighbors but carries no state of its own between calls.
package evaluate

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
)

const (
	wideAngleMultiplier     = 1.5
	acuteAngleMultiplier    = 2.55
	sliderMultiplier        = 1.35
	velocityChangeMultiplier = 0.75
	wiggleMultiplier        = 1.02
)

// Aim scores how much a jump or stream of jumps taxes cursor movement:
// raw velocity plus bonuses for wide angles, acute angles, overlapping
// velocity changes, wiggle patterns, and (optionally) slider travel.
func Aim(current *difficulty.AnnotatedObject, includeSliders bool) float64 {
	if current.Base.ObjectType == difficulty.KindSpinner || current.Index <= 1 {
		return 0.0
	}

	prev := current.Previous(0)
	prevPrev := current.Previous(1)
	prevPrevPrev := current.Previous(2)

	if prev == nil || prev.Base.ObjectType == difficulty.KindSpinner {
		return 0.0
	}
	if prevPrev == nil {
		return 0.0
	}

	radius := 50.0
	diameter := 100.0

	currVelocity := current.LazyJumpDistance / current.AdjustedDeltaTime
	if prev.Base.ObjectType == difficulty.KindSlider && includeSliders {
		travelVelocity := prev.TravelDistance / math.Max(prev.TravelTime, 25.0)
		movementVelocity := current.MinimumJumpDistance / math.Max(current.MinimumJumpTime, 25.0)
		currVelocity = math.Max(currVelocity, movementVelocity+travelVelocity)
	}

	prevVelocity := prev.LazyJumpDistance / prev.AdjustedDeltaTime
	if prevPrev.Base.ObjectType == difficulty.KindSlider && includeSliders {
		travelVelocity := prevPrev.TravelDistance / math.Max(prevPrev.TravelTime, 25.0)
		movementVelocity := prev.MinimumJumpDistance / math.Max(prev.MinimumJumpTime, 25.0)
		prevVelocity = math.Max(prevVelocity, movementVelocity+travelVelocity)
	}

	wideAngleBonus := 0.0
	acuteAngleBonus := 0.0
	sliderBonus := 0.0
	velocityChangeBonus := 0.0
	wiggleBonus := 0.0

	aimStrain := currVelocity

	if current.Angle != nil && prev.Angle != nil {
		currAngle := *current.Angle
		lastAngle := *prev.Angle

		angleBonus := math.Min(currVelocity, prevVelocity)

		if math.Max(current.AdjustedDeltaTime, prev.AdjustedDeltaTime) < 1.25*math.Min(current.AdjustedDeltaTime, prev.AdjustedDeltaTime) {
			acuteAngleBonus = calcAcuteAngleBonus(currAngle)
			acuteAngleBonus *= 0.08 + 0.92*(1-math.Min(acuteAngleBonus, math.Pow(calcAcuteAngleBonus(lastAngle), 3)))
			acuteAngleBonus *= angleBonus *
				mathutil.Smootherstep(mathutil.MillisecondsToBPM(current.AdjustedDeltaTime, 2), 300, 400) *
				mathutil.Smootherstep(current.LazyJumpDistance, diameter, diameter*2)
		}

		wideAngleBonus = calcWideAngleBonus(currAngle)
		wideAngleBonus *= 1 - math.Min(wideAngleBonus, math.Pow(calcWideAngleBonus(lastAngle), 3))
		wideAngleBonus *= angleBonus * mathutil.Smootherstep(current.LazyJumpDistance, 0, diameter)

		wiggleBonus = angleBonus *
			mathutil.Smootherstep(current.LazyJumpDistance, radius, diameter) *
			math.Pow(mathutil.ReverseLerp(current.LazyJumpDistance, diameter*3, diameter), 1.8) *
			mathutil.Smootherstep(currAngle, radians(110), radians(60)) *
			mathutil.Smootherstep(prev.LazyJumpDistance, radius, diameter) *
			math.Pow(mathutil.ReverseLerp(prev.LazyJumpDistance, diameter*3, diameter), 1.8) *
			mathutil.Smootherstep(derefOr(prev.Angle, 0), radians(110), radians(60))

		if prevPrevPrev != nil {
			lastBasePos := prev.Base.Position
			lastPrevPos := prevPrev.Base.Position

			dist := math.Hypot(lastPrevPos.X-lastBasePos.X, lastPrevPos.Y-lastBasePos.Y)
			if dist < 1 {
				wideAngleBonus *= 1 - 0.35*(1-dist)
			}
		}
	}

	if math.Max(prevVelocity, currVelocity) != 0 {
		prevVelocity = (prev.LazyJumpDistance + prevPrev.TravelDistance) / prev.AdjustedDeltaTime
		currVelocity = (current.LazyJumpDistance + prev.TravelDistance) / current.AdjustedDeltaTime

		distRatio := mathutil.Smoothstep(math.Abs(prevVelocity-currVelocity)/math.Max(prevVelocity, currVelocity), 0, 1)
		overlapVelocityBuff := math.Min(
			diameter*1.25/math.Min(current.AdjustedDeltaTime, prev.AdjustedDeltaTime),
			math.Abs(prevVelocity-currVelocity),
		)
		velocityChangeBonus = overlapVelocityBuff * distRatio
		velocityChangeBonus *= math.Pow(
			math.Min(current.AdjustedDeltaTime, prev.AdjustedDeltaTime)/math.Max(current.AdjustedDeltaTime, prev.AdjustedDeltaTime),
			2,
		)
	}

	if prev.Base.ObjectType == difficulty.KindSlider {
		sliderBonus = prev.TravelDistance / math.Max(prev.TravelTime, 25.0)
	}

	aimStrain += wiggleBonus * wiggleMultiplier
	aimStrain += velocityChangeBonus * velocityChangeMultiplier
	aimStrain += math.Max(acuteAngleBonus*acuteAngleMultiplier, wideAngleBonus*wideAngleMultiplier)
	aimStrain *= current.SmallCircleBonus

	if includeSliders {
		aimStrain += sliderBonus * sliderMultiplier
	}

	return aimStrain
}

func calcWideAngleBonus(angle float64) float64 {
	return mathutil.Smoothstep(angle, radians(40), radians(140))
}

func calcAcuteAngleBonus(angle float64) float64 {
	return mathutil.Smoothstep(angle, radians(140), radians(40))
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func derefOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
