package difficulty

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
)

const (
	normalisedRadius    = 50.0
	normalisedDiameter  = normalisedRadius * 2
	minDeltaTime        = 25.0
	maximumSliderRadius = normalisedRadius * 2.4
	assumedSliderRadius = normalisedRadius * 1.8
)

// AnnotatedObject is a hit object preprocessed for strain evaluation: its
// timings are clock-rate adjusted, distances are normalised to a fixed
// circle radius, and it can walk backward/forward through the object arena
// it belongs to (Previous/Next) the way the evaluators need for lookahead
// and history windows.
type AnnotatedObject struct {
	Base      *Object
	Last      *Object
	ClockRate float64
	Objects   []*AnnotatedObject
	Index     int

	DeltaTime float64
	StartTime float64
	EndTime   float64

	StrainTime         float64
	LazyJumpDistance   float64
	MinimumJumpDistance float64
	MinimumJumpTime    float64
	TravelDistance     float64
	TravelTime         float64
	LazyTravelDistance float64
	LazyTravelTime     float64
	LazyEndPosition    *beatmap.Point
	Angle              *float64
	HitWindowGreat     float64

	// AdjustedDeltaTime and SmallCircleBonus are not surfaced as distinct
	// fields anywhere the evaluators' reference implementation we ported
	// from keeps; we reconstruct them here from the same scaling-factor
	// arithmetic _set_distances already performs, since the evaluators
	// read them directly off every object they visit.
	AdjustedDeltaTime float64
	SmallCircleBonus  float64
}

// NewAnnotatedObject builds and fully preprocesses one annotated object,
// appending nothing to objects itself — the caller owns arena construction
// order since later objects need to see earlier ones already appended.
func NewAnnotatedObject(base, last *Object, clockRate float64, objects []*AnnotatedObject, index int) *AnnotatedObject {
	o := &AnnotatedObject{
		Base:      base,
		Last:      last,
		ClockRate: clockRate,
		Objects:   objects,
		Index:     index,
	}

	o.DeltaTime = (base.StartTime - last.StartTime) / clockRate
	o.StartTime = base.StartTime / clockRate
	o.EndTime = base.EndTime / clockRate

	o.StrainTime = math.Max(o.DeltaTime, minDeltaTime)
	if base.HitWindowGreat != 0 {
		o.HitWindowGreat = (2.0 * base.HitWindowGreat) / clockRate
	}
	o.AdjustedDeltaTime = o.StrainTime

	o.SmallCircleBonus = 1.0
	if base.ObjectRadius > 0 && base.ObjectRadius < 30.0 {
		o.SmallCircleBonus = 1.0 + math.Min(30.0-base.ObjectRadius, 5.0)/50.0
	}

	prev := o.Previous(0)
	prevPrev := o.Previous(1)

	o.initialiseSliderValues(base)
	o.setDistances(base, prev)

	if prevPrev != nil && prevPrev.Base.ObjectType != KindSpinner {
		lastCursor := prev.endCursorPosition()
		lastLastCursor := prevPrev.endCursorPosition()

		v1 := vecSub(lastLastCursor, prev.Base.StackedPosition)
		v2 := vecSub(base.StackedPosition, lastCursor)

		dot := vecDot(v1, v2)
		det := vecDet(v1, v2)
		if v1.X != 0.0 || v1.Y != 0.0 {
			angle := math.Abs(math.Atan2(det, dot))
			o.Angle = &angle
		}
	}

	return o
}

// Previous returns the annotated object backwardsIndex+1 positions before
// this one in the arena, or nil if that would fall outside it.
func (o *AnnotatedObject) Previous(backwardsIndex int) *AnnotatedObject {
	idx := o.Index - (backwardsIndex + 1)
	if idx >= 0 && idx < len(o.Objects) {
		return o.Objects[idx]
	}
	return nil
}

// Next returns the annotated object forwardsIndex+1 positions after this
// one, or nil if that would fall outside the arena.
func (o *AnnotatedObject) Next(forwardsIndex int) *AnnotatedObject {
	idx := o.Index + (forwardsIndex + 1)
	if idx >= 0 && idx < len(o.Objects) {
		return o.Objects[idx]
	}
	return nil
}

func (o *AnnotatedObject) initialiseSliderValues(base *Object) {
	if base.ObjectType != KindSlider {
		o.LazyEndPosition = &base.StackedEndPosition
		return
	}

	repeatBonus := math.Pow(1.0+math.Max(float64(base.SliderRepeatCount-1), 0)/2.5, 1.0/2.5)

	o.LazyTravelDistance = base.LazyTravelDistance
	o.LazyTravelTime = base.LazyTravelTime
	o.TravelDistance = base.LazyTravelDistance * repeatBonus
	o.TravelTime = math.Max(o.LazyTravelTime/o.ClockRate, minDeltaTime)
	o.LazyEndPosition = &base.StackedEndPosition
}

func (o *AnnotatedObject) setDistances(base *Object, last *AnnotatedObject) {
	if base.ObjectType == KindSlider {
		if o.TravelDistance == 0.0 {
			o.TravelDistance = o.LazyTravelDistance
		}
		if o.TravelTime == 0.0 {
			o.TravelTime = math.Max(o.LazyTravelTime/o.ClockRate, minDeltaTime)
		}
	}

	if base.ObjectType == KindSpinner || (last != nil && last.Base.ObjectType == KindSpinner) {
		o.LazyJumpDistance = 0.0
		o.MinimumJumpDistance = 0.0
		o.MinimumJumpTime = o.StrainTime
		return
	}

	scalingFactor := 1.0
	if base.ObjectRadius > 0 {
		scalingFactor = normalisedRadius / base.ObjectRadius
	}
	if base.ObjectRadius < 30.0 {
		smallCircleBonus := math.Min(30.0-base.ObjectRadius, 5.0) / 50.0
		scalingFactor *= 1.0 + smallCircleBonus
	}

	var lastCursor beatmap.Point
	if last != nil {
		lastCursor = last.endCursorPosition()
	} else {
		lastCursor = base.StackedPosition
	}

	o.LazyJumpDistance = vecLength(vecMul(vecSub(base.StackedPosition, lastCursor), scalingFactor))
	o.MinimumJumpTime = o.StrainTime
	o.MinimumJumpDistance = o.LazyJumpDistance

	if last != nil && last.Base.ObjectType == KindSlider {
		lastTravelTime := math.Max(last.LazyTravelTime/o.ClockRate, minDeltaTime)
		o.MinimumJumpTime = math.Max(o.StrainTime-lastTravelTime, minDeltaTime)
		tailJumpVector := vecSub(last.Base.StackedEndPosition, base.StackedPosition)
		tailJumpDistance := vecLength(vecMul(tailJumpVector, scalingFactor))
		o.MinimumJumpDistance = math.Max(0.0, math.Min(
			o.LazyJumpDistance-(maximumSliderRadius-assumedSliderRadius),
			tailJumpDistance-maximumSliderRadius,
		))
	}

	o.TravelDistance = math.Max(o.TravelDistance, 0.0)
	o.MinimumJumpDistance = math.Max(o.MinimumJumpDistance, 0.0)
}

func (o *AnnotatedObject) endCursorPosition() beatmap.Point {
	if o.LazyEndPosition != nil {
		return *o.LazyEndPosition
	}
	return o.Base.StackedEndPosition
}

// GetDoubletapness estimates how likely this object and next are a
// deliberate double-tap rather than two independently-timed hits, based on
// how close their deltas are relative to the Great hit window.
func (o *AnnotatedObject) GetDoubletapness(next *AnnotatedObject) float64 {
	if next == nil {
		return 0.0
	}

	currDeltaTime := math.Max(1.0, o.DeltaTime)
	nextDeltaTime := math.Max(1.0, next.DeltaTime)
	deltaDifference := math.Abs(nextDeltaTime - currDeltaTime)
	speedRatio := currDeltaTime / math.Max(currDeltaTime, deltaDifference)
	windowRatio := 0.0
	if o.HitWindowGreat > 0 {
		windowRatio = math.Pow(math.Min(1.0, currDeltaTime/o.HitWindowGreat), 2.0)
	}
	return 1.0 - math.Pow(speedRatio, 1.0-windowRatio)
}

func vecSub(a, b beatmap.Point) beatmap.Point { return beatmap.Point{X: a.X - b.X, Y: a.Y - b.Y} }
func vecMul(a beatmap.Point, s float64) beatmap.Point { return beatmap.Point{X: a.X * s, Y: a.Y * s} }
func vecLength(a beatmap.Point) float64               { return math.Hypot(a.X, a.Y) }
func vecDot(a, b beatmap.Point) float64               { return a.X*b.X + a.Y*b.Y }
func vecDet(a, b beatmap.Point) float64               { return a.X*b.Y - a.Y*b.X }

// BuildAnnotatedObjects wraps a time-ordered Object slice into the annotated
// arena the skills and evaluators walk. The first Object only ever serves as
// "last" for the second; it never gets its own AnnotatedObject, matching how
// calculate_difficulty seeds its loop from index 1.
func BuildAnnotatedObjects(objects []Object, clockRate float64) []*AnnotatedObject {
	if len(objects) <= 1 {
		return nil
	}

	annotated := make([]*AnnotatedObject, 0, len(objects)-1)
	for idx := 1; idx < len(objects); idx++ {
		current := &objects[idx]
		last := &objects[idx-1]
		obj := NewAnnotatedObject(current, last, clockRate, annotated, len(annotated))
		annotated = append(annotated, obj)
	}
	// Previous()/Next() walk o.Objects by index; backfill every object's
	// reference to the finished arena now that it has stopped growing
	// (during construction each object only ever looked backward, into the
	// already-built prefix, so the growing slice was safe to read from).
	for _, obj := range annotated {
		obj.Objects = annotated
	}
	return annotated
}
