// Package difficulty turns a parsed beatmap into the clock-rate-adjusted,
// stacking-resolved sequence of annotated hit objects that the aim/speed/
// rhythm evaluators and strain skills consume.
package difficulty

import (
	"math"
	"sort"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/hitwindow"
)

// ObjectKind mirrors the three playable hit object kinds, as a string so log
// lines and test failures read directly without a lookup table.
type ObjectKind string

const (
	KindCircle  ObjectKind = "Circle"
	KindSlider  ObjectKind = "Slider"
	KindSpinner ObjectKind = "Spinner"
)

// Object is the clock-rate-independent geometry and timing of a single hit
// object: position, stacked position, and (for sliders) the lazy travel
// distance used by the aim evaluator.
type Object struct {
	StartTime float64
	EndTime   float64

	Position       beatmap.Point
	EndPosition    beatmap.Point
	StackedPosition    beatmap.Point
	StackedEndPosition beatmap.Point

	ObjectRadius float64
	ObjectType   ObjectKind

	SliderLength       float64
	SliderDuration     float64
	SliderRepeatCount  int
	HitWindowGreat     float64
	LazyTravelDistance float64
	LazyTravelTime     float64
}

const (
	preemptMax = 1800.0
	preemptMid = 1200.0
	preemptMin = 450.0
)

var preemptRange = hitwindow.DifficultyRange{Min: preemptMax, Mid: preemptMid, Max: preemptMin}

// RateAdjustedApproachRate recovers the approach-rate value that, at the
// given clock rate, reproduces the same preempt time as approachRate does
// at 1.0x — used to report an AR figure meaningful after DT/HT.
func RateAdjustedApproachRate(approachRate, clockRate float64) float64 {
	preempt := hitwindow.Value(approachRate, preemptRange) / clockRate
	return hitwindow.Inverse(preempt, preemptRange)
}

// RateAdjustedOverallDifficulty is the OD analogue of RateAdjustedApproachRate,
// derived from the Great hit window rather than from a symmetric range table.
func RateAdjustedOverallDifficulty(overallDifficulty, clockRate float64) float64 {
	var windows hitwindow.OsuHitWindows
	windows.SetDifficulty(overallDifficulty)
	greatWindow := windows.WindowFor(hitwindow.Great) / clockRate
	return (79.5 - greatWindow) / 6.0
}

// GenerateObjects builds the stacking-resolved Object sequence for every hit
// object in the beatmap, in time order. Slider durations must already be
// resolved (beatmap.Beatmap.ResolveSliderDurations).
func GenerateObjects(bm *beatmap.Beatmap, radius, hitWindowGreat, approachRate, stackLeniency float64) []Object {
	sorted := make([]beatmap.HitObject, len(bm.HitObjects))
	copy(sorted, bm.HitObjects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Base().Time < sorted[j].Base().Time
	})

	offsets := computeStackOffsets(sorted, radius, approachRate, stackLeniency)

	objects := make([]Object, 0, len(sorted))
	for idx, ho := range sorted {
		offset := offsets[idx]
		base := ho.Base()
		pos := beatmap.Point{X: base.X, Y: base.Y}
		stackedPos := applyStackOffset(pos, offset)

		switch v := ho.(type) {
		case *beatmap.Circle:
			objects = append(objects, Object{
				StartTime:          base.Time,
				EndTime:            base.Time,
				Position:           pos,
				EndPosition:        pos,
				StackedPosition:    stackedPos,
				StackedEndPosition: stackedPos,
				ObjectRadius:       radius,
				ObjectType:         KindCircle,
				HitWindowGreat:     hitWindowGreat,
			})
		case *beatmap.Slider:
			endTime := base.Time + v.Duration
			endPos := sliderEndPosition(v)
			stackedEndPos := applyStackOffset(endPos, offset)
			repeatCount := v.Slides
			if repeatCount < 1 {
				repeatCount = 1
			}
			scalingFactor := normalisedRadius / radius
			if radius <= 0 {
				scalingFactor = 1.0
			}
			spanCount := repeatCount
			lazyTravelDistance := v.Length * float64(spanCount) * scalingFactor / 100.0

			objects = append(objects, Object{
				StartTime:          base.Time,
				EndTime:            endTime,
				Position:           pos,
				EndPosition:        endPos,
				StackedPosition:    stackedPos,
				StackedEndPosition: stackedEndPos,
				ObjectRadius:       radius,
				ObjectType:         KindSlider,
				SliderLength:       v.Length,
				SliderDuration:     v.Duration,
				SliderRepeatCount:  repeatCount,
				HitWindowGreat:     hitWindowGreat,
				LazyTravelDistance: lazyTravelDistance,
				LazyTravelTime:     v.Duration,
			})
		case *beatmap.Spinner:
			objects = append(objects, Object{
				StartTime:          base.Time,
				EndTime:            v.EndTime,
				Position:           pos,
				EndPosition:        pos,
				StackedPosition:    stackedPos,
				StackedEndPosition: stackedPos,
				ObjectRadius:       radius,
				ObjectType:         KindSpinner,
				HitWindowGreat:     hitWindowGreat,
			})
		}
	}
	return objects
}

func sliderEndPosition(s *beatmap.Slider) beatmap.Point {
	if p, ok := s.PathEnd(); ok {
		return p
	}
	return beatmap.Point{X: s.X, Y: s.Y}
}

func applyStackOffset(p beatmap.Point, offset float64) beatmap.Point {
	if offset == 0.0 {
		return p
	}
	return beatmap.Point{X: p.X + offset, Y: p.Y + offset}
}

func distance(a, b beatmap.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func objectEndTime(ho beatmap.HitObject) float64 {
	switch v := ho.(type) {
	case *beatmap.Slider:
		return v.Time + v.Duration
	case *beatmap.Spinner:
		return v.EndTime
	default:
		return ho.Base().Time
	}
}

// computeStackOffsets reproduces osu!'s legacy stacking algorithm: each
// non-spinner object's stack height counts the later objects that land
// within stack_distance pixels of its head (or, for a slider, its tail)
// inside the approach-rate-derived stack_threshold window, chaining the
// window forward from each match. The earlier object is then nudged
// diagonally by its height; the last object of a stack keeps offset 0.
func computeStackOffsets(sorted []beatmap.HitObject, radius, approachRate, stackLeniency float64) []float64 {
	if len(sorted) == 0 {
		return nil
	}

	const stackDistance = 3.0
	scale := 1.0
	if radius > 0 {
		scale = radius / 64.0
	}
	stackThreshold := hitwindow.Value(approachRate, preemptRange) * stackLeniency
	if stackThreshold < 0 {
		stackThreshold = 0
	}

	heights := make([]int, len(sorted))

	for i, base := range sorted {
		if _, ok := base.(*beatmap.Spinner); ok {
			continue
		}

		baseBase := base.Base()
		baseStart := baseBase.Time
		baseEnd := objectEndTime(base)
		basePos := beatmap.Point{X: baseBase.X, Y: baseBase.Y}
		var baseTailPos *beatmap.Point
		if slider, ok := base.(*beatmap.Slider); ok {
			p := sliderEndPosition(slider)
			baseTailPos = &p
		}

		currentEndTime := baseEnd
		if currentEndTime < baseStart {
			currentEndTime = baseStart
		}

		for j := i + 1; j < len(sorted); j++ {
			other := sorted[j]
			if _, ok := other.(*beatmap.Spinner); ok {
				continue
			}

			otherBase := other.Base()
			otherStart := otherBase.Time
			if otherStart-stackThreshold > currentEndTime {
				break
			}

			otherPos := beatmap.Point{X: otherBase.X, Y: otherBase.Y}
			stacked := distance(basePos, otherPos) < stackDistance
			if !stacked && baseTailPos != nil {
				stacked = distance(*baseTailPos, otherPos) < stackDistance
			}

			if stacked {
				heights[i]++
				currentEndTime = otherStart
			}
		}
	}

	offsetPerStack := -6.4 * scale
	offsets := make([]float64, len(heights))
	for i, h := range heights {
		offsets[i] = float64(h) * offsetPerStack
	}
	return offsets
}
