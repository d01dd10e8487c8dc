package evaluate

import (
	"math"

	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
)

const (
	historyTimeMax         = 5 * 1000.0
	historyObjectsMax      = 32
	rhythmOverallMultiplier = 1.0
	rhythmRatioMultiplier   = 15.0
)

// island tracks a run of near-equal note spacings, the way a drumroll or a
// stream segment reads as one rhythmic unit rather than N independent
// deltas. Two islands compare equal when their deltas are within epsilon
// and their note counts match, mirroring a perceptual "this sounds like the
// same pattern repeating" judgement.
type island struct {
	deltaDifferenceEpsilon float64
	delta                  float64
	deltaCount             int
}

func newEmptyIsland(epsilon float64) island {
	return island{deltaDifferenceEpsilon: epsilon, delta: math.Inf(1), deltaCount: 0}
}

func newIsland(delta, epsilon float64) island {
	return island{deltaDifferenceEpsilon: epsilon, delta: math.Max(delta, minDeltaTimeConst), deltaCount: 1}
}

const minDeltaTimeConst = 25.0

func (i island) addDelta(delta float64) island {
	if math.IsInf(i.delta, 1) {
		i.delta = math.Max(delta, minDeltaTimeConst)
	}
	i.deltaCount++
	return i
}

func (i island) isSimilarPolarity(other island) bool {
	return i.deltaCount%2 == other.deltaCount%2
}

func (i island) equal(other island) bool {
	return math.Abs(i.delta-other.delta) < i.deltaDifferenceEpsilon && i.deltaCount == other.deltaCount
}

type islandCount struct {
	isle  island
	count int
}

// Rhythm scores how irregular the recent spacing pattern has been: long
// runs of identical spacing score low, spacing changes that break an
// established pattern score high, weighted down for slider-adjacent deltas
// and likely double-taps.
func Rhythm(current *difficulty.AnnotatedObject) float64 {
	if current.Base.ObjectType == difficulty.KindSpinner {
		return 0.0
	}

	rhythmComplexitySum := 0.0
	deltaDifferenceEpsilon := current.HitWindowGreat * 0.3

	isl := newEmptyIsland(deltaDifferenceEpsilon)
	previousIsland := newEmptyIsland(deltaDifferenceEpsilon)
	var islandCounts []islandCount

	startRatio := 0.0
	firstDeltaSwitch := false

	historicalNoteCount := current.Index
	if historicalNoteCount > historyObjectsMax {
		historicalNoteCount = historyObjectsMax
	}
	rhythmStart := 0

	for rhythmStart < historicalNoteCount-2 {
		prevCandidate := current.Previous(rhythmStart)
		if prevCandidate == nil {
			break
		}
		if current.StartTime-prevCandidate.StartTime >= historyTimeMax {
			break
		}
		rhythmStart++
	}

	prev := current.Previous(rhythmStart)
	last := current.Previous(rhythmStart + 1)
	if prev == nil || last == nil {
		return 1.0
	}

	for i := rhythmStart; i > 0; i-- {
		curr := current.Previous(i - 1)
		if curr == nil {
			break
		}

		timeDecay := (historyTimeMax - (current.StartTime - curr.StartTime)) / historyTimeMax
		noteDecay := 0.0
		if historicalNoteCount != 0 {
			noteDecay = float64(historicalNoteCount-i) / float64(historicalNoteCount)
		}
		currHistoricalDecay := math.Min(noteDecay, timeDecay)

		currDelta := math.Max(curr.DeltaTime, 1e-7)
		prevDelta := math.Max(prev.DeltaTime, 1e-7)
		lastDelta := math.Max(last.DeltaTime, 1e-7)

		deltaDifference := math.Max(prevDelta, currDelta) / math.Min(prevDelta, currDelta)
		deltaDifferenceFraction := deltaDifference - math.Trunc(deltaDifference)
		currRatio := 1.0 + rhythmRatioMultiplier*math.Min(0.5, mathutil.SmoothstepBellCurve(deltaDifferenceFraction, 0.5, 0.5))
		differenceMultiplier := mathutil.Clamp(2.0-deltaDifference/8.0, 0.0, 1.0)
		windowPenalty := math.Min(1.0, math.Max(0.0, math.Abs(prevDelta-currDelta)-deltaDifferenceEpsilon)/deltaDifferenceEpsilon)

		effectiveRatio := windowPenalty * currRatio * differenceMultiplier

		if firstDeltaSwitch {
			if math.Abs(prevDelta-currDelta) < deltaDifferenceEpsilon {
				isl = isl.addDelta(math.Trunc(currDelta))
			} else {
				if curr.Base.ObjectType == difficulty.KindSlider {
					effectiveRatio *= 0.125
				}
				if prev.Base.ObjectType == difficulty.KindSlider {
					effectiveRatio *= 0.3
				}
				if isl.isSimilarPolarity(previousIsland) {
					effectiveRatio *= 0.5
				}
				if lastDelta > prevDelta+deltaDifferenceEpsilon && prevDelta > currDelta+deltaDifferenceEpsilon {
					effectiveRatio *= 0.125
				}
				if previousIsland.deltaCount == isl.deltaCount {
					effectiveRatio *= 0.5
				}

				foundIndex := -1
				for idx, ic := range islandCounts {
					if ic.isle.equal(isl) {
						foundIndex = idx
						break
					}
				}
				if foundIndex != -1 {
					count := islandCounts[foundIndex].count
					if previousIsland.equal(isl) {
						count++
					}
					power := mathutil.Logistic(isl.delta, 58.33, 0.24, 2.75)
					effectiveRatio *= math.Min(3.0/float64(count), math.Pow(1.0/float64(count), power))
					islandCounts[foundIndex].count = count
				} else {
					islandCounts = append(islandCounts, islandCount{isle: isl, count: 1})
				}

				doubletapness := prev.GetDoubletapness(curr)
				effectiveRatio *= 1 - doubletapness*0.75

				rhythmComplexitySum += math.Sqrt(effectiveRatio*startRatio) * currHistoricalDecay
				startRatio = effectiveRatio
				previousIsland = isl

				if prevDelta+deltaDifferenceEpsilon < currDelta {
					firstDeltaSwitch = false
				}

				isl = newIsland(math.Trunc(currDelta), deltaDifferenceEpsilon)
			}
		} else if prevDelta > currDelta+deltaDifferenceEpsilon {
			firstDeltaSwitch = true

			if curr.Base.ObjectType == difficulty.KindSlider {
				effectiveRatio *= 0.6
			}
			if prev.Base.ObjectType == difficulty.KindSlider {
				effectiveRatio *= 0.6
			}

			startRatio = effectiveRatio
			isl = newIsland(math.Trunc(currDelta), deltaDifferenceEpsilon)
		}

		last = prev
		prev = curr
	}

	rhythmDifficulty := math.Sqrt(4+rhythmComplexitySum*rhythmOverallMultiplier) / 2.0
	rhythmDifficulty *= 1 - current.GetDoubletapness(current.Next(0))

	return rhythmDifficulty
}
