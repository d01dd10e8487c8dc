// Package hitwindow computes the millisecond timing windows a beatmap's
// Overall Difficulty stat maps to, and the inverse mapping used to
// rate-adjust OD back to an equivalent value after a clock-rate mod.
package hitwindow

// DifficultyRange is a piecewise-linear mapping anchored at difficulty 5.0:
// Mid at 5.0, scaling toward Min below it and toward Max above it.
type DifficultyRange struct {
	Min float64
	Mid float64
	Max float64
}

// Value maps a difficulty stat (0-10) through r, linearly interpolating
// between Min/Mid/Max around the difficulty-5.0 midpoint.
func Value(difficulty float64, r DifficultyRange) float64 {
	switch {
	case difficulty > 5.0:
		return r.Mid + (r.Max-r.Mid)*((difficulty-5.0)/5.0)
	case difficulty < 5.0:
		return r.Mid + (r.Mid-r.Min)*((difficulty-5.0)/5.0)
	default:
		return r.Mid
	}
}

// Inverse is the inverse of Value: given a millisecond window, recover the
// difficulty stat that would have produced it. Value picks its branch by
// which side of 5.0 the difficulty falls on, not by whether value is above
// or below Mid directly — r.Max can sit on either side of r.Mid (the AR
// preempt range descends: Max < Mid), so the branch here has to be chosen by
// which side value falls on relative to Mid *along the Mid-to-Max
// direction*, not by a plain value > r.Mid comparison.
func Inverse(value float64, r DifficultyRange) float64 {
	if value == r.Mid {
		return 5.0
	}
	if (value-r.Mid)*(r.Max-r.Mid) > 0 {
		return ((value-r.Mid)/(r.Max-r.Mid))*5.0 + 5.0
	}
	return ((value-r.Mid)/(r.Mid-r.Min))*5.0 + 5.0
}

// HitResult names a judgement tier.
type HitResult int

const (
	Great HitResult = iota
	Ok
	Meh
	Miss
)

var (
	greatWindowRange = DifficultyRange{Min: 80, Mid: 50, Max: 20}
	okWindowRange    = DifficultyRange{Min: 140, Mid: 100, Max: 60}
	mehWindowRange   = DifficultyRange{Min: 200, Mid: 150, Max: 100}
	// MissWindow is fixed regardless of Overall Difficulty.
	MissWindow = 400.0
)

// OsuHitWindows holds the great/ok/meh windows for a chosen Overall
// Difficulty, each half a millisecond tighter than the raw DifficultyRange
// output to account for osu!'s judgement being inclusive of the window edge.
type OsuHitWindows struct {
	great float64
	ok    float64
	meh   float64
}

// SetDifficulty computes the three windows for the given Overall Difficulty.
func (h *OsuHitWindows) SetDifficulty(difficulty float64) {
	h.great = Value(difficulty, greatWindowRange) - 0.5
	h.ok = Value(difficulty, okWindowRange) - 0.5
	h.meh = Value(difficulty, mehWindowRange) - 0.5
}

// WindowFor returns the millisecond window for the given judgement tier.
func (h *OsuHitWindows) WindowFor(result HitResult) float64 {
	switch result {
	case Great:
		return h.great
	case Ok:
		return h.ok
	case Meh:
		return h.meh
	default:
		return MissWindow
	}
}
