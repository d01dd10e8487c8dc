// Package beatmap holds the typed object model for the game's section-based
// beatmap text format (General/Difficulty/TimingPoints/HitObjects), the
// parser that builds it, and the renderer that writes it back out.
package beatmap

import "fmt"

// General holds the [General] section's metadata. Unset fields take the
// defaults the game client itself uses.
type General struct {
	AudioFilename             string
	AudioLeadIn               int
	PreviewTime               int
	Countdown                 int
	SampleSet                 string
	StackLeniency             float64
	Mode                      int
	LetterboxInBreaks         int
	UseSkinSprites            int
	OverlayPosition           string
	SkinPreference            string
	EpilepsyWarning           int
	CountdownOffset           int
	SpecialStyle              int
	WidescreenStoryboard      int
	SamplesMatchPlaybackRate  int
}

// DefaultGeneral returns a General populated with the client's documented
// defaults, as if parsed from an empty [General] section.
func DefaultGeneral() General {
	return General{
		PreviewTime:     -1,
		SampleSet:       "Normal",
		StackLeniency:   0.7,
		OverlayPosition: "NoChange",
	}
}

// Difficulty holds the [Difficulty] section's five gameplay stats plus the
// slider speed parameters.
type Difficulty struct {
	HPDrainRate       float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderMultiplier  float64
	SliderTickRate    float64
}

// DefaultDifficulty returns the client's documented defaults for an empty or
// partially-specified [Difficulty] section. Every stat defaults to 5.0
// (including drain rate, resolved as an Open Question against a source
// variant that sometimes omits it) except the slider parameters.
func DefaultDifficulty() Difficulty {
	return Difficulty{
		HPDrainRate:       5.0,
		CircleSize:        5.0,
		OverallDifficulty: 5.0,
		ApproachRate:      5.0,
		SliderMultiplier:  1.4,
		SliderTickRate:    1.0,
	}
}

// TimingPoint is one entry of the [TimingPoints] timeline. A positive
// BeatLength makes it uninherited (it sets the BPM); a negative BeatLength
// makes it inherited (it sets a slider-velocity multiplier relative to the
// last uninherited point).
type TimingPoint struct {
	Time         int
	BeatLength   float64
	Meter        int
	SampleSet    int
	SampleIndex  int
	Volume       int
	Uninherited  int
	Effects      int
}

// IsUninherited reports whether this point sets the BPM (as opposed to a
// slider-velocity multiplier).
func (t TimingPoint) IsUninherited() bool {
	return t.Uninherited != 0
}

// BPM returns the tempo this point establishes. Only meaningful for
// uninherited points; callers should filter first.
func (t TimingPoint) BPM() float64 {
	if t.BeatLength == 0 {
		return 0
	}
	return 60000.0 / t.BeatLength
}

// SliderVelocityMultiplier returns the multiplier an inherited point applies
// to the beatmap's base slider velocity. Only meaningful for inherited
// points.
func (t TimingPoint) SliderVelocityMultiplier() float64 {
	if t.BeatLength == 0 {
		return 1.0
	}
	bl := t.BeatLength
	if bl < 0 {
		bl = -bl
	}
	return 100.0 / bl
}

// HitSample is the optional trailing "normalSet:additionSet:index:volume:custom"
// sample descriptor attached to a hit object.
type HitSample struct {
	NormalSet   int
	AdditionSet int
	Index       int
	Volume      int
	Custom      string
}

// Point is a 2D control point on a slider curve.
type Point struct {
	X, Y float64
}

// CurveKind identifies the interpolation a SliderCurve segment uses.
type CurveKind byte

const (
	CurveBezier   CurveKind = 'B'
	CurveLinear   CurveKind = 'L'
	CurveCatmull  CurveKind = 'C'
	CurvePerfect  CurveKind = 'P'
)

// SliderCurve is one "T|x:y|x:y|..." run of a slider's path. A slider's full
// geometry is the concatenation of its Curves.
type SliderCurve struct {
	Kind   CurveKind
	Points []Point
}

// HitObjectBase holds the fields every hit object variant shares.
type HitObjectBase struct {
	X, Y      float64
	Time      float64
	Type      int
	HitSound  int
	HitSample HitSample
}

// HitObject is the tagged-union interface implemented by *Circle, *Slider,
// and *Spinner. Consumers exhaustively type-switch rather than querying a
// type field, matching Go idiom for the source's base-class dispatch.
type HitObject interface {
	Base() HitObjectBase
	hitObjectKind() string
}

// Circle is a single-tap hit object.
type Circle struct {
	HitObjectBase
}

func (c *Circle) Base() HitObjectBase { return c.HitObjectBase }
func (c *Circle) hitObjectKind() string { return "circle" }

// Slider is a hit object with a curved path, held for one or more repeats.
// Duration is derived by ResolveSliderDurations and is not set by the parser
// alone.
type Slider struct {
	HitObjectBase
	Curves     []SliderCurve
	Slides     int
	Length     float64
	Duration   float64
	EdgeSounds []int
	EdgeSets   [][2]int
}

func (s *Slider) Base() HitObjectBase { return s.HitObjectBase }
func (s *Slider) hitObjectKind() string { return "slider" }

// PathEnd returns the final control point of the slider's last curve segment
// — the tail of the rendered path.
func (s *Slider) PathEnd() (Point, bool) {
	if len(s.Curves) == 0 {
		return Point{}, false
	}
	last := s.Curves[len(s.Curves)-1]
	if len(last.Points) == 0 {
		return Point{}, false
	}
	return last.Points[len(last.Points)-1], true
}

// Spinner is a hold-and-spin hit object running from Time to EndTime.
type Spinner struct {
	HitObjectBase
	EndTime float64
}

func (s *Spinner) Base() HitObjectBase { return s.HitObjectBase }
func (s *Spinner) hitObjectKind() string { return "spinner" }

// Beatmap is the complete, immutable-after-construction parsed chart.
type Beatmap struct {
	General      General
	Difficulty   Difficulty
	TimingPoints []TimingPoint
	HitObjects   []HitObject
}

// PreviousTimingPoint returns the last timing point at or before time that
// satisfies filter (or all points, if filter is nil), per the standard
// last-by-position tie-break.
func (b *Beatmap) PreviousTimingPoint(time int, filter func(TimingPoint) bool) (TimingPoint, bool) {
	var found TimingPoint
	ok := false
	for _, tp := range b.TimingPoints {
		if tp.Time > time {
			break
		}
		if filter != nil && !filter(tp) {
			continue
		}
		found = tp
		ok = true
	}
	return found, ok
}

// BPMAt returns the tempo in effect at time, or 0 if no uninherited point
// precedes it.
func (b *Beatmap) BPMAt(time int) float64 {
	tp, ok := b.PreviousTimingPoint(time, TimingPoint.IsUninherited)
	if !ok {
		return 0
	}
	return tp.BPM()
}

// SliderVelocityMultiplierAt returns the inherited slider-velocity multiplier
// in effect at time, defaulting to 1.0 if none precedes it.
func (b *Beatmap) SliderVelocityMultiplierAt(time int) float64 {
	tp, ok := b.PreviousTimingPoint(time, func(t TimingPoint) bool { return !t.IsUninherited() })
	if !ok {
		return 1.0
	}
	return tp.SliderVelocityMultiplier()
}

// ResolveSliderDurations fills in Duration on every Slider using the
// beatmap's own timing-point timeline. See §4.C: duration = length*slides /
// (100*V_eff) * B, where V_eff is the inherited SV multiplier times the
// beatmap's base SliderMultiplier, and B is the beat length of the last
// uninherited point at or before the slider (falling back to a synthetic
// 500ms/4-beat point when none precedes it).
func (b *Beatmap) ResolveSliderDurations() {
	for _, ho := range b.HitObjects {
		slider, ok := ho.(*Slider)
		if !ok {
			continue
		}
		t := int(slider.Time)
		svMultiplier := b.SliderVelocityMultiplierAt(t)
		uninherited, ok := b.PreviousTimingPoint(t, TimingPoint.IsUninherited)
		if !ok {
			uninherited = TimingPoint{Time: 0, BeatLength: 500, Uninherited: 1}
		}
		effectiveVelocity := svMultiplier * b.Difficulty.SliderMultiplier
		slider.Duration = loadSliderDuration(slider.Length, slider.Slides, effectiveVelocity, uninherited.BeatLength)
	}
}

func loadSliderDuration(length float64, slides int, effectiveVelocity, beatLength float64) float64 {
	if effectiveVelocity == 0 {
		return 0
	}
	return length * float64(slides) / (100.0 * effectiveVelocity) * beatLength
}

// HitObjectKindFromType classifies a hit object type byte by its low-order
// bits: bit 0 is Circle, bit 1 is Slider, bit 3 is Spinner.
func HitObjectKindFromType(typeID int) (string, error) {
	switch {
	case typeID&1 != 0:
		return "circle", nil
	case typeID&2 != 0:
		return "slider", nil
	case typeID&8 != 0:
		return "spinner", nil
	default:
		return "", fmt.Errorf("unknown hit object type id: %d", typeID)
	}
}
