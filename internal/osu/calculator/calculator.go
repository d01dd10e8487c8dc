// Package calculator is the facade that turns a parsed beatmap and a mod
// set into difficulty and performance attributes: it generates the
// stacking-resolved object arena, runs the aim/speed/flashlight strain
// skills over it, and combines their ratings into a star rating and (given
// a score) a pp value.
package calculator

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/difficulty/rating"
	"github.com/cartomix/osudiff/internal/osu/difficulty/skill"
	"github.com/cartomix/osudiff/internal/osu/hitwindow"
	"github.com/cartomix/osudiff/internal/osu/mathutil"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

// Calculator runs difficulty and performance calculations against an
// injected logger, the way the rest of this module's components take their
// dependencies explicitly rather than reaching for package-level globals.
type Calculator struct {
	log *slog.Logger
}

// New builds a Calculator. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *Calculator {
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{log: log}
}

// calculateScaleFromCircleSize converts the Circle Size stat into a
// fraction of a fixed reference hitbox size. applyFudge reproduces a
// rounding quirk of the legacy game client's circle rendering that the
// reference difficulty algorithm deliberately preserves for parity.
func calculateScaleFromCircleSize(circleSize float64, applyFudge bool) float64 {
	brokenGamefieldRoundingAllowance := 1.0
	if applyFudge {
		brokenGamefieldRoundingAllowance = 1.00041
	}
	difficultyRange := (circleSize - 5.0) / 5.0
	scale := (1.0 - 0.7*difficultyRange) / 2.0
	return scale * brokenGamefieldRoundingAllowance
}

// CalculateDifficulty computes the full difficulty breakdown for bm under
// modSet. The beatmap's slider durations must already be resolved
// (beatmap.Beatmap.ResolveSliderDurations).
func (c *Calculator) CalculateDifficulty(ctx context.Context, bm *beatmap.Beatmap, modSet mods.Set) DifficultyAttributes {
	correlationID := uuid.New().String()
	log := c.log.With("correlation_id", correlationID, "component", "calculator")

	clockRate := modSet.ClockRate()

	approachRate := bm.Difficulty.ApproachRate
	overallDifficulty := bm.Difficulty.OverallDifficulty
	circleSize := bm.Difficulty.CircleSize
	drainRate := bm.Difficulty.HPDrainRate

	adj := modSet.Adjust(approachRate, overallDifficulty, circleSize, drainRate)
	approachRate = adj.ApproachRate
	overallDifficulty = adj.OverallDifficulty
	circleSize = adj.CircleSize
	drainRate = adj.DrainRate

	approachRateAdjusted := difficulty.RateAdjustedApproachRate(approachRate, clockRate)
	overallDifficultyAdjusted := difficulty.RateAdjustedOverallDifficulty(overallDifficulty, clockRate)

	var windows hitwindow.OsuHitWindows
	windows.SetDifficulty(overallDifficulty)
	hitWindowGreat := windows.WindowFor(hitwindow.Great)

	radius := 64.0 * calculateScaleFromCircleSize(circleSize, true)

	stackLeniency := bm.General.StackLeniency

	log.DebugContext(ctx, "generating difficulty objects",
		"object_count", len(bm.HitObjects), "clock_rate", clockRate, "radius", radius)

	objects := difficulty.GenerateObjects(bm, radius, hitWindowGreat, approachRate, stackLeniency)

	circleCount, sliderCount, spinnerCount := countObjectKinds(bm)

	if len(objects) <= 1 {
		return DifficultyAttributes{
			ApproachRate:      approachRateAdjusted,
			OverallDifficulty: overallDifficultyAdjusted,
			DrainRate:         drainRate,
			CircleSize:        circleSize,
			ClockRate:         clockRate,
			MaxCombo:          len(bm.HitObjects),
			HitCircleCount:    circleCount,
			SliderCount:       sliderCount,
			SpinnerCount:      spinnerCount,
			SliderFactor:      1.0,
			Mods:              modSet,
		}
	}

	annotated := difficulty.BuildAnnotatedObjects(objects, clockRate)

	aimSkill := &skill.Aim{IncludeSliders: true}
	aimNoSlidersSkill := &skill.Aim{IncludeSliders: false}
	speedSkill := &skill.Speed{Mods: modSet}
	var flashlightSkill *skill.Flashlight
	if modSet.Has(mods.Flashlight) {
		flashlightSkill = &skill.Flashlight{}
	}

	for _, obj := range annotated {
		aimSkill.Process(obj)
		aimNoSlidersSkill.Process(obj)
		speedSkill.Process(obj)
		if flashlightSkill != nil {
			flashlightSkill.Process(obj)
		}
	}

	aimDifficultyValue := aimSkill.DifficultyValue()
	aimRating := rating.CalculateDifficultyRating(aimDifficultyValue)
	aimDifficultStrainCount := aimSkill.CountTopWeightedStrains()
	difficultSliders := aimSkill.GetDifficultSliders()

	aimNoSliderDifficultyValue := aimNoSlidersSkill.DifficultyValue()
	aimRatingNoSliders := rating.CalculateDifficultyRating(aimNoSliderDifficultyValue)
	sliderFactor := 1.0
	if aimRating > 0 {
		sliderFactor = aimRatingNoSliders / aimRating
	}

	speedDifficultyValue := speedSkill.DifficultyValue()
	speedRating := rating.CalculateDifficultyRating(speedDifficultyValue)
	speedNotes := speedSkill.RelevantNoteCount()
	speedDifficultStrainCount := speedSkill.CountTopWeightedStrains()

	flashlightRating := 0.0
	if flashlightSkill != nil {
		flashlightRating = rating.CalculateDifficultyRating(flashlightSkill.DifficultyValue())
	}

	if modSet.Has(mods.TouchDevice) {
		aimRating = math.Pow(aimRating, 0.8)
		flashlightRating = math.Pow(flashlightRating, 0.8)
	}

	if modSet.Has(mods.Relax) {
		aimRating *= 0.9
		speedRating = 0.0
		flashlightRating *= 0.7
	} else if modSet.Has(mods.AutoPilot) {
		speedRating *= 0.5
		aimRating = 0.0
		flashlightRating *= 0.4
	}

	baseAimPerformance := rating.DifficultyToPerformance(aimRating)
	baseSpeedPerformance := rating.DifficultyToPerformance(speedRating)
	baseFlashlightPerformance := 0.0
	if modSet.Has(mods.Flashlight) {
		baseFlashlightPerformance = skill.DifficultyToPerformance(flashlightRating)
	}

	basePerformance := mathutil.Norm(1.1, []float64{baseAimPerformance, baseSpeedPerformance, baseFlashlightPerformance})
	starRating := rating.CalculateStarRatingFromPerformance(basePerformance)

	log.DebugContext(ctx, "difficulty computed",
		"star_rating", starRating, "aim", aimRating, "speed", speedRating)

	return DifficultyAttributes{
		StarRating:                starRating,
		AimDifficulty:             aimRating,
		SpeedDifficulty:           speedRating,
		FlashlightDifficulty:      flashlightRating,
		SliderFactor:              sliderFactor,
		AimDifficultSliderCount:   difficultSliders,
		SpeedNoteCount:            speedNotes,
		AimDifficultStrainCount:   aimDifficultStrainCount,
		SpeedDifficultStrainCount: speedDifficultStrainCount,
		ApproachRate:              approachRateAdjusted,
		OverallDifficulty:         overallDifficultyAdjusted,
		DrainRate:                 drainRate,
		CircleSize:                circleSize,
		ClockRate:                 clockRate,
		MaxCombo:                  len(bm.HitObjects),
		HitCircleCount:            circleCount,
		SliderCount:               sliderCount,
		SpinnerCount:              spinnerCount,
		Mods:                      modSet,
		Strains:                   append([]float64(nil), aimSkill.ObjectStrains...),
	}
}

// CalculatePerformance computes pp for a play with the given accuracy,
// combo, and miss count against a previously-computed difficulty.
// combo == nil means full combo (max_combo).
func (c *Calculator) CalculatePerformance(ctx context.Context, diff DifficultyAttributes, accuracy float64, combo *int, misses int) PerformanceAttributes {
	accuracy = mathutil.Clamp(accuracy, 0.0, 1.0)
	totalHits := diff.HitCircleCount + diff.SliderCount + diff.SpinnerCount
	if totalHits < 1 {
		totalHits = 1
	}
	maxCombo := diff.MaxCombo
	if maxCombo < 1 {
		maxCombo = 1
	}
	if misses < 0 {
		misses = 0
	}

	actualCombo := maxCombo
	if combo != nil {
		actualCombo = int(mathutil.Clamp(float64(*combo), 0, float64(maxCombo)))
	}

	effectiveMissCount := math.Max(float64(misses), float64(totalHits)/200.0)

	aimPP := rating.DifficultyToPerformance(diff.AimDifficulty) * math.Pow(accuracy, 5.5) * (0.98 + float64(maxCombo)/1500.0)
	speedPP := rating.DifficultyToPerformance(diff.SpeedDifficulty) * math.Pow(accuracy, 4.0)
	accuracyPP := math.Pow(accuracy, 5.5) * (25.0 + diff.StarRating*5.0)

	if actualCombo < maxCombo {
		factor := math.Pow(float64(actualCombo)/float64(maxCombo), 0.8)
		aimPP *= factor
		speedPP *= factor
	}

	missPenalty := math.Pow(0.97, effectiveMissCount)
	aimPP *= missPenalty
	speedPP *= missPenalty

	totalPP := mathutil.Norm(1.1, []float64{aimPP, speedPP, accuracyPP})

	c.log.DebugContext(ctx, "performance computed", "pp", totalPP, "accuracy", accuracy, "misses", misses)

	return PerformanceAttributes{
		PP:                 totalPP,
		AimPP:              aimPP,
		SpeedPP:            speedPP,
		AccuracyPP:         accuracyPP,
		Accuracy:           accuracy,
		EffectiveMissCount: effectiveMissCount,
	}
}

func countObjectKinds(bm *beatmap.Beatmap) (circles, sliders, spinners int) {
	for _, ho := range bm.HitObjects {
		switch ho.(type) {
		case *beatmap.Circle:
			circles++
		case *beatmap.Slider:
			sliders++
		case *beatmap.Spinner:
			spinners++
		}
	}
	return
}
