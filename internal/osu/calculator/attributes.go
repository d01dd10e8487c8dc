package calculator

import "github.com/cartomix/osudiff/internal/osu/mods"

// DifficultyAttributes is the full difficulty breakdown for one beatmap
// under one mod combination: the three skill ratings that combine into the
// star rating, plus the mod-adjusted stats and object counts a client needs
// to compute performance afterward.
type DifficultyAttributes struct {
	StarRating float64

	AimDifficulty       float64
	SpeedDifficulty     float64
	FlashlightDifficulty float64

	SliderFactor            float64
	AimDifficultSliderCount float64
	SpeedNoteCount          float64

	AimDifficultStrainCount   float64
	SpeedDifficultStrainCount float64

	ApproachRate      float64
	OverallDifficulty float64
	DrainRate         float64
	CircleSize        float64
	ClockRate         float64

	MaxCombo       int
	HitCircleCount int
	SliderCount    int
	SpinnerCount   int

	Mods mods.Set

	// Strains is the raw per-object aim strain, in object order, for a
	// client that wants to render a difficulty-over-time graph.
	Strains []float64
}

// PerformanceAttributes is the pp breakdown for one play against one
// DifficultyAttributes: total plus the three components it's built from.
type PerformanceAttributes struct {
	PP                 float64
	AimPP              float64
	SpeedPP            float64
	AccuracyPP         float64
	Accuracy           float64
	EffectiveMissCount float64
}
