package calculator

import (
	"context"
	"testing"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

func sampleBeatmap() *beatmap.Beatmap {
	bm := &beatmap.Beatmap{
		General:    beatmap.DefaultGeneral(),
		Difficulty: beatmap.DefaultDifficulty(),
		TimingPoints: []beatmap.TimingPoint{
			{Time: 0, BeatLength: 500, Meter: 4, SampleSet: 1, Volume: 100, Uninherited: 1},
		},
	}
	for i := 0; i < 20; i++ {
		x := float64(100 + (i%8)*40)
		y := float64(100 + (i/8)*40)
		bm.HitObjects = append(bm.HitObjects, &beatmap.Circle{
			HitObjectBase: beatmap.HitObjectBase{X: x, Y: y, Time: float64(i * 300), Type: 1},
		})
	}
	return bm
}

func TestCalculateDifficultyProducesPositiveStarRating(t *testing.T) {
	c := New(nil)
	attrs := c.CalculateDifficulty(context.Background(), sampleBeatmap(), mods.NewSet())
	if attrs.StarRating <= 0 {
		t.Fatalf("expected positive star rating, got %v", attrs.StarRating)
	}
	if attrs.HitCircleCount != 20 {
		t.Fatalf("HitCircleCount = %d, want 20", attrs.HitCircleCount)
	}
	if attrs.MaxCombo != 20 {
		t.Fatalf("MaxCombo = %d, want 20", attrs.MaxCombo)
	}
}

func TestCalculateDifficultyTrivialBeatmapReturnsZero(t *testing.T) {
	bm := &beatmap.Beatmap{
		General:    beatmap.DefaultGeneral(),
		Difficulty: beatmap.DefaultDifficulty(),
		HitObjects: []beatmap.HitObject{
			&beatmap.Circle{HitObjectBase: beatmap.HitObjectBase{X: 100, Y: 100, Time: 0}},
		},
	}
	c := New(nil)
	attrs := c.CalculateDifficulty(context.Background(), bm, mods.NewSet())
	if attrs.StarRating != 0 {
		t.Fatalf("expected 0 star rating for a single-object map, got %v", attrs.StarRating)
	}
}

func TestCalculatePerformanceFullComboBeatsWithMisses(t *testing.T) {
	c := New(nil)
	diff := c.CalculateDifficulty(context.Background(), sampleBeatmap(), mods.NewSet())

	full := c.CalculatePerformance(context.Background(), diff, 1.0, nil, 0)
	if full.PP <= 0 {
		t.Fatalf("expected positive pp, got %v", full.PP)
	}

	withMisses := c.CalculatePerformance(context.Background(), diff, 1.0, nil, 5)
	if withMisses.PP >= full.PP {
		t.Fatalf("expected misses to reduce pp: full=%v, withMisses=%v", full.PP, withMisses.PP)
	}
}

func TestCalculatePerformanceClampsAccuracy(t *testing.T) {
	c := New(nil)
	diff := c.CalculateDifficulty(context.Background(), sampleBeatmap(), mods.NewSet())
	perf := c.CalculatePerformance(context.Background(), diff, 1.5, nil, 0)
	if perf.Accuracy != 1.0 {
		t.Fatalf("expected accuracy clamped to 1.0, got %v", perf.Accuracy)
	}
}

func TestCalculateDifficultyWithDoubleTimeRaisesClockRate(t *testing.T) {
	c := New(nil)
	attrs := c.CalculateDifficulty(context.Background(), sampleBeatmap(), mods.NewSet(mods.DoubleTime))
	if attrs.ClockRate != 1.5 {
		t.Fatalf("ClockRate = %v, want 1.5", attrs.ClockRate)
	}
}
