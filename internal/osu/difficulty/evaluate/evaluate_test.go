package evaluate

import (
	"testing"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/difficulty"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

// streamObjects builds a run of evenly spaced circles, alternating between
// two columns so consecutive jumps have a nonzero angle, which is enough to
// exercise the angle-dependent bonuses in Aim without needing a real
// beatmap.
func streamObjects(n int, spacing, deltaTime float64) []difficulty.Object {
	objs := make([]difficulty.Object, n)
	for i := 0; i < n; i++ {
		x := 100.0
		y := 100.0
		if i%2 == 1 {
			x += spacing
		}
		if i%3 == 0 {
			y += spacing / 2
		}
		p := beatmap.Point{X: x, Y: y}
		objs[i] = difficulty.Object{
			StartTime:          float64(i) * deltaTime,
			EndTime:            float64(i) * deltaTime,
			Position:           p,
			StackedPosition:    p,
			EndPosition:        p,
			StackedEndPosition: p,
			ObjectRadius:       32,
			ObjectType:         difficulty.KindCircle,
			HitWindowGreat:     49.5,
		}
	}
	return objs
}

func TestAimZeroForFirstObjects(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(5, 150, 150), 1.0)
	if got := Aim(annotated[0], true); got != 0.0 {
		t.Fatalf("expected 0 aim strain for the first annotated object, got %v", got)
	}
}

func TestAimPositiveForJumpStream(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(8, 150, 150), 1.0)
	got := Aim(annotated[len(annotated)-1], true)
	if got <= 0 {
		t.Fatalf("expected positive aim strain for a jump stream, got %v", got)
	}
}

func TestAimZeroForSpinner(t *testing.T) {
	objs := streamObjects(4, 150, 150)
	objs[3].ObjectType = difficulty.KindSpinner
	annotated := difficulty.BuildAnnotatedObjects(objs, 1.0)
	if got := Aim(annotated[len(annotated)-1], true); got != 0.0 {
		t.Fatalf("expected 0 aim strain on a spinner, got %v", got)
	}
}

func TestSpeedZeroWithNoPrevious(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(5, 150, 150), 1.0)
	if got := Speed(annotated[0], mods.NewSet()); got != 0.0 {
		t.Fatalf("expected 0 speed strain for the first annotated object, got %v", got)
	}
}

func TestSpeedPositiveForTightStream(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(8, 150, 120), 1.0)
	got := Speed(annotated[len(annotated)-1], mods.NewSet())
	if got <= 0 {
		t.Fatalf("expected positive speed strain for a tight stream, got %v", got)
	}
}

func TestSpeedFasterDeltaScoresHigher(t *testing.T) {
	slow := difficulty.BuildAnnotatedObjects(streamObjects(8, 150, 300), 1.0)
	fast := difficulty.BuildAnnotatedObjects(streamObjects(8, 150, 120), 1.0)

	slowResult := Speed(slow[len(slow)-1], mods.NewSet())
	fastResult := Speed(fast[len(fast)-1], mods.NewSet())
	if fastResult <= slowResult {
		t.Fatalf("expected a faster stream to score higher speed strain: fast=%v slow=%v", fastResult, slowResult)
	}
}

func TestSpeedReducedUnderAutoPilot(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(8, 300, 150), 1.0)
	current := annotated[len(annotated)-1]

	withoutAutoPilot := Speed(current, mods.NewSet())
	withAutoPilot := Speed(current, mods.NewSet(mods.AutoPilot))
	if withAutoPilot >= withoutAutoPilot {
		t.Fatalf("expected AutoPilot to reduce the distance bonus: with=%v without=%v", withAutoPilot, withoutAutoPilot)
	}
}

func TestRhythmZeroForSpinner(t *testing.T) {
	objs := streamObjects(4, 150, 150)
	objs[3].ObjectType = difficulty.KindSpinner
	annotated := difficulty.BuildAnnotatedObjects(objs, 1.0)
	if got := Rhythm(annotated[len(annotated)-1]); got != 0.0 {
		t.Fatalf("expected 0 rhythm strain on a spinner, got %v", got)
	}
}

func TestRhythmDefaultsToOneWithoutHistory(t *testing.T) {
	annotated := difficulty.BuildAnnotatedObjects(streamObjects(2, 150, 150), 1.0)
	if got := Rhythm(annotated[0]); got != 1.0 {
		t.Fatalf("expected 1.0 rhythm for an object with no real history, got %v", got)
	}
}

func TestRhythmPositiveForIrregularStream(t *testing.T) {
	objs := make([]difficulty.Object, 0, 10)
	t0 := 0.0
	for i := 0; i < 10; i++ {
		delta := 150.0
		if i%4 == 0 {
			delta = 300.0
		}
		t0 += delta
		p := beatmap.Point{X: 100 + float64(i%2)*150, Y: 100}
		objs = append(objs, difficulty.Object{
			StartTime:          t0,
			EndTime:            t0,
			Position:           p,
			StackedPosition:    p,
			EndPosition:        p,
			StackedEndPosition: p,
			ObjectRadius:       32,
			ObjectType:         difficulty.KindCircle,
			HitWindowGreat:     49.5,
		})
	}
	annotated := difficulty.BuildAnnotatedObjects(objs, 1.0)
	got := Rhythm(annotated[len(annotated)-1])
	if got <= 0 {
		t.Fatalf("expected positive rhythm strain for an irregular stream, got %v", got)
	}
}
