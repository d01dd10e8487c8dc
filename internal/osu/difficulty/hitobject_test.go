package difficulty

import (
	"testing"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
)

func sampleObjects() []Object {
	return []Object{
		{StartTime: 0, EndTime: 0, Position: pt(100, 100), StackedPosition: pt(100, 100), EndPosition: pt(100, 100), StackedEndPosition: pt(100, 100), ObjectRadius: 32, ObjectType: KindCircle, HitWindowGreat: 49.5},
		{StartTime: 300, EndTime: 300, Position: pt(200, 100), StackedPosition: pt(200, 100), EndPosition: pt(200, 100), StackedEndPosition: pt(200, 100), ObjectRadius: 32, ObjectType: KindCircle, HitWindowGreat: 49.5},
		{StartTime: 600, EndTime: 600, Position: pt(100, 200), StackedPosition: pt(100, 200), EndPosition: pt(100, 200), StackedEndPosition: pt(100, 200), ObjectRadius: 32, ObjectType: KindCircle, HitWindowGreat: 49.5},
	}
}

func TestBuildAnnotatedObjectsArenaIndexing(t *testing.T) {
	annotated := BuildAnnotatedObjects(sampleObjects(), 1.0)
	if len(annotated) != 2 {
		t.Fatalf("expected 2 annotated objects, got %d", len(annotated))
	}
	if annotated[1].Previous(0) != annotated[0] {
		t.Fatalf("expected annotated[1].Previous(0) == annotated[0]")
	}
	if annotated[0].Previous(0) != nil {
		t.Fatalf("expected annotated[0].Previous(0) == nil")
	}
	if annotated[0].Next(0) != annotated[1] {
		t.Fatalf("expected annotated[0].Next(0) == annotated[1]")
	}
}

func TestBuildAnnotatedObjectsTooFewIsEmpty(t *testing.T) {
	if got := BuildAnnotatedObjects(sampleObjects()[:1], 1.0); got != nil {
		t.Fatalf("expected nil for a single object, got %v", got)
	}
}

func TestGetDoubletapnessNilNext(t *testing.T) {
	annotated := BuildAnnotatedObjects(sampleObjects(), 1.0)
	last := annotated[len(annotated)-1]
	if got := last.GetDoubletapness(last.Next(0)); got != 0.0 {
		t.Fatalf("expected 0 doubletapness with no next object, got %v", got)
	}
}

func pt(x, y float64) beatmap.Point {
	return beatmap.Point{X: x, Y: y}
}
