package beatmap

import (
	"math"
	"strings"
	"testing"
)

const sampleBeatmap = `osu file format v14

[General]
AudioFilename: audio.mp3
PreviewTime: 1000
SampleSet: Normal
StackLeniency: 0.7
Mode: 0

[Difficulty]
HPDrainRate: 5
CircleSize: 4
OverallDifficulty: 8
ApproachRate: 9
SliderMultiplier: 1.4
SliderTickRate: 1

[TimingPoints]
0,500,4,1,0,100,1,0
5000,-100,4,1,0,100,0,0

[HitObjects]
100,100,0,1,0,0:0:0:0:
200,200,500,2,0,B|250:250|300:200,1,100,0|0,0:0|0:0,0:0:0:0:
300,300,6000,8,0,6500,0:0:0:0:
`

func mustParse(t *testing.T, text string) *Beatmap {
	t.Helper()
	bm, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return bm
}

func TestParseGeneralAndDifficulty(t *testing.T) {
	bm := mustParse(t, sampleBeatmap)
	if bm.General.AudioFilename != "audio.mp3" {
		t.Fatalf("AudioFilename = %q", bm.General.AudioFilename)
	}
	if bm.General.PreviewTime != 1000 {
		t.Fatalf("PreviewTime = %v", bm.General.PreviewTime)
	}
	if bm.General.SampleSet != "Normal" {
		t.Fatalf("SampleSet = %q", bm.General.SampleSet)
	}
	if bm.Difficulty.CircleSize != 4 {
		t.Fatalf("CircleSize = %v", bm.Difficulty.CircleSize)
	}
}

func TestParseGeneralDefaults(t *testing.T) {
	bm, err := Parse(minimalBeatmapText())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if bm.General.StackLeniency != 0.7 {
		t.Fatalf("default StackLeniency = %v, want 0.7", bm.General.StackLeniency)
	}
	if bm.Difficulty.HPDrainRate != 5.0 {
		t.Fatalf("default HPDrainRate = %v, want 5.0", bm.Difficulty.HPDrainRate)
	}
}

func TestParseMissingSectionIsFatal(t *testing.T) {
	_, err := Parse("[General]\nAudioFilename: a.mp3\n")
	if err == nil {
		t.Fatal("expected error for missing sections")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != ErrMissingSection {
		t.Fatalf("Kind = %v, want ErrMissingSection", pe.Kind)
	}
}

func TestParseUnsupportedModeRecoverable(t *testing.T) {
	text := strings.Replace(sampleBeatmap, "Mode: 0", "Mode: 1", 1)
	bm, err := Parse(text)
	if bm == nil {
		t.Fatal("expected a non-nil beatmap even on unsupported mode")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnsupportedMode {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestParseTimingPointDefaults(t *testing.T) {
	points, err := parseTimingPoints("1000,300")
	if err != nil {
		t.Fatalf("parseTimingPoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	tp := points[0]
	if tp.Meter != 4 || tp.SampleSet != 1 || tp.SampleIndex != 0 || tp.Volume != 100 || tp.Uninherited != 1 || tp.Effects != 0 {
		t.Fatalf("defaults not applied: %+v", tp)
	}
}

func TestParseSliderCurves(t *testing.T) {
	bm := mustParse(t, sampleBeatmap)
	slider, ok := bm.HitObjects[1].(*Slider)
	if !ok {
		t.Fatalf("expected second hit object to be a Slider, got %T", bm.HitObjects[1])
	}
	if len(slider.Curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(slider.Curves))
	}
	if slider.Curves[0].Kind != CurveBezier {
		t.Fatalf("expected bezier curve, got %c", slider.Curves[0].Kind)
	}
	if len(slider.Curves[0].Points) != 2 {
		t.Fatalf("expected 2 control points, got %d", len(slider.Curves[0].Points))
	}
}

func TestResolveSliderDuration(t *testing.T) {
	bm := mustParse(t, sampleBeatmap)
	slider := bm.HitObjects[1].(*Slider)
	// sv multiplier at t=500 defaults to 1.0 (no inherited point precedes it),
	// V_eff = 1.0 * 1.4 = 1.4, B = 500 (uninherited point at t=0).
	want := slider.Length * float64(slider.Slides) / (100.0 * 1.4) * 500.0
	if math.Abs(slider.Duration-want) > 1e-9 {
		t.Fatalf("Duration = %v, want %v", slider.Duration, want)
	}
}

func TestHitObjectKindDispatch(t *testing.T) {
	bm := mustParse(t, sampleBeatmap)
	if _, ok := bm.HitObjects[0].(*Circle); !ok {
		t.Fatalf("expected Circle, got %T", bm.HitObjects[0])
	}
	if _, ok := bm.HitObjects[2].(*Spinner); !ok {
		t.Fatalf("expected Spinner, got %T", bm.HitObjects[2])
	}
}

func TestRoundTripIdempotence(t *testing.T) {
	bm := mustParse(t, sampleBeatmap)
	rendered := bm.String()
	reparsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("reparsing rendered text failed: %v\n%s", err, rendered)
	}
	rerendered := reparsed.String()
	reparsedAgain, err := Parse(rerendered)
	if err != nil {
		t.Fatalf("second reparse failed: %v", err)
	}

	if reparsed.General != reparsedAgain.General {
		t.Fatalf("General not idempotent:\n%+v\n%+v", reparsed.General, reparsedAgain.General)
	}
	if reparsed.Difficulty != reparsedAgain.Difficulty {
		t.Fatalf("Difficulty not idempotent:\n%+v\n%+v", reparsed.Difficulty, reparsedAgain.Difficulty)
	}
	if len(reparsed.TimingPoints) != len(reparsedAgain.TimingPoints) {
		t.Fatalf("TimingPoints count changed across round-trip")
	}
	for i := range reparsed.TimingPoints {
		if reparsed.TimingPoints[i] != reparsedAgain.TimingPoints[i] {
			t.Fatalf("TimingPoint[%d] not idempotent: %+v vs %+v", i, reparsed.TimingPoints[i], reparsedAgain.TimingPoints[i])
		}
	}
	if len(reparsed.HitObjects) != len(reparsedAgain.HitObjects) {
		t.Fatalf("HitObjects count changed across round-trip")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1.0, "1"},
		{1.5, "1.5"},
		{100.0, "100"},
	}
	for _, c := range cases {
		if got := formatNumber(c.in); got != c.want {
			t.Errorf("formatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func minimalBeatmapText() string {
	return "[General]\nAudioFilename: a.mp3\n\n" +
		"[Difficulty]\nCircleSize: 4\n\n" +
		"[TimingPoints]\n0,500,4,1,0,100,1,0\n\n" +
		"[HitObjects]\n100,100,0,1,0,0:0:0:0:\n"
}
