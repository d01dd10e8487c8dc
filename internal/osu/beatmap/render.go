package beatmap

import (
	"strconv"
	"strings"
)

// formatNumber renders a float in the beatmap format's compact numeric form:
// up to 15 significant digits, a trailing ".0" stripped to an integer, and
// "-0" normalized to "0". This is what makes parse(render(x)) == x hold for
// values that started life as integers in the text.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'g', 15, 64)
	if strings.Contains(s, "e") || strings.Contains(s, "E") {
		return s
	}
	s = strings.TrimSuffix(s, ".0")
	return s
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

// String renders the General section body (without the "[General]" header).
func (g General) String() string {
	var b strings.Builder
	b.WriteString("AudioFilename: " + g.AudioFilename + "\n")
	b.WriteString("AudioLeadIn: " + formatInt(g.AudioLeadIn) + "\n")
	b.WriteString("PreviewTime: " + formatInt(g.PreviewTime) + "\n")
	b.WriteString("Countdown: " + formatInt(g.Countdown) + "\n")
	b.WriteString("SampleSet: " + g.SampleSet + "\n")
	b.WriteString("StackLeniency: " + formatNumber(g.StackLeniency) + "\n")
	b.WriteString("Mode: " + formatInt(g.Mode) + "\n")
	b.WriteString("LetterboxInBreaks: " + formatInt(g.LetterboxInBreaks) + "\n")
	b.WriteString("UseSkinSprites: " + formatInt(g.UseSkinSprites) + "\n")
	b.WriteString("OverlayPosition: " + g.OverlayPosition + "\n")
	b.WriteString("SkinPreference: " + g.SkinPreference + "\n")
	b.WriteString("EpilepsyWarning: " + formatInt(g.EpilepsyWarning) + "\n")
	b.WriteString("CountdownOffset: " + formatInt(g.CountdownOffset) + "\n")
	b.WriteString("SpecialStyle: " + formatInt(g.SpecialStyle) + "\n")
	b.WriteString("WidescreenStoryboard: " + formatInt(g.WidescreenStoryboard) + "\n")
	b.WriteString("SamplesMatchPlaybackRate: " + formatInt(g.SamplesMatchPlaybackRate) + "\n")
	return b.String()
}

// String renders the Difficulty section body (without the header).
func (d Difficulty) String() string {
	var b strings.Builder
	b.WriteString("HPDrainRate: " + formatNumber(d.HPDrainRate) + "\n")
	b.WriteString("CircleSize: " + formatNumber(d.CircleSize) + "\n")
	b.WriteString("OverallDifficulty: " + formatNumber(d.OverallDifficulty) + "\n")
	b.WriteString("ApproachRate: " + formatNumber(d.ApproachRate) + "\n")
	b.WriteString("SliderMultiplier: " + formatNumber(d.SliderMultiplier) + "\n")
	b.WriteString("SliderTickRate: " + formatNumber(d.SliderTickRate))
	return b.String()
}

// String renders one TimingPoints record.
func (t TimingPoint) String() string {
	fields := []string{
		formatInt(t.Time),
		formatNumber(t.BeatLength),
		formatInt(t.Meter),
		formatInt(t.SampleSet),
		formatInt(t.SampleIndex),
		formatInt(t.Volume),
		formatInt(t.Uninherited),
		formatInt(t.Effects),
	}
	return strings.Join(fields, ",")
}

// String renders a "normalSet:additionSet:index:volume:custom" hit sample.
func (h HitSample) String() string {
	return strings.Join([]string{
		formatInt(h.NormalSet),
		formatInt(h.AdditionSet),
		formatInt(h.Index),
		formatInt(h.Volume),
		h.Custom,
	}, ":")
}

// String renders one "T|x:y|x:y|..." curve segment.
func (c SliderCurve) String() string {
	var b strings.Builder
	b.WriteByte(byte(c.Kind))
	for _, p := range c.Points {
		b.WriteByte('|')
		b.WriteString(formatNumber(p.X))
		b.WriteByte(':')
		b.WriteString(formatNumber(p.Y))
	}
	return b.String()
}

func renderCommon(base HitObjectBase) string {
	return strings.Join([]string{
		formatNumber(base.X),
		formatNumber(base.Y),
		formatNumber(base.Time),
		formatInt(base.Type),
		formatInt(base.HitSound),
	}, ",")
}

// String renders a Circle record.
func (c *Circle) String() string {
	return renderCommon(c.HitObjectBase) + "," + c.HitSample.String()
}

// String renders a Slider record.
func (s *Slider) String() string {
	var curveParts []string
	for _, c := range s.Curves {
		curveParts = append(curveParts, c.String())
	}
	curvesStr := strings.Join(curveParts, "")

	var edgeSounds []string
	for _, v := range s.EdgeSounds {
		edgeSounds = append(edgeSounds, formatInt(v))
	}
	var edgeSets []string
	for _, p := range s.EdgeSets {
		edgeSets = append(edgeSets, formatInt(p[0])+":"+formatInt(p[1]))
	}

	params := strings.Join([]string{
		curvesStr,
		formatInt(s.Slides),
		formatNumber(s.Length),
		strings.Join(edgeSounds, "|"),
		strings.Join(edgeSets, "|"),
	}, ",")

	return renderCommon(s.HitObjectBase) + "," + params + "," + s.HitSample.String()
}

// String renders a Spinner record.
func (s *Spinner) String() string {
	return renderCommon(s.HitObjectBase) + "," + formatNumber(s.EndTime) + "," + s.HitSample.String()
}

// String renders the complete beatmap back to its section-based text form.
// Parsing the result reproduces an equal object for every section the core
// round-trips (General, Difficulty, TimingPoints, HitObjects) — see §8
// invariant 4.
func (b *Beatmap) String() string {
	var out strings.Builder
	out.WriteString("osu file format v14\n\n")

	out.WriteString("[General]\n")
	out.WriteString(b.General.String())
	out.WriteString("\n")

	out.WriteString("[Difficulty]\n")
	out.WriteString(b.Difficulty.String())
	out.WriteString("\n\n")

	out.WriteString("[TimingPoints]\n")
	for _, tp := range b.TimingPoints {
		out.WriteString(tp.String())
		out.WriteString("\n")
	}
	out.WriteString("\n")

	out.WriteString("[HitObjects]\n")
	for _, ho := range b.HitObjects {
		switch v := ho.(type) {
		case *Circle:
			out.WriteString(v.String())
		case *Slider:
			out.WriteString(v.String())
		case *Spinner:
			out.WriteString(v.String())
		}
		out.WriteString("\n")
	}

	return out.String()
}
