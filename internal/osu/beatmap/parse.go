package beatmap

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelBoundary   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	titleCaser      = cases.Title(language.English)
	sliderCurveRe   = regexp.MustCompile(`[BLCP]\|[^BLCP]*`)
)

// normalizeKey turns a mixed-case beatmap key (e.g. "AudioFilename",
// "Circle Size") into its snake_case field name ("audio_filename",
// "circle_size"), the same two-pass acronym/camel split the reference
// implementation uses.
func normalizeKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), " ", "_")
	key = acronymBoundary.ReplaceAllString(key, "${1}_${2}")
	key = camelBoundary.ReplaceAllString(key, "${1}_${2}")
	return strings.ToLower(key)
}

// canonicalEnum normalizes a free-form cased string enum value (SampleSet,
// OverlayPosition) to its title-cased canonical spelling.
func canonicalEnum(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	return titleCaser.String(strings.ToLower(v))
}

// ParseFile reads and parses the beatmap at path.
func ParseFile(path string) (*Beatmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes the game's section-based beatmap text format into a Beatmap.
// General, Difficulty, TimingPoints, and HitObjects are all required; a
// missing one is a fatal ParseError. Mode != 0 is surfaced as a recoverable
// ParseError rather than silently accepted, per §4.C/§7.
func Parse(text string) (*Beatmap, error) {
	sections := splitSections(text)

	generalRaw, ok := sections["General"]
	if !ok {
		return nil, newParseError(ErrMissingSection, "General", 0, "required section missing")
	}
	difficultyRaw, ok := sections["Difficulty"]
	if !ok {
		return nil, newParseError(ErrMissingSection, "Difficulty", 0, "required section missing")
	}
	timingRaw, ok := sections["TimingPoints"]
	if !ok {
		return nil, newParseError(ErrMissingSection, "TimingPoints", 0, "required section missing")
	}
	hitObjectsRaw, ok := sections["HitObjects"]
	if !ok {
		return nil, newParseError(ErrMissingSection, "HitObjects", 0, "required section missing")
	}

	general := parseGeneral(generalRaw)
	difficulty := parseDifficulty(difficultyRaw)

	timingPoints, err := parseTimingPoints(timingRaw)
	if err != nil {
		return nil, err
	}

	hitObjects, err := parseHitObjects(hitObjectsRaw)
	if err != nil {
		return nil, err
	}

	bm := &Beatmap{
		General:      general,
		Difficulty:   difficulty,
		TimingPoints: timingPoints,
		HitObjects:   hitObjects,
	}
	bm.ResolveSliderDurations()

	if general.Mode != 0 {
		return bm, newParseError(ErrUnsupportedMode, "General", 0, "mode %d is not the standard circles-and-sliders mode", general.Mode)
	}

	return bm, nil
}

// splitSections breaks raw beatmap text into named [Section] bodies, exactly
// mirroring the reference splitter: "[Name]" on its own (trimmed) line opens
// a section, whose body runs until the next header or EOF.
func splitSections(raw string) map[string]string {
	sections := make(map[string]string)
	var current string
	var lines []string
	hasCurrent := false

	flush := func() {
		if hasCurrent {
			sections[current] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			flush()
			current = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			hasCurrent = true
			lines = nil
			continue
		}
		if hasCurrent {
			lines = append(lines, line)
		}
	}
	flush()

	return sections
}

// decodeKeyValue splits a "Key: value" section body into normalized-key to
// raw-value pairs. Comment ("//") and blank lines are skipped.
func decodeKeyValue(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		out[normalizeKey(key)] = value
	}
	return out
}

func parseGeneral(raw string) General {
	g := DefaultGeneral()
	kv := decodeKeyValue(raw)
	for key, value := range kv {
		switch key {
		case "audio_filename":
			g.AudioFilename = value
		case "audio_lead_in":
			g.AudioLeadIn = tolerantInt(value, g.AudioLeadIn)
		case "preview_time":
			g.PreviewTime = tolerantInt(value, g.PreviewTime)
		case "countdown":
			g.Countdown = tolerantInt(value, g.Countdown)
		case "sample_set":
			g.SampleSet = canonicalEnum(value)
		case "stack_leniency":
			g.StackLeniency = tolerantFloat(value, g.StackLeniency)
		case "mode":
			g.Mode = tolerantInt(value, g.Mode)
		case "letterbox_in_breaks":
			g.LetterboxInBreaks = tolerantInt(value, g.LetterboxInBreaks)
		case "use_skin_sprites":
			g.UseSkinSprites = tolerantInt(value, g.UseSkinSprites)
		case "overlay_position":
			g.OverlayPosition = canonicalEnum(value)
		case "skin_preference":
			g.SkinPreference = value
		case "epilepsy_warning":
			g.EpilepsyWarning = tolerantInt(value, g.EpilepsyWarning)
		case "countdown_offset":
			g.CountdownOffset = tolerantInt(value, g.CountdownOffset)
		case "special_style":
			g.SpecialStyle = tolerantInt(value, g.SpecialStyle)
		case "widescreen_storyboard":
			g.WidescreenStoryboard = tolerantInt(value, g.WidescreenStoryboard)
		case "samples_match_playback_rate":
			g.SamplesMatchPlaybackRate = tolerantInt(value, g.SamplesMatchPlaybackRate)
		}
		// unknown keys are ignored.
	}
	return g
}

func parseDifficulty(raw string) Difficulty {
	d := DefaultDifficulty()
	kv := decodeKeyValue(raw)
	for key, value := range kv {
		switch key {
		case "hp_drain_rate":
			d.HPDrainRate = tolerantFloat(value, d.HPDrainRate)
		case "circle_size":
			d.CircleSize = tolerantFloat(value, d.CircleSize)
		case "overall_difficulty":
			d.OverallDifficulty = tolerantFloat(value, d.OverallDifficulty)
		case "approach_rate":
			d.ApproachRate = tolerantFloat(value, d.ApproachRate)
		case "slider_multiplier":
			d.SliderMultiplier = tolerantFloat(value, d.SliderMultiplier)
		case "slider_tick_rate":
			d.SliderTickRate = tolerantFloat(value, d.SliderTickRate)
		}
	}
	return d
}

// tolerantInt and tolerantFloat implement the "fall back on coercion
// failure" half of ErrBadNumeric for General/Difficulty fields: since Go
// fields are statically typed (unlike the dynamically-retyped source
// attribute), falling back to a raw string isn't representable, so the
// previous/default value is kept instead.
func tolerantInt(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func tolerantFloat(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

// timingPointTrailingDefaults fills the trailing fields of an under-length
// TimingPoints record, per §6: "fewer than 8 fields fills defaults (4, 1, 0,
// 100, 1, 0)".
var timingPointTrailingDefaults = [6]string{"4", "1", "0", "100", "1", "0"}

func parseTimingPoints(raw string) ([]TimingPoint, error) {
	var points []TimingPoint
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := splitTrim(line, ",")
		if len(fields) < 2 {
			return nil, newParseError(ErrMalformedLine, "TimingPoints", i+1, "expected at least time,beatLength, got %q", line)
		}
		for len(fields) < 8 {
			fields = append(fields, timingPointTrailingDefaults[len(fields)-2])
		}

		time, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad time %q: %v", fields[0], err)
		}
		beatLength, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad beatLength %q: %v", fields[1], err)
		}
		meter, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad meter %q: %v", fields[2], err)
		}
		sampleSet, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad sampleSet %q: %v", fields[3], err)
		}
		sampleIndex, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad sampleIndex %q: %v", fields[4], err)
		}
		volume, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad volume %q: %v", fields[5], err)
		}
		uninherited, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad uninherited %q: %v", fields[6], err)
		}
		effects, err := strconv.Atoi(fields[7])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "TimingPoints", i+1, "bad effects %q: %v", fields[7], err)
		}

		points = append(points, TimingPoint{
			Time: time, BeatLength: beatLength, Meter: meter,
			SampleSet: sampleSet, SampleIndex: sampleIndex, Volume: volume,
			Uninherited: uninherited, Effects: effects,
		})
	}
	return points, nil
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseHitObjects(raw string) ([]HitObject, error) {
	var objects []HitObject
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := splitTrim(line, ",")
		if len(fields) < 5 {
			return nil, newParseError(ErrMalformedLine, "HitObjects", i+1, "expected at least x,y,time,type,hitSound, got %q", line)
		}
		typeID, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, newParseError(ErrBadNumeric, "HitObjects", i+1, "bad type %q: %v", fields[3], err)
		}
		kind, err := HitObjectKindFromType(typeID)
		if err != nil {
			return nil, newParseError(ErrMalformedLine, "HitObjects", i+1, "%v", err)
		}

		var obj HitObject
		switch kind {
		case "circle":
			obj, err = parseCircle(fields, i+1)
		case "slider":
			obj, err = parseSlider(fields, i+1)
		case "spinner":
			obj, err = parseSpinner(fields, i+1)
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func parseHitObjectCore(fields []string, line int) (HitObjectBase, error) {
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return HitObjectBase{}, newParseError(ErrBadNumeric, "HitObjects", line, "bad x %q: %v", fields[0], err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return HitObjectBase{}, newParseError(ErrBadNumeric, "HitObjects", line, "bad y %q: %v", fields[1], err)
	}
	t, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return HitObjectBase{}, newParseError(ErrBadNumeric, "HitObjects", line, "bad time %q: %v", fields[2], err)
	}
	typeID, err := strconv.Atoi(fields[3])
	if err != nil {
		return HitObjectBase{}, newParseError(ErrBadNumeric, "HitObjects", line, "bad type %q: %v", fields[3], err)
	}
	hitSound, err := strconv.Atoi(fields[4])
	if err != nil {
		return HitObjectBase{}, newParseError(ErrBadNumeric, "HitObjects", line, "bad hitSound %q: %v", fields[4], err)
	}
	return HitObjectBase{X: x, Y: y, Time: t, Type: typeID, HitSound: hitSound}, nil
}

func parseCircle(fields []string, line int) (*Circle, error) {
	base, err := parseHitObjectCore(fields, line)
	if err != nil {
		return nil, err
	}
	if len(fields) > 5 {
		base.HitSample = parseHitSample(fields[5])
	}
	return &Circle{HitObjectBase: base}, nil
}

func parseSpinner(fields []string, line int) (*Spinner, error) {
	base, err := parseHitObjectCore(fields, line)
	if err != nil {
		return nil, err
	}
	rest := fields[5:]
	rest, hitSampleRaw := splitTrailingHitSample(rest)
	if len(rest) < 1 {
		return nil, newParseError(ErrMalformedLine, "HitObjects", line, "spinner missing endTime")
	}
	endTime, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		return nil, newParseError(ErrBadNumeric, "HitObjects", line, "bad endTime %q: %v", rest[0], err)
	}
	base.HitSample = parseHitSample(hitSampleRaw)
	return &Spinner{HitObjectBase: base, EndTime: endTime}, nil
}

func parseSlider(fields []string, line int) (*Slider, error) {
	base, err := parseHitObjectCore(fields, line)
	if err != nil {
		return nil, err
	}
	rest := fields[5:]
	rest, hitSampleRaw := splitTrailingHitSample(rest)
	if len(rest) < 3 {
		return nil, newParseError(ErrMalformedLine, "HitObjects", line, "slider missing curves,slides,length")
	}

	curves := parseSliderCurves(rest[0])
	slides, err := strconv.Atoi(rest[1])
	if err != nil {
		return nil, newParseError(ErrBadNumeric, "HitObjects", line, "bad slides %q: %v", rest[1], err)
	}
	length, err := strconv.ParseFloat(rest[2], 64)
	if err != nil {
		return nil, newParseError(ErrBadNumeric, "HitObjects", line, "bad length %q: %v", rest[2], err)
	}

	edgeSounds := defaultEdgeSounds(slides)
	if len(rest) >= 4 && rest[3] != "" {
		edgeSounds = nil
		for _, s := range strings.Split(rest[3], "|") {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, newParseError(ErrBadNumeric, "HitObjects", line, "bad edgeSound %q: %v", s, err)
			}
			edgeSounds = append(edgeSounds, v)
		}
	}

	edgeSets := defaultEdgeSets(slides)
	if len(rest) >= 5 && rest[4] != "" {
		edgeSets = nil
		for _, s := range strings.Split(rest[4], "|") {
			parts := strings.SplitN(s, ":", 2)
			if len(parts) != 2 {
				return nil, newParseError(ErrMalformedLine, "HitObjects", line, "bad edgeSet %q", s)
			}
			a, err1 := strconv.Atoi(parts[0])
			b, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				return nil, newParseError(ErrBadNumeric, "HitObjects", line, "bad edgeSet %q", s)
			}
			edgeSets = append(edgeSets, [2]int{a, b})
		}
	}

	base.HitSample = parseHitSample(hitSampleRaw)
	return &Slider{
		HitObjectBase: base,
		Curves:        curves,
		Slides:        slides,
		Length:        length,
		EdgeSounds:    edgeSounds,
		EdgeSets:      edgeSets,
	}, nil
}

func defaultEdgeSounds(slides int) []int {
	out := make([]int, slides+1)
	return out
}

func defaultEdgeSets(slides int) [][2]int {
	out := make([][2]int, slides+1)
	return out
}

// splitTrailingHitSample detects whether the final field of a slider/spinner
// record is a colon-separated hit sample (the common case) or actually part
// of the variant's own parameters (a beatmap omitting the trailing sample),
// mirroring the source's ":" in hit_sample heuristic.
func splitTrailingHitSample(fields []string) ([]string, string) {
	if len(fields) == 0 {
		return fields, ""
	}
	last := fields[len(fields)-1]
	if strings.Contains(last, ":") {
		return fields[:len(fields)-1], last
	}
	return fields, "0:0:0:0:"
}

func parseHitSample(raw string) HitSample {
	if raw == "" {
		return HitSample{}
	}
	parts := strings.Split(raw, ":")
	hs := HitSample{}
	if len(parts) > 0 {
		hs.NormalSet, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	}
	if len(parts) > 1 {
		hs.AdditionSet, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	if len(parts) > 2 {
		hs.Index, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
	}
	if len(parts) > 3 {
		hs.Volume, _ = strconv.Atoi(strings.TrimSpace(parts[3]))
	}
	if len(parts) > 4 {
		hs.Custom = strings.TrimSpace(parts[4])
	}
	return hs
}

// parseSliderCurves splits the concatenated "B|x:y|...L|x:y|..." curve
// string into its per-segment runs using the same regex the reference
// parser does, then decodes each run's control points.
func parseSliderCurves(raw string) []SliderCurve {
	runs := sliderCurveRe.FindAllString(raw, -1)
	curves := make([]SliderCurve, 0, len(runs))
	for _, run := range runs {
		segments := strings.Split(run, "|")
		if len(segments) == 0 {
			continue
		}
		kind := CurveKind(segments[0][0])
		var points []Point
		for _, seg := range segments[1:] {
			if seg == "" {
				continue
			}
			xy := strings.SplitN(seg, ":", 2)
			if len(xy) != 2 {
				continue
			}
			x, errX := strconv.ParseFloat(xy[0], 64)
			y, errY := strconv.ParseFloat(xy[1], 64)
			if errX != nil || errY != nil {
				continue
			}
			points = append(points, Point{X: x, Y: y})
		}
		curves = append(curves, SliderCurve{Kind: kind, Points: points})
	}
	return curves
}
