package cache

import (
	"testing"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/calculator"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

func sampleBeatmap() *beatmap.Beatmap {
	return &beatmap.Beatmap{
		General:    beatmap.DefaultGeneral(),
		Difficulty: beatmap.DefaultDifficulty(),
		HitObjects: []beatmap.HitObject{
			&beatmap.Circle{HitObjectBase: beatmap.HitObjectBase{X: 100, Y: 100, Time: 0, Type: 1}},
		},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKeyDiffersByMods(t *testing.T) {
	bm := sampleBeatmap()
	k1 := Key(bm, mods.NewSet())
	k2 := Key(bm, mods.NewSet(mods.DoubleTime))
	if k1 == k2 {
		t.Fatalf("expected distinct keys for distinct mod sets, got %q for both", k1)
	}
}

func TestKeyStableAcrossModOrder(t *testing.T) {
	bm := sampleBeatmap()
	k1 := Key(bm, mods.NewSet(mods.HardRock, mods.DoubleTime))
	k2 := Key(bm, mods.NewSet(mods.DoubleTime, mods.HardRock))
	if k1 != k2 {
		t.Fatalf("expected key to be independent of mod insertion order: %q != %q", k1, k2)
	}
}

func TestPutGetDifficultyRoundTrips(t *testing.T) {
	db := openTestDB(t)
	key := Key(sampleBeatmap(), mods.NewSet())

	want := calculator.DifficultyAttributes{
		StarRating:     3.21,
		AimDifficulty:  1.5,
		MaxCombo:       20,
		HitCircleCount: 20,
		Mods:           mods.NewSet(mods.Hidden),
	}
	if err := db.PutDifficulty(key, want); err != nil {
		t.Fatalf("PutDifficulty: %v", err)
	}

	got, found, err := db.GetDifficulty(key)
	if err != nil {
		t.Fatalf("GetDifficulty: %v", err)
	}
	if !found {
		t.Fatal("expected a cache hit")
	}
	if got.StarRating != want.StarRating || got.MaxCombo != want.MaxCombo {
		t.Fatalf("GetDifficulty = %+v, want %+v", got, want)
	}
	if !got.Mods.Has(mods.Hidden) {
		t.Fatalf("expected Hidden to survive the round trip, got %+v", got.Mods)
	}
}

func TestGetDifficultyMiss(t *testing.T) {
	db := openTestDB(t)
	_, found, err := db.GetDifficulty("nonexistent")
	if err != nil {
		t.Fatalf("GetDifficulty: %v", err)
	}
	if found {
		t.Fatal("expected a cache miss for an unknown key")
	}
}

func TestPutDifficultyOverwritesPriorEntry(t *testing.T) {
	db := openTestDB(t)
	key := Key(sampleBeatmap(), mods.NewSet())

	if err := db.PutDifficulty(key, calculator.DifficultyAttributes{StarRating: 1.0}); err != nil {
		t.Fatalf("PutDifficulty (first): %v", err)
	}
	if err := db.PutDifficulty(key, calculator.DifficultyAttributes{StarRating: 2.0}); err != nil {
		t.Fatalf("PutDifficulty (second): %v", err)
	}

	got, found, err := db.GetDifficulty(key)
	if err != nil {
		t.Fatalf("GetDifficulty: %v", err)
	}
	if !found || got.StarRating != 2.0 {
		t.Fatalf("expected the overwritten value 2.0, got found=%v value=%+v", found, got)
	}
}

func TestPutGetPerformanceRoundTrips(t *testing.T) {
	db := openTestDB(t)
	key := Key(sampleBeatmap(), mods.NewSet())

	want := calculator.PerformanceAttributes{PP: 245.6, Accuracy: 0.98}
	if err := db.PutPerformance(key, want); err != nil {
		t.Fatalf("PutPerformance: %v", err)
	}

	got, found, err := db.GetPerformance(key)
	if err != nil {
		t.Fatalf("GetPerformance: %v", err)
	}
	if !found || got.PP != want.PP || got.Accuracy != want.Accuracy {
		t.Fatalf("GetPerformance = %+v, want %+v", got, want)
	}
}
