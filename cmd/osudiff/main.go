// Command osudiff computes star rating and performance points for a single
// beatmap from the command line: parse the .osu file, apply the requested
// mods, run the difficulty calculator, and (given a score) the performance
// calculator, printing the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cartomix/osudiff/internal/cache"
	"github.com/cartomix/osudiff/internal/config"
	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/calculator"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

type result struct {
	Difficulty  calculator.DifficultyAttributes  `json:"difficulty"`
	Performance calculator.PerformanceAttributes `json:"performance"`
}

func main() {
	cfg := config.Parse()

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.BeatmapPath == "" {
		logger.Error("missing required -beatmap flag")
		os.Exit(1)
	}

	bm, err := beatmap.ParseFile(cfg.BeatmapPath)
	if err != nil {
		logger.Error("failed to parse beatmap", "path", cfg.BeatmapPath, "error", err)
		os.Exit(1)
	}

	var modNames []string
	if cfg.Mods != "" {
		modNames = strings.Split(cfg.Mods, ",")
	}
	modSet := mods.ParseSet(modNames...)

	var store *cache.DB
	if cfg.CachePath != "" {
		if err := os.MkdirAll(cfg.CachePath, 0755); err != nil {
			logger.Warn("failed to create cache directory, continuing uncached", "path", cfg.CachePath, "error", err)
		} else if store, err = cache.Open(cfg.CachePath, logger); err != nil {
			logger.Warn("failed to open cache, continuing uncached", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	ctx := context.Background()
	calc := calculator.New(logger)

	diff, err := difficultyFor(ctx, calc, store, bm, modSet)
	if err != nil {
		logger.Error("failed to compute difficulty", "error", err)
		os.Exit(1)
	}

	var combo *int
	if cfg.Combo >= 0 {
		combo = &cfg.Combo
	}
	perf := calc.CalculatePerformance(ctx, diff, cfg.Accuracy, combo, cfg.Misses)

	out := result{Difficulty: diff, Performance: perf}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}

// difficultyFor returns cached DifficultyAttributes for bm/modSet if store is
// non-nil and holds an entry, otherwise computes and (if store is non-nil)
// stores them.
func difficultyFor(ctx context.Context, calc *calculator.Calculator, store *cache.DB, bm *beatmap.Beatmap, modSet mods.Set) (calculator.DifficultyAttributes, error) {
	if store == nil {
		return calc.CalculateDifficulty(ctx, bm, modSet), nil
	}

	key := cache.Key(bm, modSet)
	if cached, found, err := store.GetDifficulty(key); err != nil {
		return calculator.DifficultyAttributes{}, fmt.Errorf("read cache: %w", err)
	} else if found {
		return cached, nil
	}

	diff := calc.CalculateDifficulty(ctx, bm, modSet)
	if err := store.PutDifficulty(key, diff); err != nil {
		return calculator.DifficultyAttributes{}, fmt.Errorf("write cache: %w", err)
	}
	return diff, nil
}
