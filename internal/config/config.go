// Package config parses the osudiff CLI's command-line flags into a Config
// the rest of main wires up.
package config

import (
	"flag"
	"os"
)

// Config holds every setting the osudiff CLI accepts.
type Config struct {
	BeatmapPath string
	Mods        string
	Accuracy    float64
	Combo       int
	Misses      int
	CachePath   string
	LogLevel    string
}

// Parse reads os.Args into a Config, applying defaults for anything the
// caller omits.
func Parse() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.BeatmapPath, "beatmap", "", "path to a .osu beatmap file")
	flag.StringVar(&cfg.Mods, "mods", "", "comma-separated mod names, e.g. HardRock,DoubleTime")
	flag.Float64Var(&cfg.Accuracy, "accuracy", 1.0, "accuracy fraction in [0,1] for the performance calculation")
	flag.IntVar(&cfg.Combo, "combo", -1, "max combo achieved; -1 means full combo")
	flag.IntVar(&cfg.Misses, "misses", 0, "miss count for the performance calculation")
	flag.StringVar(&cfg.CachePath, "cache-dir", defaultCacheDir(), "directory for the optional result cache's SQLite database")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flag.Parse()
	return cfg
}

func defaultCacheDir() string {
	if dir := os.Getenv("OSUDIFF_CACHE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".osudiff"
	}
	return home + "/.osudiff"
}
