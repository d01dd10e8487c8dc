// Package cache is the optional, outside-the-core persistence layer: a
// SQLite-backed cache of previously computed DifficultyAttributes and
// PerformanceAttributes, keyed by the beatmap's rendered content plus the
// mod set under which they were computed. Nothing in internal/osu/calculator
// imports this package; a CLI or service wraps the core calculator with it
// when it wants to skip recomputation for a beatmap it has already seen.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cartomix/osudiff/internal/osu/beatmap"
	"github.com/cartomix/osudiff/internal/osu/calculator"
	"github.com/cartomix/osudiff/internal/osu/mods"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	kindDifficulty  = "difficulty"
	kindPerformance = "performance"
)

// DB wraps the cache's SQLite connection.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the cache database under dataDir and
// runs any pending migrations.
func Open(dataDir string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbPath := filepath.Join(dataDir, "osudiff-cache.db")

	sqlDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &DB{db: sqlDB, logger: logger}
	if err := store.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run cache migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	if _, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion int
	row := d.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("read current migration version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		d.logger.Debug("applying cache migration", "version", version, "file", entry.Name())

		if _, err := d.db.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := d.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Key derives the cache key for a beatmap under a mod set: a sha256 of the
// beatmap's round-trip rendered text (so two files differing only in
// metadata irrelevant to difficulty still collide on their hit-object and
// timing content, matching how the reference implementation's own
// fingerprinting treats a beatmap's "content") joined with its canonical mod
// string.
func Key(bm *beatmap.Beatmap, modSet mods.Set) string {
	sum := sha256.Sum256([]byte(bm.String()))
	return hex.EncodeToString(sum[:]) + ":" + modString(modSet)
}

func modString(modSet mods.Set) string {
	names := make([]string, 0, modSet.Len())
	for _, m := range modSet.Slice() {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// GetDifficulty looks up a previously cached DifficultyAttributes by key.
// The second return reports whether an entry was found.
func (d *DB) GetDifficulty(key string) (calculator.DifficultyAttributes, bool, error) {
	var attrs calculator.DifficultyAttributes
	found, err := d.get(key, kindDifficulty, &attrs)
	return attrs, found, err
}

// PutDifficulty stores attrs under key, overwriting any prior entry.
func (d *DB) PutDifficulty(key string, attrs calculator.DifficultyAttributes) error {
	return d.put(key, kindDifficulty, attrs)
}

// GetPerformance looks up a previously cached PerformanceAttributes by key.
func (d *DB) GetPerformance(key string) (calculator.PerformanceAttributes, bool, error) {
	var attrs calculator.PerformanceAttributes
	found, err := d.get(key, kindPerformance, &attrs)
	return attrs, found, err
}

// PutPerformance stores attrs under key, overwriting any prior entry.
func (d *DB) PutPerformance(key string, attrs calculator.PerformanceAttributes) error {
	return d.put(key, kindPerformance, attrs)
}

func (d *DB) get(key, kind string, dest any) (bool, error) {
	var payload string
	row := d.db.QueryRow("SELECT payload FROM attribute_cache WHERE cache_key = ? AND kind = ?", key, kind)
	switch err := row.Scan(&payload); {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query cache entry: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("decode cached %s entry: %w", kind, err)
	}
	return true, nil
}

func (d *DB) put(key, kind string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", kind, err)
	}
	_, err = d.db.Exec(`
		INSERT INTO attribute_cache (cache_key, kind, payload) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET kind = excluded.kind, payload = excluded.payload
	`, key, kind, string(payload))
	if err != nil {
		return fmt.Errorf("write %s entry: %w", kind, err)
	}
	return nil
}
