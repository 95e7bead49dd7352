package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds accepted by FEQUIZ_STORE.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds all process configuration for the server and the terminal client.
type Config struct {
	// Addr is the listen address for `serve`.
	Addr string

	// DataDir holds questions.json, glossary.json and (for the file store)
	// user_progress.json.
	DataDir string

	// Store selects the progress repository: "file" or "sqlite".
	Store string

	// DBPath is the SQLite database path. Empty means <DataDir>/progress.db.
	DBPath string

	// LogMode is passed to logger.New.
	LogMode string

	// CORSOrigins lists allowed origins. A single "*" allows all.
	CORSOrigins []string

	// SnapshotKeep is how many SQLite snapshots survive a prune.
	SnapshotKeep int

	// PruneInterval is how often snapshot pruning runs.
	PruneInterval time.Duration

	// APIBase is the base URL the terminal client talks to.
	APIBase string
}

// Default returns a Config with defaults for every field.
func Default() Config {
	return Config{
		Addr:          ":3001",
		DataDir:       "./data",
		Store:         StoreFile,
		LogMode:       "development",
		CORSOrigins:   []string{"*"},
		SnapshotKeep:  50,
		PruneInterval: time.Hour,
		APIBase:       "http://localhost:3001/api",
	}
}

// Load reads an optional .env file and then the FEQUIZ_* environment
// variables on top of the defaults.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment, falling back to defaults for
// unset values.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("FEQUIZ_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("FEQUIZ_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FEQUIZ_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := os.Getenv("FEQUIZ_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FEQUIZ_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("FEQUIZ_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("FEQUIZ_SNAPSHOT_KEEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("FEQUIZ_SNAPSHOT_KEEP: %w", err)
		}
		cfg.SnapshotKeep = n
	}
	if v := os.Getenv("FEQUIZ_PRUNE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("FEQUIZ_PRUNE_INTERVAL: %w", err)
		}
		cfg.PruneInterval = d
	}
	if v := os.Getenv("FEQUIZ_API_BASE"); v != "" {
		cfg.APIBase = v
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store kind %q (want %q or %q)", c.Store, StoreFile, StoreSQLite)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.SnapshotKeep <= 0 {
		return fmt.Errorf("snapshot keep must be positive, got %d", c.SnapshotKeep)
	}
	if c.PruneInterval <= 0 {
		return fmt.Errorf("prune interval must be positive, got %s", c.PruneInterval)
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	return nil
}

// QuestionsPath returns the path of the question dataset.
func (c Config) QuestionsPath() string {
	return filepath.Join(c.DataDir, "questions.json")
}

// GlossaryPath returns the path of the glossary dataset.
func (c Config) GlossaryPath() string {
	return filepath.Join(c.DataDir, "glossary.json")
}

// ProgressPath returns the path of the JSON progress document.
func (c Config) ProgressPath() string {
	return filepath.Join(c.DataDir, "user_progress.json")
}

// SQLitePath returns the SQLite database path, defaulting into DataDir.
func (c Config) SQLitePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "progress.db")
}

// AllowAllOrigins reports whether CORS is wide open.
func (c Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
