// Package config handles workspace and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/litsift/litsift/internal/dedupe"
	"github.com/litsift/litsift/internal/filter"
)

// Config represents workspace configuration stored in .litsift/config.json.
// Load starts from Default(), so a config file only needs the keys it
// overrides.
type Config struct {
	// Threshold is the minimum normalized-title similarity for a fuzzy
	// merge. Must be strictly between 0 and 1.
	Threshold float64 `json:"threshold"`

	// YearTolerance is the maximum publication-year distance for a fuzzy
	// merge.
	YearTolerance int `json:"year_tolerance"`

	// Keys are the identifier kinds used by the exact deduplication pass.
	Keys []string `json:"keys,omitempty"`

	// Workers caps similarity-scoring parallelism. Zero means one worker
	// per CPU.
	Workers int `json:"workers,omitempty"`

	// Filter holds the screening rules applied by the filter stage.
	Filter filter.Rules `json:"filter,omitempty"`

	// DefaultSource tags imported records that carry no source of their own.
	DefaultSource string `json:"default_source,omitempty"`

	// PDFReader selects the viewer for the open command: system, skim,
	// zathura, evince, or okular.
	PDFReader string `json:"pdf_reader,omitempty"`
}

const (
	LitsiftDir  = ".litsift"
	ConfigFile  = "config.json"
	RecordsFile = "records.jsonl"
	MetricsFile = "metrics.json"
	CacheDir    = "cache"
	DBFile      = "index.db"
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "zathura", "evince", "okular"}

// Default returns the configuration used when no file overrides it.
// RequireEssential is on out of the box so screening starts from records
// that can actually be reviewed.
func Default() Config {
	return Config{
		Threshold:     dedupe.DefaultThreshold,
		YearTolerance: dedupe.DefaultYearTolerance,
		Keys:          dedupe.DefaultKeys(),
		Filter:        filter.Rules{RequireEssential: true},
	}
}

// DedupeOptions converts the deduplication keys of the config into
// engine options.
func (c *Config) DedupeOptions() dedupe.Options {
	return dedupe.Options{
		Threshold:     c.Threshold,
		YearTolerance: c.YearTolerance,
		Keys:          c.Keys,
		Workers:       c.Workers,
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if err := c.DedupeOptions().Validate(); err != nil {
		return err
	}
	return ValidatePDFReader(c.PDFReader)
}

// LitsiftPath returns the path to the .litsift directory.
func LitsiftPath(root string) string {
	return filepath.Join(root, LitsiftDir)
}

// ConfigPath returns the path to the config file.
func ConfigPath(root string) string {
	return filepath.Join(root, LitsiftDir, ConfigFile)
}

// RecordsPath returns the path to the canonical records file.
func RecordsPath(root string) string {
	return filepath.Join(root, LitsiftDir, RecordsFile)
}

// MetricsPath returns the path to the run metrics file.
func MetricsPath(root string) string {
	return filepath.Join(root, LitsiftDir, MetricsFile)
}

// CachePath returns the path to the cache directory.
func CachePath(root string) string {
	return filepath.Join(root, LitsiftDir, CacheDir)
}

// DBPath returns the path to the SQLite cache database.
func DBPath(root string) string {
	return filepath.Join(root, LitsiftDir, CacheDir, DBFile)
}

// IsWorkspace checks if the given directory is a litsift workspace root.
func IsWorkspace(dir string) bool {
	info, err := os.Stat(LitsiftPath(dir))
	return err == nil && info.IsDir()
}

// FindWorkspace searches for a workspace root starting from the given
// directory and walking up.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a litsift workspace (no %s directory found)", LitsiftDir)
		}
		abs = parent
	}
}

// Load reads the config file from a workspace root. Missing keys keep
// their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Effective returns the workspace config with environment overrides
// applied. A workspace without a config file gets the defaults.
func Effective(root string) (*Config, error) {
	cfg, err := Load(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		def := Default()
		cfg = &def
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	return cfg, nil
}

// Save writes the config file to a workspace root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ValidatePDFReader checks that a PDF reader value is supported.
// Empty is allowed and falls back to the system default.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil
	}
	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid pdf_reader %q (valid: system, skim, zathura, evince, okular)", reader)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(home, path[2:])
	}
	return path
}
