package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env holds LITSIFT_* environment overrides. Fields are pointers so only
// variables actually set in the environment override the file config.
type Env struct {
	Threshold     *float64 `envconfig:"THRESHOLD"`
	YearTolerance *int     `envconfig:"YEAR_TOLERANCE"`
	Keys          []string `envconfig:"KEYS"`
	Workers       *int     `envconfig:"WORKERS"`
	Langs         []string `envconfig:"LANGS"`
	YearFrom      *int     `envconfig:"YEAR_FROM"`
	YearTo        *int     `envconfig:"YEAR_TO"`
	Source        *string  `envconfig:"SOURCE"`
	PDFReader     *string  `envconfig:"PDF_READER"`
	LogLevel      string   `envconfig:"LOG_LEVEL"`
}

// LoadEnv reads LITSIFT_* variables from the environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("litsift", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &env, nil
}

// Apply merges set environment variables over a file config.
func (e *Env) Apply(c *Config) {
	if e.Threshold != nil {
		c.Threshold = *e.Threshold
	}
	if e.YearTolerance != nil {
		c.YearTolerance = *e.YearTolerance
	}
	if len(e.Keys) > 0 {
		c.Keys = e.Keys
	}
	if e.Workers != nil {
		c.Workers = *e.Workers
	}
	if len(e.Langs) > 0 {
		c.Filter.Langs = e.Langs
	}
	if e.YearFrom != nil {
		c.Filter.YearFrom = *e.YearFrom
	}
	if e.YearTo != nil {
		c.Filter.YearTo = *e.YearTo
	}
	if e.Source != nil {
		c.DefaultSource = *e.Source
	}
	if e.PDFReader != nil {
		c.PDFReader = *e.PDFReader
	}
}

// LoadDotEnv loads a .env file from the given directory into the process
// environment. Variables already set in the environment win. A missing
// file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
