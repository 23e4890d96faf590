// Package prisma turns pipeline run metrics into the structured flow counts
// a PRISMA-style selection report needs, plus a plain-text rendering.
package prisma

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/litsift/litsift/internal/dedupe"
	"github.com/litsift/litsift/internal/filter"
)

// RunMetrics records one pipeline run. Written to the workspace after
// process, dedupe, and filter runs; read back by the prisma command.
type RunMetrics struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Harvest    map[string]int `json:"harvest,omitempty"` // identified per source
	Normalized int            `json:"normalized_count,omitempty"`
	Dedupe     dedupe.Summary `json:"deduplicate"`
	Filter     filter.Report  `json:"filter"`
	Final      int            `json:"final_included"`
}

// NewRunMetrics starts a run record with a fresh run ID.
func NewRunMetrics() RunMetrics {
	return RunMetrics{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Harvest:   make(map[string]int),
	}
}

// Finish stamps the completion time.
func (m *RunMetrics) Finish() {
	m.FinishedAt = time.Now().UTC()
}

// Save writes the run record as indented JSON.
func (m RunMetrics) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// LoadMetrics reads a run record written by Save.
func LoadMetrics(path string) (RunMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunMetrics{}, fmt.Errorf("reading metrics: %w", err)
	}
	var m RunMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return RunMetrics{}, fmt.Errorf("parsing metrics: %w", err)
	}
	return m, nil
}
