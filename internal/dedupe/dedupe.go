// Package dedupe implements the two-stage deduplication engine for harvested
// bibliographic records: an exact pass over identifier keys, then a fuzzy
// pass over normalized titles gated by publication year. All passes are pure
// functions over record batches; survivors keep first-occurrence input order
// and the only in-place effect is filling empty TitleNorm caches.
package dedupe

import (
	"fmt"

	"github.com/litsift/litsift/internal/record"
)

// Engine defaults.
const (
	DefaultThreshold     = 0.85
	DefaultYearTolerance = 1
)

// Group kinds.
const (
	GroupExact = "exact"
	GroupFuzzy = "fuzzy"
)

// DefaultKeys returns the identifier kinds the exact pass matches on.
func DefaultKeys() []string {
	return []string{record.KeyDOI, record.KeyPMID}
}

// Options configures a deduplication run.
type Options struct {
	// Threshold is the minimum normalized-title similarity for a fuzzy
	// merge. Must be strictly between 0 and 1.
	Threshold float64

	// YearTolerance is the maximum publication-year distance for a fuzzy
	// merge. A missing year on either side always passes.
	YearTolerance int

	// Keys are the identifier kinds for the exact pass. Nil means
	// DefaultKeys.
	Keys []string

	// Workers caps similarity-scoring parallelism. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		YearTolerance: DefaultYearTolerance,
		Keys:          DefaultKeys(),
	}
}

// Validate reports configuration errors. Runs fail on these before any
// record is touched.
func (o Options) Validate() error {
	if o.Threshold <= 0 || o.Threshold >= 1 {
		return fmt.Errorf("similarity threshold must be strictly between 0 and 1, got %g", o.Threshold)
	}
	if o.YearTolerance < 0 {
		return fmt.Errorf("year tolerance must not be negative, got %d", o.YearTolerance)
	}
	return validateKeys(o.Keys)
}

func validateKeys(keys []string) error {
	for _, kind := range keys {
		switch kind {
		case record.KeyDOI, record.KeyPMID, record.KeySourceID:
		default:
			return fmt.Errorf("unknown exact-match key %q", kind)
		}
	}
	return nil
}

// Group records one resolved duplicate group for reporting. Key is the
// matched identifier for exact groups and the survivor's normalized title
// for fuzzy groups.
type Group struct {
	Kind     string   `json:"kind"`
	Key      string   `json:"key"`
	Survivor string   `json:"survivor"`
	Removed  []string `json:"removed"`
}

// Summary counts what a run removed. Input = Final + ExactRemoved +
// FuzzyRemoved always holds.
type Summary struct {
	Input        int `json:"input_count"`
	ExactRemoved int `json:"exact_removed"`
	FuzzyRemoved int `json:"fuzzy_removed"`
	Final        int `json:"final_count"`
}

// TotalRemoved returns the records removed across both passes.
func (s Summary) TotalRemoved() int {
	return s.ExactRemoved + s.FuzzyRemoved
}

// Result is a completed deduplication run.
type Result struct {
	Records []record.Record `json:"-"`
	Summary Summary         `json:"summary"`
	Groups  []Group         `json:"groups,omitempty"`
}

// Deduplicate runs the exact pass over the full batch, then the fuzzy pass
// over its survivors. Running it on its own output removes nothing.
func Deduplicate(records []record.Record, opts Options) (Result, error) {
	if opts.Keys == nil {
		opts.Keys = DefaultKeys()
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	kept, exactRemoved, exactGroups, err := ExactPass(records, opts.Keys)
	if err != nil {
		return Result{}, err
	}
	kept, fuzzyRemoved, fuzzyGroups, err := FuzzyPass(kept, opts)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Records: kept,
		Summary: Summary{
			Input:        len(records),
			ExactRemoved: exactRemoved,
			FuzzyRemoved: fuzzyRemoved,
			Final:        len(kept),
		},
		Groups: append(exactGroups, fuzzyGroups...),
	}, nil
}

// displayID labels a record in group reports: corpus ID when assigned,
// otherwise the display title.
func displayID(r *record.Record) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Title
}
