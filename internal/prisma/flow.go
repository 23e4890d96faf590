package prisma

import (
	"fmt"
	"sort"
	"strings"
)

// Flow holds the selection counts for each step of the PRISMA flow.
type Flow struct {
	Identified        map[string]int `json:"identified"` // per harvest source
	TotalIdentified   int            `json:"total_identified"`
	AfterMerge        int            `json:"after_merge"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	AfterDedupe       int            `json:"after_deduplication"`
	ExcludedByRules   int            `json:"excluded_by_rules"`
	AfterFiltering    int            `json:"after_filtering"`
	FinalIncluded     int            `json:"final_included"`
}

// FromMetrics derives flow counts from a run record. Missing stages fall
// through: a run that never filtered reports its dedupe survivors as the
// screening pool.
func FromMetrics(m RunMetrics) Flow {
	f := Flow{Identified: make(map[string]int)}
	for source, n := range m.Harvest {
		f.Identified[source] = n
		f.TotalIdentified += n
	}

	f.AfterMerge = m.Normalized
	if f.AfterMerge == 0 {
		f.AfterMerge = f.TotalIdentified
	}

	f.DuplicatesRemoved = m.Dedupe.TotalRemoved()
	f.AfterDedupe = m.Dedupe.Final
	if f.AfterDedupe == 0 && f.DuplicatesRemoved == 0 {
		f.AfterDedupe = f.AfterMerge
	}

	for _, n := range m.Filter.Excluded {
		f.ExcludedByRules += n
	}
	f.AfterFiltering = m.Filter.Final
	if f.AfterFiltering == 0 && f.ExcludedByRules == 0 {
		f.AfterFiltering = f.AfterDedupe
	}

	f.FinalIncluded = m.Final
	if f.FinalIncluded == 0 {
		f.FinalIncluded = f.AfterFiltering
	}
	return f
}

// Text renders the flow as an indented selection summary.
func (f Flow) Text() string {
	var b strings.Builder
	b.WriteString("PRISMA Flow Summary\n")
	b.WriteString("====================\n\n")

	b.WriteString("Identification:\n")
	for _, source := range sortedSources(f.Identified) {
		fmt.Fprintf(&b, "  - %s: %d records\n", source, f.Identified[source])
	}
	fmt.Fprintf(&b, "  - Total identified: %d records\n\n", f.TotalIdentified)

	b.WriteString("Screening:\n")
	fmt.Fprintf(&b, "  - After merging sources: %d records\n", f.AfterMerge)
	if f.DuplicatesRemoved > 0 {
		fmt.Fprintf(&b, "  - Duplicates removed: %d records\n", f.DuplicatesRemoved)
	}
	fmt.Fprintf(&b, "  - After deduplication: %d records\n", f.AfterDedupe)
	if f.ExcludedByRules > 0 {
		fmt.Fprintf(&b, "  - Excluded by automated rules: %d records\n", f.ExcludedByRules)
	}
	fmt.Fprintf(&b, "  - Available for manual screening: %d records\n\n", f.AfterFiltering)

	b.WriteString("Eligibility:\n")
	fmt.Fprintf(&b, "  - Final included studies: %d records\n", f.FinalIncluded)

	if f.TotalIdentified > 0 {
		rate := float64(f.FinalIncluded) / float64(f.TotalIdentified) * 100
		fmt.Fprintf(&b, "\nOverall inclusion rate: %.1f%% (%d/%d)\n",
			rate, f.FinalIncluded, f.TotalIdentified)
	}
	return b.String()
}

func sortedSources(identified map[string]int) []string {
	sources := make([]string, 0, len(identified))
	for source := range identified {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
