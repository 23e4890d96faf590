// Package filter applies configurable screening rules to a record batch and
// reports what each rule excluded.
package filter

import (
	"fmt"
	"strings"

	"github.com/litsift/litsift/internal/record"
)

// Rule names, in evaluation order. A record is charged to the first rule
// that excludes it.
const (
	RuleLanguage  = "language"
	RuleDocType   = "doc_type"
	RuleYear      = "year"
	RulePreprints = "preprints"
	RuleEssential = "missing_essential"
	RuleCitations = "min_citations"
	RuleJournals  = "excluded_journals"
)

var ruleOrder = []string{
	RuleLanguage,
	RuleDocType,
	RuleYear,
	RulePreprints,
	RuleEssential,
	RuleCitations,
	RuleJournals,
}

// Rules configures the screening pass. Zero values disable a rule, so the
// zero Rules excludes nothing.
type Rules struct {
	// Langs keeps only records whose language is in the set. Records with
	// no detected language always pass.
	Langs []string `json:"langs,omitempty"`

	// Types is an allow-list on document type; ExcludeTypes a deny-list
	// applied after it. Records with no document type pass both.
	Types        []string `json:"types,omitempty"`
	ExcludeTypes []string `json:"exclude_types,omitempty"`

	// YearFrom and YearTo bound the publication year inclusively. Zero
	// disables a bound; records with no year always pass.
	YearFrom int `json:"year_from,omitempty"`
	YearTo   int `json:"year_to,omitempty"`

	// DropPreprints excludes preprints and posted content.
	DropPreprints bool `json:"drop_preprints,omitempty"`

	// RequireEssential keeps only records with a title and at least one of
	// abstract, DOI, or PMID.
	RequireEssential bool `json:"require_essential,omitempty"`

	// MinCitations excludes records cited fewer than n times. Zero disables.
	MinCitations int `json:"min_citations,omitempty"`

	// ExcludedJournals drops records from the named journals, matched
	// case-insensitively.
	ExcludedJournals []string `json:"excluded_journals,omitempty"`
}

// Detail describes one rule's exclusions for reporting.
type Detail struct {
	Rule     string `json:"rule"`
	Excluded int    `json:"excluded_count"`
	Criteria string `json:"criteria"`
}

// Report summarizes a screening pass.
type Report struct {
	Input    int            `json:"total_input"`
	Excluded map[string]int `json:"excluded_by_rule"`
	Final    int            `json:"final_count"`
	Details  []Detail       `json:"exclusion_details,omitempty"`
}

// TotalExcluded returns the records removed across all rules.
func (rep Report) TotalExcluded() int {
	return rep.Input - rep.Final
}

// Apply screens a batch against the rules, preserving input order among the
// kept records.
func Apply(records []record.Record, rules Rules) ([]record.Record, Report) {
	rep := Report{
		Input:    len(records),
		Excluded: make(map[string]int),
	}

	kept := make([]record.Record, 0, len(records))
	for i := range records {
		rule := exclusionRule(&records[i], rules)
		if rule == "" {
			kept = append(kept, records[i])
			continue
		}
		rep.Excluded[rule]++
	}

	rep.Final = len(kept)
	for _, rule := range ruleOrder {
		if n := rep.Excluded[rule]; n > 0 {
			rep.Details = append(rep.Details, Detail{
				Rule:     rule,
				Excluded: n,
				Criteria: criteria(rule, rules),
			})
		}
	}
	return kept, rep
}

// exclusionRule returns the name of the first rule excluding the record, or
// "" when the record passes all of them.
func exclusionRule(r *record.Record, rules Rules) string {
	if len(rules.Langs) > 0 && r.Lang != "" && !containsFold(rules.Langs, r.Lang) {
		return RuleLanguage
	}

	if r.DocType != "" {
		if len(rules.Types) > 0 && !containsFold(rules.Types, r.DocType) {
			return RuleDocType
		}
		if len(rules.ExcludeTypes) > 0 && containsFold(rules.ExcludeTypes, r.DocType) {
			return RuleDocType
		}
	}

	if r.Year != 0 {
		if rules.YearFrom != 0 && r.Year < rules.YearFrom {
			return RuleYear
		}
		if rules.YearTo != 0 && r.Year > rules.YearTo {
			return RuleYear
		}
	}

	if rules.DropPreprints {
		switch strings.ToLower(r.DocType) {
		case "preprint", "posted-content":
			return RulePreprints
		}
	}

	if rules.RequireEssential {
		hasTitle := strings.TrimSpace(r.Title) != ""
		hasPointer := r.Abstract != "" || r.HasDOI() || r.HasPMID()
		if !hasTitle || !hasPointer {
			return RuleEssential
		}
	}

	if rules.MinCitations > 0 && r.CitedBy < rules.MinCitations {
		return RuleCitations
	}

	if len(rules.ExcludedJournals) > 0 && r.Journal != "" && containsFold(rules.ExcludedJournals, r.Journal) {
		return RuleJournals
	}

	return ""
}

// criteria renders the configured bound for a rule's report line.
func criteria(rule string, rules Rules) string {
	switch rule {
	case RuleLanguage:
		return fmt.Sprintf("not in %v", rules.Langs)
	case RuleDocType:
		switch {
		case len(rules.Types) > 0 && len(rules.ExcludeTypes) > 0:
			return fmt.Sprintf("not in %v or in excluded %v", rules.Types, rules.ExcludeTypes)
		case len(rules.Types) > 0:
			return fmt.Sprintf("not in %v", rules.Types)
		default:
			return fmt.Sprintf("in excluded %v", rules.ExcludeTypes)
		}
	case RuleYear:
		return fmt.Sprintf("outside range %d-%d", rules.YearFrom, rules.YearTo)
	case RulePreprints:
		return "preprint or posted-content"
	case RuleEssential:
		return "missing title or all of abstract, DOI, PMID"
	case RuleCitations:
		return fmt.Sprintf("fewer than %d citations", rules.MinCitations)
	case RuleJournals:
		return fmt.Sprintf("in excluded %v", rules.ExcludedJournals)
	default:
		return ""
	}
}

// containsFold reports whether set contains value, ignoring case and
// surrounding whitespace.
func containsFold(set []string, value string) bool {
	value = strings.TrimSpace(value)
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), value) {
			return true
		}
	}
	return false
}

// Text renders the human-readable screening report.
func (rep Report) Text() string {
	var b strings.Builder
	b.WriteString("Filtering Report\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Input papers: %d\n", rep.Input)
	for _, rule := range ruleOrder {
		if n := rep.Excluded[rule]; n > 0 {
			fmt.Fprintf(&b, "Excluded by %s: %d\n", rule, n)
		}
	}
	fmt.Fprintf(&b, "Final count: %d\n", rep.Final)
	if rep.Input > 0 {
		rate := float64(rep.TotalExcluded()) / float64(rep.Input) * 100
		fmt.Fprintf(&b, "Exclusion rate: %.1f%%\n", rate)
	}
	if len(rep.Details) > 0 {
		b.WriteString("\nDetailed exclusions:\n")
		for _, d := range rep.Details {
			fmt.Fprintf(&b, "  %s: %d (%s)\n", d.Rule, d.Excluded, d.Criteria)
		}
	}
	return b.String()
}
