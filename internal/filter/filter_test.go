package filter

import (
	"strings"
	"testing"

	"github.com/litsift/litsift/internal/record"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name         string
		records      []record.Record
		rules        Rules
		wantKept     []string
		wantExcluded map[string]int
	}{
		{
			name: "zero rules keep everything",
			records: []record.Record{
				{ID: "a"},
				{ID: "b", Lang: "de", Year: 1901},
			},
			rules:        Rules{},
			wantKept:     []string{"a", "b"},
			wantExcluded: map[string]int{},
		},
		{
			name: "language rule",
			records: []record.Record{
				{ID: "a", Lang: "en"},
				{ID: "b", Lang: "de"},
				{ID: "c"}, // missing language passes
				{ID: "d", Lang: "FR"},
			},
			rules:        Rules{Langs: []string{"en", "fr"}},
			wantKept:     []string{"a", "c", "d"},
			wantExcluded: map[string]int{RuleLanguage: 1},
		},
		{
			name: "doc type allow and deny",
			records: []record.Record{
				{ID: "a", DocType: "journal-article"},
				{ID: "b", DocType: "editorial"},
				{ID: "c"}, // missing type passes
				{ID: "d", DocType: "review"},
			},
			rules:        Rules{Types: []string{"journal-article", "review"}, ExcludeTypes: []string{"review"}},
			wantKept:     []string{"a", "c"},
			wantExcluded: map[string]int{RuleDocType: 2},
		},
		{
			name: "year window",
			records: []record.Record{
				{ID: "a", Year: 2014},
				{ID: "b", Year: 2015},
				{ID: "c", Year: 2025},
				{ID: "d", Year: 2026},
				{ID: "e"}, // missing year passes
			},
			rules:        Rules{YearFrom: 2015, YearTo: 2025},
			wantKept:     []string{"b", "c", "e"},
			wantExcluded: map[string]int{RuleYear: 2},
		},
		{
			name: "preprints dropped",
			records: []record.Record{
				{ID: "a", DocType: "journal-article"},
				{ID: "b", DocType: "preprint"},
				{ID: "c", DocType: "posted-content"},
			},
			rules:        Rules{DropPreprints: true},
			wantKept:     []string{"a"},
			wantExcluded: map[string]int{RulePreprints: 2},
		},
		{
			name: "essential fields",
			records: []record.Record{
				{ID: "a", Title: "T", DOI: "10.1/a"},
				{ID: "b", Title: "T", Abstract: "A"},
				{ID: "c", Title: "T", PMID: "111"},
				{ID: "d", Title: "T"},    // no abstract, doi, or pmid
				{ID: "e", DOI: "10.1/e"}, // no title
			},
			rules:        Rules{RequireEssential: true},
			wantKept:     []string{"a", "b", "c"},
			wantExcluded: map[string]int{RuleEssential: 2},
		},
		{
			name: "citation floor",
			records: []record.Record{
				{ID: "a", CitedBy: 10},
				{ID: "b", CitedBy: 3},
				{ID: "c"},
			},
			rules:        Rules{MinCitations: 5},
			wantKept:     []string{"a"},
			wantExcluded: map[string]int{RuleCitations: 2},
		},
		{
			name: "excluded journals exact match",
			records: []record.Record{
				{ID: "a", Journal: "Predatory Letters"},
				{ID: "b", Journal: "Journal of Predatory Letters"},
				{ID: "c"},
			},
			rules:        Rules{ExcludedJournals: []string{"predatory letters"}},
			wantKept:     []string{"b", "c"},
			wantExcluded: map[string]int{RuleJournals: 1},
		},
		{
			name: "first failing rule charged",
			records: []record.Record{
				{ID: "a", Lang: "de", Year: 1990, DocType: "preprint"},
			},
			rules: Rules{
				Langs:         []string{"en"},
				YearFrom:      2015,
				DropPreprints: true,
			},
			wantKept:     []string{},
			wantExcluded: map[string]int{RuleLanguage: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, rep := Apply(tt.records, tt.rules)

			if len(kept) != len(tt.wantKept) {
				t.Fatalf("kept %d records, want %d", len(kept), len(tt.wantKept))
			}
			for i, id := range tt.wantKept {
				if kept[i].ID != id {
					t.Errorf("kept[%d].ID = %q, want %q", i, kept[i].ID, id)
				}
			}

			if rep.Input != len(tt.records) || rep.Final != len(kept) {
				t.Errorf("report counts = %d in, %d out, want %d, %d",
					rep.Input, rep.Final, len(tt.records), len(kept))
			}
			if len(rep.Excluded) != len(tt.wantExcluded) {
				t.Errorf("excluded map = %v, want %v", rep.Excluded, tt.wantExcluded)
			}
			for rule, n := range tt.wantExcluded {
				if rep.Excluded[rule] != n {
					t.Errorf("excluded[%s] = %d, want %d", rule, rep.Excluded[rule], n)
				}
			}
		})
	}
}

func TestReportText(t *testing.T) {
	records := []record.Record{
		{ID: "a", Lang: "en", Title: "T", DOI: "10.1/a"},
		{ID: "b", Lang: "de", Title: "T", DOI: "10.1/b"},
		{ID: "c", Lang: "en", Title: "T"},
	}
	_, rep := Apply(records, Rules{Langs: []string{"en"}, RequireEssential: true})

	text := rep.Text()
	for _, want := range []string{
		"Input papers: 3",
		"Excluded by language: 1",
		"Excluded by missing_essential: 1",
		"Final count: 1",
		"Exclusion rate: 66.7%",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report text missing %q:\n%s", want, text)
		}
	}
}

func TestApplyDetailOrder(t *testing.T) {
	records := []record.Record{
		{ID: "a", Year: 1990},
		{ID: "b", Lang: "de"},
	}
	_, rep := Apply(records, Rules{Langs: []string{"en"}, YearFrom: 2015})

	if len(rep.Details) != 2 {
		t.Fatalf("got %d details, want 2", len(rep.Details))
	}
	if rep.Details[0].Rule != RuleLanguage || rep.Details[1].Rule != RuleYear {
		t.Errorf("details out of rule order: %v, %v", rep.Details[0].Rule, rep.Details[1].Rule)
	}
}
