package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus counts",
	Long: `Show corpus counts: totals by source, document type, language, and
year, plus how many records are missing key fields.

Counts come from the SQLite cache; run 'litsift rebuild' first if the
corpus changed.`,
	RunE: runStats,
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
	ByType   map[string]int `json:"by_type"`
	ByLang   map[string]int `json:"by_lang"`
	ByYear   map[string]int `json:"by_year"`
	Missing  map[string]int `json:"missing"`
}

func runStats(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	db := mustOpenDatabase(workspaceRoot)
	defer db.Close()

	total, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting records: %v", err)
	}

	result := StatsResult{Total: total, Missing: make(map[string]int)}

	groups := []struct {
		column string
		dest   *map[string]int
	}{
		{"source", &result.BySource},
		{"doc_type", &result.ByType},
		{"lang", &result.ByLang},
		{"year", &result.ByYear},
	}
	for _, g := range groups {
		counts, err := db.CountBy(g.column)
		if err != nil {
			exitWithError(ExitError, "counting by %s: %v", g.column, err)
		}
		*g.dest = counts
	}

	for _, column := range []string{"doi", "pmid", "abstract", "year", "lang", "pdf_url", "pdf_path"} {
		n, err := db.CountMissing(column)
		if err != nil {
			exitWithError(ExitError, "counting missing %s: %v", column, err)
		}
		result.Missing[column] = n
	}

	if humanOutput {
		fmt.Printf("Total records: %d\n\n", result.Total)
		printCountGroup("By source", result.BySource)
		printCountGroup("By type", result.ByType)
		printCountGroup("By language", result.ByLang)
		printCountGroup("Missing fields", result.Missing)
	} else {
		outputJSON(result)
	}

	return nil
}

// printCountGroup prints a labeled count map with keys sorted.
func printCountGroup(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := k
		if name == "" {
			name = "(none)"
		}
		fmt.Printf("  %-20s %d\n", name, counts[k])
	}
	fmt.Println()
}
