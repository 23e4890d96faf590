package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

var (
	searchLimit    int
	searchAuthors  []string
	searchTitle    string
	searchJournal  string
	searchSource   string
	searchDocType  string
	searchYearFrom int
	searchYearTo   int
	searchHasPDF   bool
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Search by author name (can be repeated, uses AND logic)")
	searchCmd.Flags().StringVarP(&searchTitle, "title", "t", "", "Search in title only")
	searchCmd.Flags().StringVar(&searchJournal, "journal", "", "Filter by journal (partial match)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Filter by harvest source")
	searchCmd.Flags().StringVar(&searchDocType, "type", "", "Filter by document type")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Earliest publication year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Latest publication year")
	searchCmd.Flags().BoolVar(&searchHasPDF, "has-pdf", false, "Only records with a linked or downloadable PDF")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus by keyword, author, or filters",
	Long: `Search the corpus with full-text matching and filters.

The positional query searches title, abstract, authors, and journal.
Author matching supports prefix matching, so "Tim" matches "Timothy".
When multiple authors are specified, all must match (AND logic).

Searches hit the SQLite cache; run 'litsift rebuild' first if the corpus
changed.

Examples:
  litsift search "autism screening"
  litsift search "machine learning" -a Smith --year-from 2020
  litsift search --type review --has-pdf
  litsift search --journal "JAMA" --year-from 2015 --year-to 2020`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	db := mustOpenDatabase(workspaceRoot)
	defer db.Close()

	var records []record.Record
	var err error

	// Check if using flag-based search
	useFilters := len(searchAuthors) > 0 || searchTitle != "" || searchJournal != "" ||
		searchSource != "" || searchDocType != "" || searchYearFrom != 0 || searchYearTo != 0 ||
		searchHasPDF

	switch {
	case useFilters:
		filters := storage.SearchFilters{
			Authors:  searchAuthors,
			Title:    searchTitle,
			Journal:  searchJournal,
			Source:   searchSource,
			DocType:  searchDocType,
			YearFrom: searchYearFrom,
			YearTo:   searchYearTo,
			HasPDF:   searchHasPDF,
		}
		if len(args) > 0 {
			filters.Keyword = args[0]
		}
		records, err = db.SearchWithFilters(filters, searchLimit)
	case len(args) > 0:
		records, err = db.Search(args[0], searchLimit)
	default:
		exitWithError(ExitError, "must specify a query or at least one filter (--author, --year-from, --type, ...)")
	}

	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if records == nil {
		records = []record.Record{}
	}

	if humanOutput {
		if len(records) == 0 {
			fmt.Println("No records found")
		} else {
			fmt.Printf("Found %d records:\n\n", len(records))
			for i, r := range records {
				printRecordSummary(i+1, r)
			}
		}
	} else {
		outputJSON(records)
	}

	return nil
}
