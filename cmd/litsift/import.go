package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/importer"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

var (
	importFormat string
	importSource string
	importMerge  bool
	importStrict bool
	importDryRun bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "Import format (csv, jsonl)")
	importCmd.Flags().StringVar(&importSource, "source", "", "Source tag for records that carry none (default: config default_source)")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Update existing records matched by DOI, PMID, or ID instead of appending")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "Abort on the first malformed input line")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from a harvest export",
	Long: `Import records from a harvest export into the corpus.

Records are normalized on the way in (title and DOI cleanup, year and
document type extraction, language detection). Without --merge every
record is appended under a fresh unique ID; with --merge records matching
an existing DOI, PMID, or ID update that record in place.

Run 'litsift rebuild' afterwards to refresh the search cache.

Usage:
  litsift import --format csv openalex.csv --source openalex
  litsift import --format jsonl harvest.jsonl --merge
  litsift import --format csv export.csv --dry-run

Supported formats:
  csv    - harvest interchange CSV (canonical column set)
  jsonl  - one record object per line, schema-validated`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	New     int      `json:"new"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldAdd    int            `json:"would_add"`
	WouldUpdate int            `json:"would_update"`
	WouldSkip   int            `json:"would_skip"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	ID     string `json:"id"`
	Action string `json:"action"` // new, update, skip
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

// importStats tracks import operation counts.
type importStats struct {
	newCount int
	updated  int
	skipped  int
}

// pendingRecord is an import action waiting to be persisted.
type pendingRecord struct {
	rec         record.Record
	action      string
	existingIdx int
}

func runImport(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg := mustLoadConfig(workspaceRoot)

	source := importSource
	if source == "" {
		source = cfg.DefaultSource
	}

	// Parse input file
	incoming, parseErrors := parseImportFile(args[0], importFormat, source)
	if importStrict && len(parseErrors) > 0 {
		exitWithError(ExitDataError, "%d malformed input lines, first: %v", len(parseErrors), parseErrors[0])
	}

	// Load existing records
	recordsPath := config.RecordsPath(workspaceRoot)
	persisted, err := storage.ReadAll(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing records: %v", err)
	}

	// Classify each record against the growing working set
	stats, details, pending := processBatch(incoming, persisted, importMerge)

	// Malformed lines count as skipped
	errStrs := errorsToStrings(parseErrors)
	stats.skipped += len(parseErrors)

	logger.Info().
		Int("new", stats.newCount).
		Int("updated", stats.updated).
		Int("skipped", stats.skipped).
		Str("source", source).
		Msg("import classified")

	// Report results (dry-run or actual)
	if importDryRun {
		reportDryRun(stats, details, errStrs)
		return nil
	}

	if err := persistBatch(recordsPath, persisted, pending); err != nil {
		exitWithError(ExitError, "writing records: %v", err)
	}

	reportImportResults(stats, errStrs)
	return nil
}

// parseImportFile reads and parses the import file. Returned records have
// been normalized and carry IDs.
func parseImportFile(path, format, source string) ([]record.Record, []error) {
	f, err := os.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening file: %v", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		records, err := importer.FromCSV(f, source)
		if err != nil {
			exitWithError(ExitDataError, "parsing CSV: %v", err)
		}
		return records, nil
	case "jsonl":
		records, parseErrors := importer.FromJSONL(f)
		if len(parseErrors) > 0 && len(records) == 0 {
			exitWithError(ExitDataError, "failed to parse any records: %v", parseErrors[0])
		}
		importer.Prepare(records, source)
		return records, parseErrors
	default:
		exitWithError(ExitError, "unknown format: %s", format)
		return nil, nil
	}
}

// processBatch classifies each record and builds the action list.
func processBatch(incoming, persisted []record.Record, merge bool) (importStats, []ImportDetail, []pendingRecord) {
	var stats importStats
	var details []ImportDetail
	var pending []pendingRecord

	if !merge {
		// Append-only import: every record is new under a unique ID.
		importer.EnsureUniqueIDs(persisted, incoming)
		for _, rec := range incoming {
			pending = append(pending, pendingRecord{rec: rec, action: importer.ActionNew})
			stats.newCount++
			details = append(details, ImportDetail{
				ID:     rec.ID,
				Action: importer.ActionNew,
				Title:  truncateString(rec.Title, ImportTitleMaxLen),
			})
		}
		return stats, details, pending
	}

	// Build a working set that includes both persisted records AND
	// in-progress imports. This enables deduplication within a single
	// import batch.
	workingSet := make([]record.Record, len(persisted))
	copy(workingSet, persisted)

	for _, rec := range incoming {
		action := importer.Classify(workingSet, rec)
		kind := action.Kind
		reason := action.Reason

		switch kind {
		case importer.ActionNew:
			rec.ID = storage.GenerateUniqueID(workingSet, rec.ID)
			pending = append(pending, pendingRecord{rec: rec, action: importer.ActionNew})
			workingSet = append(workingSet, rec)
			stats.newCount++
		case importer.ActionUpdate:
			// If ExistingIdx is within persisted bounds, it matched an
			// already-persisted record. Otherwise it matched something we
			// added earlier in this same batch (workingSet grows as we go).
			if action.ExistingIdx < len(persisted) {
				rec.ID = workingSet[action.ExistingIdx].ID
				pending = append(pending, pendingRecord{rec: rec, action: importer.ActionUpdate, existingIdx: action.ExistingIdx})
				stats.updated++
			} else {
				stats.skipped++
				kind = "skip"
				reason = "duplicate_in_batch"
			}
		}

		details = append(details, ImportDetail{
			ID:     rec.ID,
			Action: kind,
			Title:  truncateString(rec.Title, ImportTitleMaxLen),
			Reason: reason,
		})
	}

	return stats, details, pending
}

// persistBatch writes the import results to the records file.
func persistBatch(path string, persisted []record.Record, pending []pendingRecord) error {
	merged := make([]record.Record, len(persisted))
	copy(merged, persisted)

	// Apply updates first
	for _, p := range pending {
		if p.action == importer.ActionUpdate {
			merged[p.existingIdx] = p.rec
		}
	}

	// Append new entries
	for _, p := range pending {
		if p.action == importer.ActionNew {
			merged = append(merged, p.rec)
		}
	}

	return storage.WriteAll(path, merged)
}

// reportDryRun outputs the dry-run results.
func reportDryRun(stats importStats, details []ImportDetail, errStrs []string) {
	if humanOutput {
		fmt.Println("Dry run - would import:")
		fmt.Printf("  Would add:    %d new records\n", stats.newCount)
		fmt.Printf("  Would update: %d existing records (matched by DOI, PMID, or ID)\n", stats.updated)
		fmt.Printf("  Would skip:   %d (errors or duplicates)\n", stats.skipped)
		if len(errStrs) > 0 {
			fmt.Println("\nParse errors:")
			for _, e := range errStrs {
				fmt.Printf("  - %s\n", e)
			}
		}
	} else {
		outputJSON(DryRunResult{
			WouldAdd:    stats.newCount,
			WouldUpdate: stats.updated,
			WouldSkip:   stats.skipped,
			Details:     details,
		})
	}
}

// reportImportResults outputs the actual import results.
func reportImportResults(stats importStats, errStrs []string) {
	if humanOutput {
		fmt.Println("Imported:")
		fmt.Printf("  Added:   %d new records\n", stats.newCount)
		fmt.Printf("  Updated: %d existing records (matched by DOI, PMID, or ID)\n", stats.updated)
		fmt.Printf("  Skipped: %d (errors or duplicates)\n", stats.skipped)
		if len(errStrs) > 0 {
			fmt.Println("\nErrors:")
			for _, e := range errStrs {
				fmt.Printf("  - %s\n", e)
			}
		}
	} else {
		outputJSON(ImportResult{
			New:     stats.newCount,
			Updated: stats.updated,
			Skipped: stats.skipped,
			Errors:  errStrs,
		})
	}
}
