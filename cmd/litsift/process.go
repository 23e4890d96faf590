package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/dedupe"
	"github.com/litsift/litsift/internal/filter"
	"github.com/litsift/litsift/internal/importer"
	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/prisma"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

var (
	processFormat string
	processSource string
	processStrict bool
)

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "", "Import format (csv, jsonl)")
	processCmd.Flags().StringVar(&processSource, "source", "", "Source tag for records that carry none (default: config default_source)")
	processCmd.Flags().BoolVar(&processStrict, "strict", false, "Abort on the first malformed input line")
	processCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run the full pipeline on a harvest export",
	Long: `Run the full pipeline: import the file, normalize, deduplicate, apply
the screening rules, and write the run metrics.

The metrics land in .litsift/metrics.json for 'litsift prisma'. Run
'litsift rebuild' afterwards to refresh the search cache.

Examples:
  litsift process --format csv openalex.csv --source openalex
  litsift process --format jsonl harvest.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

// ProcessResult represents the result of a full pipeline run.
type ProcessResult struct {
	RunID    string         `json:"run_id"`
	Imported int            `json:"imported"`
	Merged   int            `json:"merged"`
	Dedupe   dedupe.Summary `json:"deduplicate"`
	Filter   filter.Report  `json:"filter"`
	Final    int            `json:"final_included"`
	Errors   []string       `json:"errors,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg := mustLoadConfig(workspaceRoot)

	source := processSource
	if source == "" {
		source = cfg.DefaultSource
	}

	// Stage 1: import
	incoming, parseErrors := parseImportFile(args[0], processFormat, source)
	if processStrict && len(parseErrors) > 0 {
		exitWithError(ExitDataError, "%d malformed input lines, first: %v", len(parseErrors), parseErrors[0])
	}

	persisted := mustReadRecords(workspaceRoot)
	importer.EnsureUniqueIDs(persisted, incoming)

	merged := make([]record.Record, 0, len(persisted)+len(incoming))
	merged = append(merged, persisted...)
	merged = append(merged, incoming...)

	// Stage 2: the import already normalized the incoming batch; the
	// persisted half was normalized when it entered the corpus, so only the
	// derived title keys need recomputing before matching.
	normalize.TitleKeys(merged)

	metrics := prisma.NewRunMetrics()
	for _, r := range merged {
		metrics.Harvest[harvestSource(r.Source)]++
	}
	metrics.Normalized = len(merged)

	logger.Info().
		Int("imported", len(incoming)).
		Int("merged", len(merged)).
		Str("source", source).
		Msg("harvest merged")

	// Stage 3: dedupe
	result, err := dedupe.Deduplicate(merged, cfg.DedupeOptions())
	if err != nil {
		exitWithError(ExitError, "deduplicating: %v", err)
	}
	metrics.Dedupe = result.Summary

	// Stage 4: filter
	kept, report := filter.Apply(result.Records, cfg.Filter)
	metrics.Filter = report
	metrics.Final = len(kept)

	logger.Info().
		Int("after_dedupe", result.Summary.Final).
		Int("after_filter", len(kept)).
		Msg("pipeline complete")

	// Persist corpus and metrics
	if err := storage.WriteAll(config.RecordsPath(workspaceRoot), kept); err != nil {
		exitWithError(ExitError, "writing records: %v", err)
	}
	metrics.Finish()
	if err := metrics.Save(config.MetricsPath(workspaceRoot)); err != nil {
		exitWithError(ExitError, "writing metrics: %v", err)
	}

	procResult := ProcessResult{
		RunID:    metrics.RunID,
		Imported: len(incoming),
		Merged:   len(merged),
		Dedupe:   result.Summary,
		Filter:   report,
		Final:    len(kept),
		Errors:   errorsToStrings(parseErrors),
	}

	if humanOutput {
		fmt.Printf("Processed %s:\n", args[0])
		fmt.Printf("  Imported:     %d records\n", procResult.Imported)
		fmt.Printf("  After merge:  %d records\n", procResult.Merged)
		fmt.Printf("  Duplicates:   %d removed (%d exact, %d fuzzy)\n",
			procResult.Dedupe.TotalRemoved(), procResult.Dedupe.ExactRemoved, procResult.Dedupe.FuzzyRemoved)
		fmt.Printf("  Excluded:     %d by screening rules\n", procResult.Filter.TotalExcluded())
		fmt.Printf("  Final:        %d records\n", procResult.Final)
		if len(procResult.Errors) > 0 {
			fmt.Printf("  Parse errors: %d\n", len(procResult.Errors))
		}
	} else {
		outputJSON(procResult)
	}

	return nil
}

// harvestSource labels a record's origin in the identification counts.
func harvestSource(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
